package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// ChainConfig carries the per-chain well-known addresses and the naming
// markers used to classify pool share tokens. Defaults target zkSync Era.
type ChainConfig struct {
	WrappedNative   common.Address
	PrimaryStable   common.Address
	WrappedBTC      common.Address
	SwapFactory     common.Address
	VelocoreFactory common.Address
	ProfitShare     common.Address
	RewardToken     common.Address
	Stablecoins     []common.Address

	PairMarkers     []string
	BalancerMarkers []string
	CurveMarkers    []string
	VelocoreMarkers []string
	SyncSwapMarkers []string
}

func setChainDefaults(v *viper.Viper) {
	v.SetDefault("chain.wrapped-native", "0x5AEa5775959fBC2557Cc8789bC1bf90A239D9a91")
	v.SetDefault("chain.primary-stable", "0x3355df6D4c9C3035724Fd0e3914dE96A5a83aaf4")
	v.SetDefault("chain.wrapped-btc", "0xBBeB516fb02a01611cBBE0453Fe3c580D7281011")
	v.SetDefault("chain.swap-factory", "0xf2DAd89f2788a8CD54625C60b55cD3d2D0ACa7Cb")
	v.SetDefault("chain.velocore-factory", "0xf5E67261CB357eDb6C7719fEFAFaaB280cB5E2A6")
	v.SetDefault("chain.profit-share", "")
	v.SetDefault("chain.reward-token", "")
	v.SetDefault("chain.stablecoins", []string{
		"0x3355df6D4c9C3035724Fd0e3914dE96A5a83aaf4",
		"0x493257fD37EDB34451f62EDf8D2a0C418852bA4C",
	})
	v.SetDefault("chain.pair-markers", []string{"LP Token"})
	v.SetDefault("chain.balancer-markers", []string{"BPT", "Balancer"})
	v.SetDefault("chain.curve-markers", []string{"Curve"})
	v.SetDefault("chain.velocore-markers", []string{"Velocore"})
	v.SetDefault("chain.syncswap-markers", []string{"SyncSwap"})
}

func loadChain(v *viper.Viper) (ChainConfig, error) {
	cfg := ChainConfig{
		PairMarkers:     getStringSlice(v, "chain.pair-markers"),
		BalancerMarkers: getStringSlice(v, "chain.balancer-markers"),
		CurveMarkers:    getStringSlice(v, "chain.curve-markers"),
		VelocoreMarkers: getStringSlice(v, "chain.velocore-markers"),
		SyncSwapMarkers: getStringSlice(v, "chain.syncswap-markers"),
	}

	required := []struct {
		key string
		dst *common.Address
	}{
		{"chain.wrapped-native", &cfg.WrappedNative},
		{"chain.primary-stable", &cfg.PrimaryStable},
		{"chain.wrapped-btc", &cfg.WrappedBTC},
		{"chain.swap-factory", &cfg.SwapFactory},
		{"chain.velocore-factory", &cfg.VelocoreFactory},
	}
	for _, field := range required {
		addr, err := parseAddress(v.GetString(field.key))
		if err != nil {
			return ChainConfig{}, fmt.Errorf("%s: %w", field.key, err)
		}
		*field.dst = addr
	}

	// Profit share and reward token are optional; the branch stays inactive
	// until both are configured.
	for key, dst := range map[string]*common.Address{
		"chain.profit-share": &cfg.ProfitShare,
		"chain.reward-token": &cfg.RewardToken,
	} {
		raw := v.GetString(key)
		if raw == "" {
			continue
		}
		addr, err := parseAddress(raw)
		if err != nil {
			return ChainConfig{}, fmt.Errorf("%s: %w", key, err)
		}
		*dst = addr
	}

	for _, raw := range getStringSlice(v, "chain.stablecoins") {
		addr, err := parseAddress(raw)
		if err != nil {
			return ChainConfig{}, fmt.Errorf("chain.stablecoins: %w", err)
		}
		cfg.Stablecoins = append(cfg.Stablecoins, addr)
	}

	return cfg, nil
}

func parseAddress(input string) (common.Address, error) {
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %q", input)
	}
	return common.HexToAddress(input), nil
}
