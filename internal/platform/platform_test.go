package platform

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"vaultScope/internal/config"
)

func testRuleset() *Ruleset {
	return NewRuleset(config.ChainConfig{
		WrappedNative: common.HexToAddress("0x5AEa5775959fBC2557Cc8789bC1bf90A239D9a91"),
		WrappedBTC:    common.HexToAddress("0xBBeB516fb02a01611cBBE0453Fe3c580D7281011"),
		Stablecoins: []common.Address{
			common.HexToAddress("0x3355df6D4c9C3035724Fd0e3914dE96A5a83aaf4"),
			common.HexToAddress("0x493257fD37EDB34451f62EDf8D2a0C418852bA4C"),
		},
		PairMarkers:     []string{"LP Token"},
		BalancerMarkers: []string{"BPT", "Balancer"},
		CurveMarkers:    []string{"Curve"},
		VelocoreMarkers: []string{"Velocore"},
		SyncSwapMarkers: []string{"SyncSwap"},
	})
}

func TestClassifyName(t *testing.T) {
	rules := testRuleset()

	cases := []struct {
		name string
		want Platform
	}{
		{"ZF LONG/WETH LP Token", PlainPair},
		{"ZF USDC/USDT LP Token", PlainPair},
		{"Velocore LP Token USDC/WETH", Velocore},
		{"SyncSwap USDC/WETH cLP", SyncSwap},
		{"Balancer 50WETH-50USDC BPT", BalancerWeighted},
		{"Curve.fi USDC/USDT", Curve},
		{"Some Random Token", Unknown},
		{"", Unknown},
	}

	for _, tc := range cases {
		if got := rules.ClassifyName(tc.name); got != tc.want {
			t.Fatalf("ClassifyName(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClassifyAddress(t *testing.T) {
	rules := testRuleset()

	if got := rules.ClassifyAddress(common.HexToAddress("0x3355df6D4c9C3035724Fd0e3914dE96A5a83aaf4")); got != Stablecoin {
		t.Fatalf("usdc classified as %v", got)
	}
	if got := rules.ClassifyAddress(common.HexToAddress("0xBBeB516fb02a01611cBBE0453Fe3c580D7281011")); got != WrappedBTC {
		t.Fatalf("wbtc classified as %v", got)
	}
	if got := rules.ClassifyAddress(common.HexToAddress("0x5AEa5775959fBC2557Cc8789bC1bf90A239D9a91")); got != WrappedNative {
		t.Fatalf("weth classified as %v", got)
	}
	if got := rules.ClassifyAddress(common.HexToAddress("0x0000000000000000000000000000000000000001")); got != Unknown {
		t.Fatalf("random address classified as %v", got)
	}
}

func TestClassifyAddressWins(t *testing.T) {
	rules := testRuleset()

	weth := common.HexToAddress("0x5AEa5775959fBC2557Cc8789bC1bf90A239D9a91")
	if got := rules.Classify(weth, "WETH LP Token"); got != WrappedNative {
		t.Fatalf("Classify = %v, want WrappedNative", got)
	}
}
