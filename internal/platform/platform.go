package platform

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"vaultScope/internal/config"
)

// Platform identifies the liquidity-source family an asset belongs to.
type Platform int

const (
	Unknown Platform = iota
	Stablecoin
	WrappedBTC
	WrappedNative
	PlainPair
	BalancerWeighted
	Curve
	Velocore
	SyncSwap
)

func (p Platform) String() string {
	switch p {
	case Stablecoin:
		return "stablecoin"
	case WrappedBTC:
		return "wrapped-btc"
	case WrappedNative:
		return "wrapped-native"
	case PlainPair:
		return "plain-pair"
	case BalancerWeighted:
		return "balancer-weighted"
	case Curve:
		return "curve"
	case Velocore:
		return "velocore"
	case SyncSwap:
		return "syncswap"
	default:
		return "unknown"
	}
}

// Ruleset centralizes the address sets and name markers used for
// classification. Classification is pure: no network calls, no errors.
type Ruleset struct {
	stablecoins   map[common.Address]struct{}
	wrappedNative common.Address
	wrappedBTC    common.Address

	pairMarkers     []string
	balancerMarkers []string
	curveMarkers    []string
	velocoreMarkers []string
	syncSwapMarkers []string
}

// NewRuleset builds a Ruleset from the chain configuration.
func NewRuleset(cfg config.ChainConfig) *Ruleset {
	stables := make(map[common.Address]struct{}, len(cfg.Stablecoins))
	for _, addr := range cfg.Stablecoins {
		stables[addr] = struct{}{}
	}
	return &Ruleset{
		stablecoins:     stables,
		wrappedNative:   cfg.WrappedNative,
		wrappedBTC:      cfg.WrappedBTC,
		pairMarkers:     cfg.PairMarkers,
		balancerMarkers: cfg.BalancerMarkers,
		curveMarkers:    cfg.CurveMarkers,
		velocoreMarkers: cfg.VelocoreMarkers,
		syncSwapMarkers: cfg.SyncSwapMarkers,
	}
}

// IsStablecoin reports whether the address is a configured stablecoin.
func (r *Ruleset) IsStablecoin(addr common.Address) bool {
	_, ok := r.stablecoins[addr]
	return ok
}

// ClassifyAddress decides the family from the address alone.
func (r *Ruleset) ClassifyAddress(addr common.Address) Platform {
	if r.IsStablecoin(addr) {
		return Stablecoin
	}
	if addr == r.wrappedBTC {
		return WrappedBTC
	}
	if addr == r.wrappedNative {
		return WrappedNative
	}
	return Unknown
}

// ClassifyName decides the pool family from a token display name. Velocore
// and SyncSwap markers are checked before the generic pair marker because
// their names also carry an LP suffix.
func (r *Ruleset) ClassifyName(name string) Platform {
	switch {
	case matchesAny(name, r.velocoreMarkers):
		return Velocore
	case matchesAny(name, r.syncSwapMarkers):
		return SyncSwap
	case matchesAny(name, r.balancerMarkers):
		return BalancerWeighted
	case matchesAny(name, r.curveMarkers):
		return Curve
	case matchesAny(name, r.pairMarkers):
		return PlainPair
	default:
		return Unknown
	}
}

// Classify combines the address and name rules; the address wins.
func (r *Ruleset) Classify(addr common.Address, name string) Platform {
	if p := r.ClassifyAddress(addr); p != Unknown {
		return p
	}
	return r.ClassifyName(name)
}

func matchesAny(name string, markers []string) bool {
	for _, marker := range markers {
		if marker != "" && strings.Contains(name, marker) {
			return true
		}
	}
	return false
}
