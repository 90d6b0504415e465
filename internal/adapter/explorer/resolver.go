package explorer

import (
	"strings"

	"autotask-relay/internal/domain/model"
	"autotask-relay/internal/domain/ports"
)

// SecretPrefix names the per-chain override secret: "explorer_<chainId>".
const SecretPrefix = "explorer_"

// DefaultChains maps chain IDs to public block-explorer base URLs.
var DefaultChains = map[string]string{
	"1":        "https://etherscan.io",
	"10":       "https://optimistic.etherscan.io",
	"56":       "https://bscscan.com",
	"137":      "https://polygonscan.com",
	"8453":     "https://basescan.org",
	"42161":    "https://arbiscan.io",
	"11155111": "https://sepolia.etherscan.io",
}

// Resolver builds transaction links from a chain-ID-to-explorer mapping.
type Resolver struct {
	chains map[string]string
}

var _ ports.LinkResolver = (*Resolver)(nil)

// New creates a Resolver. Entries in chains override DefaultChains.
func New(chains map[string]string) *Resolver {
	merged := make(map[string]string, len(DefaultChains)+len(chains))
	for id, base := range DefaultChains {
		merged[id] = base
	}
	for id, base := range chains {
		merged[strings.TrimSpace(id)] = base
	}
	return &Resolver{chains: merged}
}

// Resolve returns "<explorer>/tx/<hash>" when the source names both a
// transaction and a chain with a known explorer. A secret named
// "explorer_<chainId>" takes precedence over the configured mapping.
func (r *Resolver) Resolve(secrets map[string]string, source *model.Source) (string, bool) {
	if source == nil || source.TransactionHash == "" || source.Block == nil {
		return "", false
	}
	chainID := source.Block.ChainID.String()
	if chainID == "" {
		return "", false
	}

	base := secrets[SecretPrefix+chainID]
	if base == "" {
		base = r.chains[chainID]
	}
	if base == "" {
		return "", false
	}
	return strings.TrimRight(base, "/") + "/tx/" + source.TransactionHash, true
}
