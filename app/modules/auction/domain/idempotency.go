package auctiondomain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// ComputeSettlementHash generates a deterministic hash of the bids a round
// was settled from. A retry that sees the same hash recorded knows the batch
// already applied.
func ComputeSettlementHash(players []PlayerBids) string {
	lines := make([]string, 0, len(players))
	for _, p := range players {
		bids := make([]string, 0, len(p.Bids))
		for _, b := range p.Bids {
			bids = append(bids, fmt.Sprintf("%s=%d", b.TeamID, b.Amount))
		}
		sort.Strings(bids)
		lines = append(lines, p.PlayerID+":"+strings.Join(bids, ","))
	}
	sort.Strings(lines)

	hash := sha256.Sum256([]byte(strings.Join(lines, ";")))
	return hex.EncodeToString(hash[:])
}
