package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"warhex/internal/battle"
)

// ArmyKey produces a canonical fingerprint for a pair of army spec lists.
// The specs are JSON-encoded in order (army order is significant: side 1
// and side 2 deploy on opposite edges), then hashed. Suitable for stable
// DB keys and singleflight keys.
func ArmyKey(army1, army2 []battle.UnitSpec) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(army1)
	_ = enc.Encode(army2)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ReplayKey identifies one replayable battle: the army fingerprint plus
// the seed.
func ReplayKey(army1, army2 []battle.UnitSpec, seed int64) string {
	return fmt.Sprintf("%s:%d", ArmyKey(army1, army2), seed)
}

// LogDigest hashes a battle log so replays can be verified without
// storing or transmitting the full turn-by-turn trace.
func LogDigest(log []string) string {
	h := sha256.New()
	for _, line := range log {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
