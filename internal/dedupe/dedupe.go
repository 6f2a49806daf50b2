// Package dedupe provides the shared singleflight group used to
// deduplicate concurrent replay recomputations. A replay re-runs a whole
// battle from (specs, seed); running it once per key while other callers
// wait keeps the server cheap when several clients verify the same record.
package dedupe

import "golang.org/x/sync/singleflight"

// ReplayGroup deduplicates replay recomputation requests keyed by
// keys.ReplayKey.
var ReplayGroup singleflight.Group
