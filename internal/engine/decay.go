package engine

import (
	"fmt"
	"math"
	"time"
)

// decayHalfLifeHours is the recency half-life: a message loses half its
// base score every 8 hours, so after a 24h window it sits near 0.125.
const decayHalfLifeHours = 8.0

// Decay maps a message timestamp to a recency weight in [0, 1] using
// exponential decay. A timestamp in the future counts as age zero
// rather than an error. Unparseable input returns ErrInvalidTimestamp.
func Decay(timestamp string, now time.Time) (float64, error) {
	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, timestamp)
	}

	hours := now.Sub(ts).Hours()
	if hours < 0 {
		hours = 0
	}

	score := math.Exp(-math.Ln2 / decayHalfLifeHours * hours)

	// Clamp for safety; Exp of a non-positive exponent stays in range,
	// but the contract is explicit about the bounds.
	return math.Max(0, math.Min(1, score)), nil
}
