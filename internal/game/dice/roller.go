package dice

import "go.uber.org/zap"

// resolution is the granularity of fractional draws.
const resolution = 1 << 30

// Roller wraps a Source and logger. Every draw is logged at debug level with
// its purpose and outcome.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil || logger == nil {
		panic("dice.NewLoggedRoller: src and logger must be non-nil")
	}
	return &Roller{src: src, logger: logger}
}

// Intn returns a value in [0, n) and logs it under purpose.
//
// Precondition: n > 0.
func (r *Roller) Intn(purpose string, n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice roll", zap.String("purpose", purpose), zap.Int("n", n), zap.Int("result", v))
	return v
}

// IntRange returns a value in [lo, hi], inclusive on both ends.
//
// Precondition: hi >= lo.
func (r *Roller) IntRange(purpose string, lo, hi int) int {
	return lo + r.Intn(purpose, hi-lo+1)
}

// Float64 returns a value in [0, 1).
func (r *Roller) Float64(purpose string) float64 {
	v := float64(r.src.Intn(resolution)) / resolution
	r.logger.Debug("dice roll", zap.String("purpose", purpose), zap.Float64("result", v))
	return v
}

// Chance reports whether a draw in [0, 1) falls below p.
func (r *Roller) Chance(purpose string, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.Float64(purpose) < p
}

// WeightedIndex picks an index with probability proportional to its weight.
// Non-positive weights are never picked.
//
// Postcondition: Returns -1 when no weight is positive; otherwise an index in [0, len(weights)).
func (r *Roller) WeightedIndex(purpose string, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}
	roll := r.Intn(purpose, total)
	cumulative := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}
