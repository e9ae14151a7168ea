// Package dice provides the randomness abstraction behind every chance-driven
// decision in the engine: boss ability picks, teleport sides, encounter rolls,
// and weighted event selection.
package dice

// Source produces uniformly distributed integers.
type Source interface {
	// Intn returns a value in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// SequenceSource replays a fixed list of values, cycling when exhausted. Each
// value is reduced modulo n. It is intended for deterministic tests and replays.
type SequenceSource struct {
	Values []int
	pos    int
}

// Intn implements Source.
//
// Precondition: n > 0 and len(Values) > 0.
func (s *SequenceSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	if len(s.Values) == 0 {
		panic("dice: SequenceSource has no values")
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	if v < 0 {
		v = -v
	}
	return v % n
}
