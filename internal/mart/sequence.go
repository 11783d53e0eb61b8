package mart

// Sequence hands out monotonically increasing surrogate ids, starting at 1.
//
// It is explicit per-run state: the builder owns one sequence per dimension
// for the duration of a single rebuild, which keeps rebuilds reproducible
// and testable. It is intentionally not a hidden process-wide counter and
// must not be reused across runs; a rebuild replaces all four mart tables
// together, so ids never have to survive a run.
//
// Not safe for concurrent use. Dedup and id assignment are a single
// serialization point after the normalization workers have merged.
type Sequence struct {
	last int64
}

// Next returns the next unused id.
func (s *Sequence) Next() int64 {
	s.last++
	return s.last
}
