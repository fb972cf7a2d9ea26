package otext

// NoOp carries no change. It is the result of transforming away an
// operation whose entire effect has already been subsumed by a concurrent
// delete, and of the synchronization keep-alive (spec §5, NOOP_INTERVAL).
type NoOp struct{}

func (NoOp) Pos() int { return 0 }

func (NoOp) AffectsBuffer() bool { return false }

func (NoOp) IsReversible() bool { return true }

func (NoOp) Apply(*Buffer, uint64) error { return nil }

func (NoOp) Revert() (Operation, error) { return NoOp{}, nil }
