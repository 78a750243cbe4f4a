package nn

// Error is a kind of failure reported by this package. Returned errors wrap
// one of the values below with context, so test for them with errors.Is.
type Error struct{ string }

func (err Error) Error() string {
	return err.string
}

var (
	// ErrInvalidConfig reports a bad topology, an empty training set or a
	// learning rate or epoch count that cannot be used.
	ErrInvalidConfig = Error{"invalid configuration"}

	// ErrDimensionMismatch reports a vector whose length does not match the
	// layer it is fed to or compared with.
	ErrDimensionMismatch = Error{"dimension mismatch"}

	// ErrFormat reports a network stream that cannot be decoded.
	ErrFormat = Error{"bad network format"}
)
