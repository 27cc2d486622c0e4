package host

import "errors"

// Contract violations. All of these are programming errors: they are
// detected where they occur, reported synchronously, and never retried.
var (
	// ErrNilModel indicates construction or finalization without a model
	// and without the explicit empty-host opt-in.
	ErrNilModel = errors.New("host: model is nil")

	// ErrModelPresent indicates adopting a model into a host that
	// already owns one.
	ErrModelPresent = errors.New("host: model already adopted")

	// ErrAlreadyFinalized indicates a repeated Finalize call.
	ErrAlreadyFinalized = errors.New("host: Finalize may only be called once")

	// ErrNotFinalized indicates an operation that requires a finalized
	// host (context creation, evaluation, scalar conversion).
	ErrNotFinalized = errors.New("host: host is not finalized")

	// ErrTopologyLocked indicates structural access after the model's
	// topology was locked.
	ErrTopologyLocked = errors.New("host: topology is locked")

	// ErrBadTopology indicates negative counts reported by the model.
	ErrBadTopology = errors.New("host: invalid topology counts")

	// ErrDiscreteState indicates position/velocity block access on a
	// discrete state, which is a single opaque vector.
	ErrDiscreteState = errors.New("host: discrete state has no position/velocity blocks")

	// ErrBadStateSize indicates a state write whose length does not
	// match the layout.
	ErrBadStateSize = errors.New("host: state size mismatch")

	// ErrIndexRange indicates an out-of-range state index.
	ErrIndexRange = errors.New("host: state index out of range")

	// ErrForeignContext indicates a context evaluated against a host
	// other than the one that created it.
	ErrForeignContext = errors.New("host: context belongs to a different host")
)
