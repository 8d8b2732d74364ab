package sampling

import "errors"

var (
	// ErrInvalidConfig reports a sampling configuration value that is
	// negative or not a finite number.
	ErrInvalidConfig = errors.New("invalid sampling configuration")

	// ErrNotReady reports an operation attempted before the coordinator
	// was registered with an engine, or before the engine was
	// instantiated. It signals a usage-order bug in the surrounding
	// setup.
	ErrNotReady = errors.New("engine not ready")

	// ErrNotSwitchable reports a processor-switch request against an
	// engine whose active processor has no switch capability.
	ErrNotSwitchable = errors.New("processor not switchable")

	// ErrUnimplementedAxis reports a merged schedule that requires a
	// cycle- or tick-based wakeup. Only instruction-based scheduling is
	// implemented; the other axes fail loudly rather than being silently
	// dropped.
	ErrUnimplementedAxis = errors.New("scheduling axis not implemented")
)
