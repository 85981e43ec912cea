package core

import "errors"

var (
	// ErrInvalidConfig is returned at construction time for configuration that
	// would make the lighting maths undefined (zero ray count, zero screen size).
	ErrInvalidConfig = errors.New("lightrt: invalid configuration")

	// ErrResourceCreation marks failures to create render targets, shader
	// programs or parameter blocks. Fatal at session start.
	ErrResourceCreation = errors.New("lightrt: resource creation failed")

	// ErrFrameAborted wraps any failure inside a frame. The frame is dropped.
	ErrFrameAborted = errors.New("lightrt: frame aborted")

	// ErrNotReady is returned while render targets are missing or being resized.
	ErrNotReady = errors.New("lightrt: render targets not ready")
)
