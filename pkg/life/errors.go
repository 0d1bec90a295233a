package life

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = errors.New("life: invalid grid configuration")
	// ErrOutOfBounds matches every *OutOfBoundsError.
	ErrOutOfBounds = errors.New("life: coordinate out of bounds")
	// ErrUnknownPreset matches every *UnknownPresetError.
	ErrUnknownPreset = errors.New("life: unknown preset")
)

// ConfigurationError reports grid dimensions that cannot be built.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// OutOfBoundsError reports a coordinate outside the grid.
type OutOfBoundsError struct {
	X, Y          int
	Width, Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("cell (%d,%d) is outside the %dx%d grid", e.X, e.Y, e.Width, e.Height)
}

// Is reports whether target is ErrOutOfBounds.
func (e *OutOfBoundsError) Is(target error) bool { return target == ErrOutOfBounds }

// UnknownPresetError reports a preset name with no pattern behind it.
type UnknownPresetError struct {
	Name string
}

func (e *UnknownPresetError) Error() string {
	return fmt.Sprintf("unknown preset %q", e.Name)
}

// Is reports whether target is ErrUnknownPreset.
func (e *UnknownPresetError) Is(target error) bool { return target == ErrUnknownPreset }
