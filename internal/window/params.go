package window

import (
	"errors"
	"fmt"
)

// DefaultSlideStep is the distance between consecutive window starts.
const DefaultSlideStep = 7

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid scan configuration")

// ConfigError reports a scan parameter that would make the scan meaningless.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// Params are the immutable parameters of one scan.
type Params struct {
	PromoterLength  int
	WindowSize      int
	WindowThreshold float64
	// SlideStep defaults to DefaultSlideStep when zero.
	SlideStep int
	// Workers > 1 scores candidate windows concurrently.
	Workers int
}

// Seuil is the proportional closeness threshold derived from the window width.
func (p Params) Seuil() float64 {
	return (float64(p.WindowSize) / 3) / 100
}

func (p Params) step() int {
	if p.SlideStep == 0 {
		return DefaultSlideStep
	}
	return p.SlideStep
}

// Validate rejects parameters before any window is scored.
func (p Params) Validate() error {
	switch {
	case p.PromoterLength <= 0:
		return &ConfigError{Field: "promoter_length", Reason: "must be positive"}
	case p.WindowSize <= 0:
		return &ConfigError{Field: "window_size", Reason: "must be positive"}
	case p.WindowSize >= p.PromoterLength:
		return &ConfigError{Field: "window_size", Reason: fmt.Sprintf("must be smaller than promoter_length (%d)", p.PromoterLength)}
	case p.WindowThreshold <= 0:
		return &ConfigError{Field: "window_threshold", Reason: "must be positive"}
	case p.SlideStep < 0:
		return &ConfigError{Field: "slide_step", Reason: "must be positive"}
	}
	return nil
}
