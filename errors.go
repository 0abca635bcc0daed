package isomesh

import (
	"errors"
	"fmt"
)

// ErrConfig is wrapped by every error that stems from invalid grid parameters.
// Check with errors.Is.
var ErrConfig = errors.New("invalid configuration")

func errConfig(format string, args ...any) error {
	return fmt.Errorf("isomesh: %w: "+format, append([]any{ErrConfig}, args...)...)
}
