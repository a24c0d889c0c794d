package e2e

import (
	"errors"
	"fmt"
)

// ErrStepFailed wraps every error that aborted a click-through step
var ErrStepFailed = errors.New("e2e step failed")

type screenshotShortfall struct {
	got int
}

func (e *screenshotShortfall) Error() string {
	return fmt.Sprintf("Only %d screenshots captured, expected at least %d", e.got, MinScreenshots)
}

func stepError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStepFailed, fmt.Sprintf(format, args...))
}
