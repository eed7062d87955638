package fiber

import (
	"github.com/vango-dev/vfiber/internal/errors"
)

// Sentinel errors. Compare with errors.Is; the engine's panics and returns
// carry a *errors.Error with the same code.
var (
	ErrNoActiveFiber   error = errors.New("E001")
	ErrHookOrder       error = errors.New("E002")
	ErrNothingToRender error = errors.New("E003")
)
