package artifact

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/tutorit/core"
)

var (
	// ErrStoreRequired is returned when a session store is not provided.
	ErrStoreRequired = errors.New("session store required")

	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")
)

// classifyGenerationError maps a generator failure onto the error
// taxonomy, keeping timeouts distinguishable from other failures and
// letting cancellation pass through untouched.
func classifyGenerationError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", core.ErrGenerationTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", core.ErrGeneration, err)
}
