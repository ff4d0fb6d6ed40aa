package resilience

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
)

// WithTimeout bounds fn by timeout. A deadline hit is reported as
// ErrUnavailable wrapping context.DeadlineExceeded; a cancelled parent is
// reported as such. fn receives the bounded context and is expected to
// return once it is done.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	bounded, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	result := make(chan error, 1)
	go func() { result <- fn(bounded) }()

	select {
	case err := <-result:
		return err
	case <-bounded.Done():
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: parent context cancelled: %w", name, err)
	}
	return fmt.Errorf("%s: %w: %w (limit: %v)", name, apperrors.ErrUnavailable, context.DeadlineExceeded, timeout)
}
