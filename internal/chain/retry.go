package chain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

const (
	// revertCode is the JSON-RPC error code nodes attach to a reverted eth_call.
	revertCode = 3

	defaultRetryDelay = 100 * time.Millisecond
	maxRetryDelay     = 5 * time.Second
)

// Retryable reports whether repeating a failed call can change its outcome.
// Reverts and cancellation are final. Transport failures, timeouts and node
// rate limits are not.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == revertCode {
		return false
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		return false
	}
	return !strings.Contains(err.Error(), "execution reverted")
}

// WithRetry calls fn until it succeeds, fails with an error Retryable
// rejects, maxRetries is spent, or ctx ends. The delay starts at baseDelay and
// doubles per retry up to maxRetryDelay.
func WithRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if baseDelay <= 0 {
		baseDelay = defaultRetryDelay
	}

	for attempt, delay := 0, baseDelay; ; attempt, delay = attempt+1, min(delay*2, maxRetryDelay) {
		err := fn(ctx)
		if err == nil || attempt >= maxRetries || !Retryable(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
