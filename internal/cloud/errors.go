package cloud

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/aws/smithy-go"
)

// ThrottlingError marks a call rejected by the control plane's rate limiter.
// The limiter retries these with backoff; they never surface to a handler
// unless the retry budget is exhausted.
type ThrottlingError struct {
	Op  string
	Err error
}

func (e *ThrottlingError) Error() string {
	return fmt.Sprintf("%s: throttled: %v", e.Op, e.Err)
}

func (e *ThrottlingError) Unwrap() error { return e.Err }

// TransientNetworkError marks a call that failed for a reason expected to
// clear on its own (timeouts, connection resets, 5xx). Retried like throttling.
type TransientNetworkError struct {
	Op  string
	Err error
}

func (e *TransientNetworkError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientNetworkError) Unwrap() error { return e.Err }

// PermanentAPIError marks a call the control plane rejected outright
// (authorization failure, malformed request, unsupported type). Never
// retried; surfaced per resource type and isolated to it.
type PermanentAPIError struct {
	Op   string
	Code string
	Err  error
}

func (e *PermanentAPIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PermanentAPIError) Unwrap() error { return e.Err }

var throttleCodes = map[string]bool{
	"Throttling":                true,
	"ThrottlingException":       true,
	"ThrottledException":        true,
	"TooManyRequestsException":  true,
	"RequestLimitExceeded":      true,
	"RequestThrottled":          true,
	"RequestThrottledException": true,
	"SlowDown":                  true,
}

var transientCodes = map[string]bool{
	"RequestTimeout":                 true,
	"RequestTimeoutException":        true,
	"InternalFailure":                true,
	"InternalError":                  true,
	"ServiceUnavailable":             true,
	"ServiceUnavailableException":    true,
	"TransactionInProgressException": true,
}

// Classify maps an SDK error onto the taxonomy the limiter and the
// orchestrator act on. Context cancellation passes through untouched so
// cooperative shutdown is not misreported as an API failure.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case throttleCodes[code] || strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "rate exceeded"):
			return &ThrottlingError{Op: op, Err: err}
		case transientCodes[code]:
			return &TransientNetworkError{Op: op, Err: err}
		default:
			return &PermanentAPIError{Op: op, Code: code, Err: err}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &TransientNetworkError{Op: op, Err: err}
	}

	return &PermanentAPIError{Op: op, Err: err}
}

// IsRetryable reports whether the limiter should retry the call.
func IsRetryable(err error) bool {
	var throttle *ThrottlingError
	var transient *TransientNetworkError
	return errors.As(err, &throttle) || errors.As(err, &transient)
}
