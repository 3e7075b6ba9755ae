package arm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmeckel/az-cli/internal/retry"
	"github.com/tmeckel/az-cli/internal/util"
	"go.uber.org/zap"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultPollTimeout  = 2 * time.Hour
)

var errStillRunning = errors.New("operation still running")

// OperationFailedError is returned when a long running operation ends in a failed or canceled state.
type OperationFailedError struct {
	Status  string
	Code    string
	Message string
}

func (e *OperationFailedError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("operation %s: (%s) %s", strings.ToLower(e.Status), e.Code, e.Message)
	}
	return fmt.Sprintf("operation %s", strings.ToLower(e.Status))
}

type PollOptions struct {
	// Interval between status requests when the service does not send Retry-After.
	Interval time.Duration
	// Timeout bounds the total wait. Defaults to two hours.
	Timeout time.Duration
}

// IsLongRunning reports whether resp started an asynchronous operation.
func IsLongRunning(resp *Response) bool {
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return false
	}
	return resp.Header.Get("Azure-AsyncOperation") != "" || resp.Header.Get("Location") != ""
}

type operationStatus struct {
	Status string     `json:"status"`
	Error  *errorBody `json:"error"`
}

// PollUntilDone waits for the operation started by resp. The Azure-AsyncOperation header is
// preferred over Location. Responses that did not start an operation are returned unchanged.
func PollUntilDone(ctx context.Context, c Client, resp *Response, opts PollOptions) (*Response, error) {
	if !IsLongRunning(resp) {
		return resp, nil
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	if after := retry.RetryAfter(&http.Response{Header: resp.Header}); after > 0 {
		interval = after
	}

	final := resp
	asyncURL := resp.Header.Get("Azure-AsyncOperation")
	location := resp.Header.Get("Location")
	poll := func(ctx context.Context) error {
		if asyncURL != "" {
			r, err := c.Do(ctx, Request{Method: http.MethodGet, Path: asyncURL})
			if err != nil {
				return util.Permanent(err)
			}
			var st operationStatus
			if err := r.Decode(&st); err != nil {
				return util.Permanent(err)
			}
			zap.L().Sugar().Debugf("operation status: %s", st.Status)
			switch strings.ToLower(st.Status) {
			case "succeeded":
				final = r
				return nil
			case "failed", "canceled", "cancelled":
				e := &OperationFailedError{Status: st.Status}
				if st.Error != nil {
					e.Code, e.Message = st.Error.Code, st.Error.Message
				}
				return util.Permanent(e)
			default:
				return errStillRunning
			}
		}
		r, err := c.Do(ctx, Request{Method: http.MethodGet, Path: location})
		if err != nil {
			return util.Permanent(err)
		}
		if r.StatusCode == http.StatusAccepted {
			return errStillRunning
		}
		final = r
		return nil
	}

	err := util.Poll(ctx, poll, util.PollOptions{Delay: interval, Timeout: timeout})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("timed out after %s waiting for the operation to finish", timeout)
		}
		return nil, err
	}
	return final, nil
}
