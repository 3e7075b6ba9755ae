package util

import (
	"errors"
	"fmt"
	"net/http"
	"os/exec"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/tmeckel/az-cli/internal/azure"
	"github.com/tmeckel/az-cli/internal/azure/arm"
	"github.com/tmeckel/az-cli/internal/config"
	"github.com/tmeckel/az-cli/internal/profile"
	"github.com/tmeckel/az-cli/internal/query"
)

// FlagErrorf returns a new ErrFlag that wraps an error produced by
// fmt.Errorf(format, args...).
func FlagErrorf(format string, args ...interface{}) error {
	return FlagErrorWrap(fmt.Errorf(format, args...))
}

// ErrFlag returns a new ErrFlag that wraps the specified error.
func FlagErrorWrap(err error) error { return &ErrFlag{err} }

// A *ErrFlag indicates an error processing command-line flags or other arguments.
// Such errors cause the application to display the usage message.
type ErrFlag struct {
	// Note: not struct{error}: only *ErrFlag should satisfy error.
	err error
}

func (fe *ErrFlag) Error() string {
	return fe.err.Error()
}

func (fe *ErrFlag) Unwrap() error {
	return fe.err
}

// SilentError is an error that triggers exit code 1 without any error messaging
var ErrSilent = errors.New("SilentError")

// CancelError signals user-initiated cancellation
var ErrCancel = errors.New("CancelError")

func IsUserCancellation(err error) bool {
	return errors.Is(err, ErrCancel) || errors.Is(err, terminal.InterruptErr)
}

func MutuallyExclusive(message string, conditions ...bool) error {
	numTrue := 0
	for _, ok := range conditions {
		if ok {
			numTrue++
		}
	}
	if numTrue > 1 {
		return FlagErrorf("%s", message)
	}
	return nil
}

type ErrNoResults struct {
	message string
}

func (e ErrNoResults) Error() string {
	return e.message
}

func NewNoResultsError(message string) ErrNoResults {
	return ErrNoResults{message: message}
}

// ValidationError is raised for arguments that parse but make no sense together or violate a
// constraint of the service. It exits like a usage error, without printing the usage.
type ValidationError struct {
	err error
}

func ValidationErrorf(format string, args ...any) error {
	return &ValidationError{fmt.Errorf(format, args...)}
}

func (e *ValidationError) Error() string { return e.err.Error() }
func (e *ValidationError) Unwrap() error { return e.err }

// ResourceNotFoundError is returned when the addressed resource does not exist.
type ResourceNotFoundError struct {
	err error
}

func ResourceNotFoundErrorf(format string, args ...any) error {
	return &ResourceNotFoundError{fmt.Errorf(format, args...)}
}

func (e *ResourceNotFoundError) Error() string { return e.err.Error() }
func (e *ResourceNotFoundError) Unwrap() error { return e.err }

// CloudError is an error answered by an Azure service.
type CloudError struct {
	StatusCode int
	err        error
}

func (e *CloudError) Error() string { return e.err.Error() }
func (e *CloudError) Unwrap() error { return e.err }

// AuthenticationError is returned when no token could be acquired for the account.
type AuthenticationError struct {
	err error
}

func (e *AuthenticationError) Error() string { return e.err.Error() }
func (e *AuthenticationError) Unwrap() error { return e.err }

// TranslateError maps errors of the client layers to the error kinds above. Errors that are
// already translated, and unknown errors, are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var (
		flagErr      *ErrFlag
		validation   *ValidationError
		notFound     *ResourceNotFoundError
		cloudErr     *CloudError
		authErr      *AuthenticationError
		armErr       *arm.ResponseError
		respErr      *azcore.ResponseError
		authFailed   *azidentity.AuthenticationFailedError
		authRequired *azidentity.AuthenticationRequiredError
		queryErr     *query.InvalidQueryError
		subNotFound  *profile.SubscriptionNotFoundError
		userNotFound *profile.UserNotFoundError
		cloudMissing *azure.CloudNotFoundError
		invalidValue *config.InvalidValueError
		invalidKey   *config.InvalidKeyError
	)
	switch {
	case errors.As(err, &flagErr), errors.As(err, &validation), errors.As(err, &notFound),
		errors.As(err, &cloudErr), errors.As(err, &authErr):
		return err
	case errors.As(err, &queryErr):
		return FlagErrorWrap(err)
	case errors.As(err, &invalidValue), errors.As(err, &invalidKey):
		return &ValidationError{err}
	case errors.As(err, &subNotFound), errors.As(err, &userNotFound), errors.As(err, &cloudMissing):
		return &ResourceNotFoundError{err}
	case errors.Is(err, profile.ErrNotLoggedIn):
		return &AuthenticationError{fmt.Errorf("%w. Please run 'az login' to setup account", err)}
	case errors.Is(err, profile.ErrNoDefaultSubscription):
		return &AuthenticationError{fmt.Errorf("%w. Please run 'az account set' to select a subscription", err)}
	case errors.Is(err, azure.ErrLoginRequired), errors.As(err, &authRequired):
		return &AuthenticationError{fmt.Errorf("%w. Please run 'az login' to refresh the account", err)}
	case errors.As(err, &authFailed):
		return &AuthenticationError{err}
	case errors.As(err, &armErr):
		if armErr.NotFound() {
			return &ResourceNotFoundError{err}
		}
		return &CloudError{StatusCode: armErr.StatusCode, err: err}
	case errors.As(err, &respErr):
		if respErr.StatusCode == http.StatusNotFound {
			return &ResourceNotFoundError{err}
		}
		return &CloudError{StatusCode: respErr.StatusCode, err: err}
	}
	return err
}

// ErrExternalCommandExit carries the exit code of a shell alias.
type ErrExternalCommandExit struct {
	err *exec.ExitError
}

func (e ErrExternalCommandExit) Error() string {
	return e.err.Error()
}

func (e ErrExternalCommandExit) ExitCode() int {
	return e.err.ExitCode()
}

func NewExternalCommandExitError(err *exec.ExitError) ErrExternalCommandExit {
	return ErrExternalCommandExit{
		err: err,
	}
}
