package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmeckel/az-cli/internal/azure"
	"github.com/tmeckel/az-cli/internal/azure/arm"
	"github.com/tmeckel/az-cli/internal/config"
	"github.com/tmeckel/az-cli/internal/profile"
	"github.com/tmeckel/az-cli/internal/query"
)

func TestTranslateError(t *testing.T) {
	var (
		notFound   *ResourceNotFoundError
		cloudErr   *CloudError
		authErr    *AuthenticationError
		flagErr    *ErrFlag
		validation *ValidationError
	)

	assert.NoError(t, TranslateError(nil))

	err := TranslateError(fmt.Errorf("failed to get group: %w", &arm.ResponseError{StatusCode: http.StatusNotFound, Code: "ResourceGroupNotFound"}))
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "ResourceGroupNotFound")

	err = TranslateError(&arm.ResponseError{StatusCode: http.StatusConflict, Code: "Conflict", Message: "busy"})
	require.ErrorAs(t, err, &cloudErr)
	assert.Equal(t, http.StatusConflict, cloudErr.StatusCode)

	err = TranslateError(&azcore.ResponseError{StatusCode: http.StatusNotFound, ErrorCode: "BlobNotFound"})
	require.ErrorAs(t, err, &notFound)

	err = TranslateError(&azcore.ResponseError{StatusCode: http.StatusForbidden, ErrorCode: "AuthorizationFailure"})
	require.ErrorAs(t, err, &cloudErr)

	err = TranslateError(profile.ErrNotLoggedIn)
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, err.Error(), "az login")

	err = TranslateError(fmt.Errorf("token: %w", azure.ErrLoginRequired))
	require.ErrorAs(t, err, &authErr)

	err = TranslateError(&profile.SubscriptionNotFoundError{NameOrID: "dev"})
	require.ErrorAs(t, err, &notFound)

	err = TranslateError(&query.InvalidQueryError{Expr: "[", Err: errors.New("syntax")})
	require.ErrorAs(t, err, &flagErr)

	err = TranslateError(&config.InvalidValueError{Key: "core.output", Value: "xml"})
	require.ErrorAs(t, err, &validation)

	plain := errors.New("boom")
	assert.Same(t, plain, TranslateError(plain))

	translated := ValidationErrorf("bad")
	assert.Same(t, translated, TranslateError(translated))
}

func TestMutuallyExclusive(t *testing.T) {
	require.NoError(t, MutuallyExclusive("only one", true, false))
	err := MutuallyExclusive("specify only one of --a or --b", true, true)
	var flagErr *ErrFlag
	require.ErrorAs(t, err, &flagErr)
	assert.Equal(t, "specify only one of --a or --b", err.Error())
}

func TestIsUserCancellation(t *testing.T) {
	assert.True(t, IsUserCancellation(fmt.Errorf("prompt: %w", ErrCancel)))
	assert.False(t, IsUserCancellation(errors.New("other")))
}
