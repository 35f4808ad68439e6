package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestAppError_StatusAndGRPCCode(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		code   codes.Code
	}{
		{"bad request", BadRequest("x"), http.StatusBadRequest, codes.InvalidArgument},
		{"unauthorized", Unauthorized("x"), http.StatusUnauthorized, codes.Unauthenticated},
		{"forbidden", Forbidden("x"), http.StatusForbidden, codes.PermissionDenied},
		{"not found", NotFound("x"), http.StatusNotFound, codes.NotFound},
		{"conflict", Conflict("x"), http.StatusConflict, codes.AlreadyExists},
		{"invalid", Invalid(map[string]string{"quantity": "bad"}), http.StatusUnprocessableEntity, codes.FailedPrecondition},
		{"internal", Internal("x"), http.StatusInternalServerError, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode())
			assert.Equal(t, tt.code, tt.err.GRPCCode())
		})
	}
}

func TestFrom_WrapsUnknownErrors(t *testing.T) {
	cause := errors.New("boom")
	appErr := From(cause)
	require.NotNil(t, appErr)
	assert.Equal(t, KindInternal, appErr.Kind())
	assert.ErrorIs(t, appErr, cause)

	assert.Nil(t, From(nil))
}

func TestIs_MatchesWrappedKind(t *testing.T) {
	err := fmt.Errorf("handler: %w", Forbidden("not yours"))
	assert.True(t, Is(err, KindForbidden))
	assert.False(t, Is(err, KindNotFound))
	assert.False(t, Is(errors.New("plain"), KindForbidden))
}

func TestInvalid_ExposesFields(t *testing.T) {
	err := Invalid(map[string]string{"quantity": "quantity must be at least 1"})
	assert.Equal(t, "validation failed", err.Message())
	assert.Equal(t, "quantity must be at least 1", err.Fields()["quantity"])
	assert.Nil(t, NotFound("x").Fields())
}
