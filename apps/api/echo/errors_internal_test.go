package echoapi

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/abdel28fr/ecole-pwa/core"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody interface{}
		wantOK   bool
	}{
		{"jwt missing", middleware.ErrJWTMissing, http.StatusUnauthorized, middleware.ErrJWTMissing.Message, true},
		{"http error", errHttpForbidden, http.StatusForbidden, "permission denied", true},
		{"wrapped http error", echo.NewHTTPError(http.StatusBadRequest).SetInternal(errHttpNotFound),
			http.StatusNotFound, "not found", true},
		{"validation message", core.NewValidationError(errors.New("bad file")), http.StatusBadRequest, "bad file", true},
		{"validation fields", core.NewValidationError(nil, core.FieldError{Field: "name", Error: "required"}),
			http.StatusBadRequest, map[string]string{"name": "required"}, true},
		{"not found", errors.Wrap(core.NewNotFoundError("student"), "get"), http.StatusNotFound, "student not found", true},
		{"conflict", core.NewConflictError(errors.New("class has students"), 3),
			http.StatusConflict, "class has students (3 linked)", true},
		{"server error", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body, ok := errorResponse(tt.err, nil)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantBody, body)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
