package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"zodiac_backend/internal/service"
	"zodiac_backend/internal/service/audit"
	"zodiac_backend/internal/service/compliance"
	"zodiac_backend/internal/service/gaming"
)

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: bad", service.ErrInvalidEvent), http.StatusBadRequest},
		{compliance.ErrNoSession, http.StatusNotFound},
		{gaming.ErrConfirmationNotFound, http.StatusNotFound},
		{gaming.ErrConfirmationSettled, http.StatusConflict},
		{audit.ErrSessionEnded, http.StatusConflict},
		{service.ErrShuttingDown, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteServiceError(rec, zaptest.NewLogger(t), tc.err)
			assert.Equal(t, tc.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}
