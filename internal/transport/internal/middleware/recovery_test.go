package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/mcp-resource-auth/internal/transport/internal/mocks"
)

func TestRecovery_Panics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
	}{
		{name: "string", value: "something broke"},
		{name: "error", value: errors.New("boom")},
		{name: "int", value: 42},
		{name: "struct", value: struct{ Code int }{Code: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &recordingHandler{}
			responder := &mocks.ErrorResponder{}
			h := NewRecoveryMiddleware(responder, slog.New(rec))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic(tt.value)
			}))

			w := httptest.NewRecorder()
			require.NotPanics(t, func() {
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
			})

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.True(t, responder.InternalCalled)
			assert.ErrorContains(t, responder.InternalErr, "panic")

			attrs, level, ok := rec.find("panic recovered")
			require.True(t, ok)
			assert.Equal(t, slog.LevelError, level)
			assert.Equal(t, "/boom", attrs["path"])
			assert.NotEmpty(t, attrs["stack"])
		})
	}
}

func TestRecovery_NoPanic(t *testing.T) {
	t.Parallel()

	responder := &mocks.ErrorResponder{}
	h := NewRecoveryMiddleware(responder, slog.New(&recordingHandler{}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "kept")
		w.WriteHeader(http.StatusCreated)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "kept", w.Header().Get("X-Custom"))
	assert.False(t, responder.InternalCalled)
}

func TestRecovery_AbortHandlerPropagates(t *testing.T) {
	t.Parallel()

	h := NewRecoveryMiddleware(&mocks.ErrorResponder{}, slog.New(&recordingHandler{}))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestNewRecoveryMiddleware_PanicsOnNilResponder(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewRecoveryMiddleware(nil, nil) })
}
