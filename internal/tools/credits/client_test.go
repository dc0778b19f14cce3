package credits

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBalance(t *testing.T) {
	t.Run("returns the ledger balance", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/balance", r.URL.Path)
			assert.Equal(t, "uid-1", r.URL.Query().Get("user"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true,"balance":42}`))
		}))
		defer srv.Close()

		balance, err := New(srv.URL).GetBalance(context.Background(), "uid-1")
		require.NoError(t, err)
		assert.Equal(t, 42, balance)
	})

	t.Run("ledger error surfaces as an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"ok":false,"error":"ledger offline"}`))
		}))
		defer srv.Close()

		_, err := New(srv.URL).GetBalance(context.Background(), "uid-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ledger offline")
	})

	t.Run("unreachable ledger", func(t *testing.T) {
		_, err := New("http://127.0.0.1:1").GetBalance(context.Background(), "uid-1")
		assert.Error(t, err)
	})
}
