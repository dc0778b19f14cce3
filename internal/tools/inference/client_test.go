package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Run("posts the tool payload and returns the result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/tools/run", r.URL.Path)

			var req Request
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "generate_levels", req.Tool)
			assert.NotEmpty(t, req.Snapshot)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true,"result":{"levels":[]}}`))
		}))
		defer srv.Close()

		resp, err := New(srv.URL).Run(context.Background(), Request{
			Tool:     "generate_levels",
			Snapshot: json.RawMessage(`{"public_id":"plan-1"}`),
			Params:   json.RawMessage(`{"prompt":"a cabin"}`),
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"levels":[]}`, string(resp.Result))
	})

	t.Run("upstream failure is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"ok":false,"error":"model overloaded"}`))
		}))
		defer srv.Close()

		_, err := New(srv.URL).Run(context.Background(), Request{Tool: "auto_fix"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model overloaded")
	})
}
