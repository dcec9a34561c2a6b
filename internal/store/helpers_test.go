package store

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kaze-games/mahjong-tui/internal/api"
	"github.com/kaze-games/mahjong-tui/internal/model"
	"github.com/kaze-games/mahjong-tui/internal/session"
	"github.com/kaze-games/mahjong-tui/internal/ws"
)

// newBackend wires a fake backend plus the shared collaborators every store
// needs. Retries are disabled so failure tests stay single-shot.
func newBackend(t *testing.T, handler http.HandlerFunc) (*api.Client, *session.Store) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := api.NewClient(api.Options{
		BaseURL: srv.URL,
		Logger:  zerolog.Nop(),
		Retry:   api.RetryConfig{MaxAttempts: 1},
	})
	return client, session.NewStore(t.TempDir())
}

func noBackend(t *testing.T) (*api.Client, *session.Store) {
	return newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
	})
}

func newTestRegistry(t *testing.T) *ws.Registry {
	// Nothing dials it; Send against a missing handle just returns false.
	return ws.NewRegistry("ws://127.0.0.1:1", zerolog.Nop())
}

func writeOK(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write([]byte(`{"code":200,"message":"success","data":` + string(raw) + `}`))
	require.NoError(t, err)
}

func decodeBody(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func mustEvent(t *testing.T, typ model.EventType, payload any) model.Event {
	t.Helper()
	ev, err := model.NewEvent(typ, payload)
	require.NoError(t, err)
	return ev
}
