package logtastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kjk/tabdb/assert"
	"github.com/kjk/tabdb/require"
)

type received struct {
	path   string
	mime   string
	apiKey string
	body   string
}

func newTestServer(t *testing.T, status int) (*httptest.Server, func() []received) {
	var mu sync.Mutex
	var got []received
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, received{
			path:   r.URL.Path,
			mime:   r.Header.Get("Content-Type"),
			apiKey: r.Header.Get("X-Api-Key"),
			body:   string(d),
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(ts.Close)
	return ts, func() []received {
		mu.Lock()
		defer mu.Unlock()
		return append([]received(nil), got...)
	}
}

func TestClientPosts(t *testing.T) {
	ts, getReceived := newTestServer(t, http.StatusOK)
	c, err := New(context.Background(), &Config{Server: ts.URL, ApiKey: "secret"})
	require.NoError(t, err)

	c.Log("hello\n")
	c.LogEvent("tabdb.persist", map[string]any{"records": 3})
	c.LogError("failed")
	c.Stop()
	// no-op after Stop
	c.Log("ignored")
	c.Stop()

	got := getReceived()
	require.Len(t, got, 3)
	assert.Equal(t, "/api/v1/log", got[0].path)
	assert.Equal(t, "hello\n", got[0].body)
	assert.Equal(t, "secret", got[0].apiKey)

	assert.Equal(t, "/api/v1/event", got[1].path)
	assert.Equal(t, mimeJSON, got[1].mime)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(got[1].body), &m))
	assert.Equal(t, "tabdb.persist", m["name"])
	assert.Equal(t, 3.0, m["records"])

	assert.Equal(t, "/api/v1/error", got[2].path)
	require.NoError(t, json.Unmarshal([]byte(got[2].body), &m))
	assert.Equal(t, "failed", m["msg"])
}

func TestClientThrottlesAfterFailure(t *testing.T) {
	ts, getReceived := newTestServer(t, http.StatusInternalServerError)
	c, err := New(context.Background(), &Config{Server: ts.URL})
	require.NoError(t, err)
	c.Log("first")
	c.Stop()
	assert.True(t, c.Throttled())
	assert.Len(t, getReceived(), 1)
}

func TestNewValidates(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.Error(t, err)
	_, err = New(context.Background(), &Config{})
	assert.Error(t, err)

	c, err := New(context.Background(), &Config{Server: "localhost:9327/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9327", c.server)
	c.Stop()
}
