package callback_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shinosaki/sparkup-push-go/callback"
	"github.com/shinosaki/sparkup-push-go/host"
	"github.com/shinosaki/sparkup-push-go/webpush"
	"github.com/shinosaki/sparkup-push-go/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopDisplayer struct{}

func (nopDisplayer) Display(ctx context.Context, n *host.Notification) error { return nil }

type nopLauncher struct{}

func (nopLauncher) Launch(ctx context.Context, url string) error { return nil }

// closingClients enumerates the registry and then closes every window it
// returned, as if the user closed them right after the lookup.
type closingClients struct {
	windows *host.WindowRegistry
}

func (c closingClients) MatchAll(ctx context.Context, opts host.MatchOptions) ([]webpush.WindowClient, error) {
	list, err := c.windows.MatchAll(ctx, opts)
	if err != nil {
		return nil, err
	}
	for _, win := range list {
		_ = c.windows.Remove(win.(*host.Window).ID())
	}
	return list, nil
}

type testServer struct {
	router  http.Handler
	center  *host.NotificationCenter
	windows *host.WindowRegistry
	worker  *worker.Worker
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	center := host.NewNotificationCenter(nopDisplayer{}, zap.NewNop())
	windows := host.NewWindowRegistry(nopLauncher{}, zap.NewNop())
	w := worker.New(center, windows, zap.NewNop(), worker.NewMetrics(reg))

	h := callback.NewHandler(w, center, windows, zap.NewNop())
	return &testServer{
		router:  callback.Routes(h, reg),
		center:  center,
		windows: windows,
		worker:  w,
	}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) push(t *testing.T, body string) *host.Notification {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.worker.DispatchPush(ctx, []byte(body)).Wait(ctx))
	list := s.center.Notifications()
	return list[len(list)-1]
}

func TestServeNotifications(t *testing.T) {
	s := newTestServer(t)
	s.push(t, `{"notification":{"title":"Hello"},"data":{"url":"/hello"}}`)

	rec := s.do(http.MethodGet, "/notifications/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Hello", list[0]["title"])
	assert.Equal(t, "/icons/Icon-192.png", list[0]["icon"])
	assert.Equal(t, map[string]any{"url": "/hello"}, list[0]["data"])
	assert.NotEmpty(t, list[0]["id"])
}

func TestServeClickFocuses(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/clients/", `{"url":"/hello","controlled":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, false, created["controlled"])

	n := s.push(t, `{"data":{"url":"/hello"}}`)

	rec = s.do(http.MethodPost, "/notifications/"+n.ID+"/click", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	win, err := s.windows.Window(created["id"].(string))
	require.NoError(t, err)
	assert.True(t, win.Focused())
	assert.Empty(t, s.center.Notifications())

	rec = s.do(http.MethodPost, "/notifications/"+n.ID+"/click", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeClientLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/clients/", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/clients/", `{"url":"/a"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created["id"].(string)
	assert.Equal(t, true, created["controlled"])

	rec = s.do(http.MethodPut, "/clients/"+id, `{"url":"/b"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	win, err := s.windows.Window(id)
	require.NoError(t, err)
	assert.Equal(t, "/b", win.URL())

	rec = s.do(http.MethodDelete, "/clients/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, "/clients/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodPut, "/clients/"+id, `{"url":"/c"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeMetrics(t *testing.T) {
	s := newTestServer(t)
	s.push(t, "hello")

	rec := s.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sparkup_push_events_total{kind="text"} 1`)
}

func TestServeClickAfterShutdown(t *testing.T) {
	s := newTestServer(t)
	n := s.push(t, "x")
	require.NoError(t, s.worker.Shutdown(context.Background()))

	rec := s.do(http.MethodPost, "/notifications/"+n.ID+"/click", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServeClickWindowClosed(t *testing.T) {
	reg := prometheus.NewRegistry()
	center := host.NewNotificationCenter(nopDisplayer{}, zap.NewNop())
	windows := host.NewWindowRegistry(nopLauncher{}, zap.NewNop())
	w := worker.New(center, closingClients{windows: windows}, zap.NewNop(), worker.NewMetrics(reg))
	s := &testServer{
		router:  callback.Routes(callback.NewHandler(w, center, windows, zap.NewNop()), reg),
		center:  center,
		windows: windows,
		worker:  w,
	}

	windows.Register("/hello", true)
	n := s.push(t, `{"data":{"url":"/hello"}}`)

	rec := s.do(http.MethodPost, "/notifications/"+n.ID+"/click", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "window closed")
}
