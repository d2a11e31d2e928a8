package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HyperCol/taipo-fire-php-re/internal/boardview"
	httpapi "github.com/HyperCol/taipo-fire-php-re/internal/http"
	"github.com/HyperCol/taipo-fire-php-re/internal/repository"
	"github.com/HyperCol/taipo-fire-php-re/internal/service"
	"github.com/HyperCol/taipo-fire-php-re/internal/store"
)

// newTestServer runs the full API on memory backends.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	auth := service.NewAuthService(repository.NewMemoryUsersRepository(),
		service.NewKVSessionStore(store.NewMemoryKV()), time.Hour, logger)
	ctx := context.Background()
	_, err := auth.EnsureUser(ctx, "admin@example.com", "admin-pw", "admin", true)
	require.NoError(t, err)
	_, err = auth.EnsureUser(ctx, "vol@example.com", "vol-pw", "vol", false)
	require.NoError(t, err)

	cookie := httpapi.CookieConfig{Name: "safeboard_session"}
	status := service.NewStatusService(repository.NewMemoryStatusRepository(), store.NewMemoryKV(), time.Minute, logger)
	news := service.NewNewsService(repository.NewMemoryNewsRepository(), 20, logger)

	r := httpapi.NewRouter("*", logger)
	r.RegisterAuthRoutes(httpapi.NewAuthHandler(auth, cookie, logger))
	r.RegisterBoardRoutes(httpapi.NewBoardHandler(status, auth, cookie, logger))
	r.RegisterNewsRoutes(httpapi.NewNewsHandler(news, auth, cookie, logger))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(srv.URL, zap.NewNop())
	require.NoError(t, err)
	return c
}

func requireAPIError(t *testing.T, err error, code int) *APIError {
	t.Helper()
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "want *APIError, got %v", err)
	assert.Equal(t, code, apiErr.StatusCode)
	return apiErr
}

func TestClient_SessionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	user, err := c.Check(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	_, err = c.Login(ctx, "admin@example.com", "wrong")
	apiErr := requireAPIError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "invalid email or password", apiErr.Message)

	user, err = c.Login(ctx, "admin@example.com", "admin-pw")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.True(t, user.IsAdmin)

	user, err = c.Check(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "admin@example.com", user.Email)

	require.NoError(t, c.Logout(ctx))
	user, err = c.Check(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestClient_StatusRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	blocks, err := c.Blocks(ctx)
	require.NoError(t, err)
	assert.Len(t, blocks, 8)

	units, err := c.FetchBlock(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, units)

	_, err = c.UpdateStatus(ctx, StatusUpdate{Block: "A", Floor: 5, Unit: 3, Status: "danger"})
	requireAPIError(t, err, http.StatusUnauthorized)

	_, err = c.Login(ctx, "vol@example.com", "vol-pw")
	require.NoError(t, err)

	rec, err := c.UpdateStatus(ctx, StatusUpdate{Block: "A", Floor: 5, Unit: 3, Status: "danger", Remark: "smoke"})
	require.NoError(t, err)
	assert.Equal(t, "danger", rec.Status)
	assert.Equal(t, "citizen", rec.Source)
	assert.Equal(t, "vol", rec.UpdatedBy)
	assert.NotEmpty(t, rec.UpdatedAt)

	_, err = c.UpdateStatus(ctx, StatusUpdate{Block: "Z", Floor: 5, Unit: 3})
	requireAPIError(t, err, http.StatusBadRequest)

	units, err = c.FetchBlock(ctx, "A")
	require.NoError(t, err)
	require.Contains(t, units, "5_3")
	assert.Equal(t, "smoke", units["5_3"].Remark)

	f := boardview.DefaultFilterState()
	f.StatusFilter = boardview.FilterReported
	view, err := c.BoardView(ctx, "A", f)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Stats.Danger)
	assert.Equal(t, 1, view.FilteredCount)
	require.Len(t, view.Danger, 1)
	assert.Equal(t, 5, view.Danger[0].Floor)

	xlsx, err := c.ExportBlock(ctx, "A")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(xlsx, []byte("PK")))
}

func TestClient_News(t *testing.T) {
	srv := newTestServer(t)
	admin := newTestClient(t, srv)
	vol := newTestClient(t, srv)
	ctx := context.Background()

	_, err := admin.Login(ctx, "admin@example.com", "admin-pw")
	require.NoError(t, err)
	_, err = vol.Login(ctx, "vol@example.com", "vol-pw")
	require.NoError(t, err)

	_, err = vol.AddNews(ctx, NewsInput{Content: "nope"})
	requireAPIError(t, err, http.StatusForbidden)

	first, err := admin.AddNews(ctx, NewsInput{Content: "shelter open"})
	require.NoError(t, err)
	_, err = admin.AddNews(ctx, NewsInput{Content: "road closed", Link: "https://example.com", LinkText: "map"})
	require.NoError(t, err)

	edited, err := admin.EditNews(ctx, first, NewsInput{Content: "shelter open until 22:00"})
	require.NoError(t, err)
	assert.NotEqual(t, first, edited)

	items, err := vol.ListNews(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, edited, items[0].ID)
	assert.Equal(t, "shelter open until 22:00", items[0].Content)
	assert.Equal(t, "road closed", items[1].Content)

	items, err = vol.ListNews(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestClient_RetriesReadsButNotWrites(t *testing.T) {
	var gets, posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gets.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"success":false,"error":"busy"}`))
		default:
			// the write reaches the server, then the connection drops
			posts.Add(1)
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				_ = conn.Close()
			}
		}
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv)
	ctx := context.Background()

	_, err := c.FetchBlock(ctx, "A")
	apiErr := requireAPIError(t, err, http.StatusServiceUnavailable)
	assert.Equal(t, "busy", apiErr.Message)
	assert.Equal(t, int32(3), gets.Load(), "one attempt plus two retries")

	_, err = c.AddNews(ctx, NewsInput{Content: "shelter open"})
	require.Error(t, err)
	assert.Equal(t, int32(1), posts.Load(), "writes are sent once")
}
