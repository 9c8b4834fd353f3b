// internal/api/handler_test.go
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-profile-finder/internal/github"
	"github-profile-finder/internal/metrics"
	"github-profile-finder/internal/query"
	"github-profile-finder/internal/view"
)

// fakeGitHub records requested paths and answers like the users endpoint.
type fakeGitHub struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.mu.Unlock()

	switch r.URL.Path {
	case "/users/torvalds":
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"login": "torvalds", "name": "Linus Torvalds", "public_repos": 10, "followers": 200000,
			"following": 0, "avatar_url": "https://avatars.example/torvalds", "bio": null, "email": null, "hireable": null}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintln(w, `{"message": "Not Found"}`)
	}
}

func (f *fakeGitHub) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

type testApp struct {
	server *httptest.Server
	client *http.Client
	github *fakeGitHub
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fake := &fakeGitHub{}
	upstream := httptest.NewServer(fake)
	t.Cleanup(upstream.Close)

	ghClient, err := github.NewClient(upstream.URL, upstream.Client(), logger)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	sessions, err := query.NewSessions(8, ghClient, logger, m, time.Second)
	require.NoError(t, err)
	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	server := httptest.NewServer(NewRouter(sessions, renderer, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), logger))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		server: server,
		client: &http.Client{Jar: jar, Timeout: 2 * time.Second},
		github: fake,
	}
}

func (a *testApp) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (a *testApp) post(t *testing.T, path string, form url.Values) {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "redirect should land on the page")
}

// settledState polls the JSON state until the lookup is no longer loading.
func (a *testApp) settledState(t *testing.T) stateResponse {
	t.Helper()
	var st stateResponse
	require.Eventually(t, func() bool {
		resp, err := a.client.Get(a.server.URL + "/api/state")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		st = stateResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
			return false
		}
		return st.Phase != "loading"
	}, 2*time.Second, 10*time.Millisecond)
	return st
}

func TestRouter_Health(t *testing.T) {
	app := setupTestApp(t)

	status, body := app.get(t, "/health")

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status": "ok"}`, body)
}

func TestRouter_IdlePage(t *testing.T) {
	app := setupTestApp(t)

	status, body := app.get(t, "/")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "No profile searched")
	assert.Empty(t, app.github.requested(), "nothing is fetched before a submit")

	u, err := url.Parse(app.server.URL)
	require.NoError(t, err)
	cookies := app.client.Jar.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
}

func TestRouter_SearchTorvalds(t *testing.T) {
	app := setupTestApp(t)

	app.post(t, "/search", url.Values{"username": {"torvalds"}})
	st := app.settledState(t)

	assert.Equal(t, "success", st.Phase)
	assert.Equal(t, "torvalds", st.Identifier)
	require.NotNil(t, st.Profile)
	assert.Equal(t, "torvalds", st.Profile.Login)

	_, page := app.get(t, "/")
	assert.Contains(t, page, "Linus Torvalds")
	assert.Contains(t, page, "<strong>200000</strong>Followers")
	assert.NotContains(t, page, "Available for hire")
	assert.NotContains(t, page, "mailto:")
	assert.Equal(t, []string{"/users/torvalds"}, app.github.requested())
}

func TestRouter_NotFoundThenRetry(t *testing.T) {
	app := setupTestApp(t)

	app.post(t, "/search", url.Values{"username": {"doesnotexist123456"}})
	st := app.settledState(t)

	assert.Equal(t, "error", st.Phase)
	assert.Equal(t, "Network response was not ok", st.Error)
	assert.Nil(t, st.Profile)

	_, page := app.get(t, "/")
	assert.Contains(t, page, `action="/retry"`)

	app.post(t, "/retry", nil)
	st = app.settledState(t)

	assert.Equal(t, "error", st.Phase)
	assert.Equal(t, "doesnotexist123456", st.Identifier)
	assert.Equal(t, []string{"/users/doesnotexist123456", "/users/doesnotexist123456"}, app.github.requested())
}

func TestRouter_EmptyUsername(t *testing.T) {
	app := setupTestApp(t)

	app.post(t, "/search", url.Values{"username": {""}})
	st := app.settledState(t)

	assert.Equal(t, "error", st.Phase)
	assert.Equal(t, "", st.Identifier)
	assert.Equal(t, []string{"/users/"}, app.github.requested())
}

func TestRouter_MalformedSearchForm(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.client.Post(app.server.URL+"/search", "application/x-www-form-urlencoded", strings.NewReader("username=%zz"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"), resp.Header.Get("Content-Type"))
	assert.Empty(t, app.github.requested())
}

func TestRouter_HandlerTimeoutFitsWriteTimeout(t *testing.T) {
	assert.Less(t, HandlerTimeout, WriteTimeout)
}

func TestRouter_RetryBeforeSearchIsHarmless(t *testing.T) {
	app := setupTestApp(t)

	app.post(t, "/retry", nil)

	_, body := app.get(t, "/api/state")
	assert.JSONEq(t, `{"identifier": "", "phase": "idle"}`, body)
	assert.Empty(t, app.github.requested())
}

func TestRouter_SessionsAreIsolated(t *testing.T) {
	app := setupTestApp(t)
	app.post(t, "/search", url.Values{"username": {"torvalds"}})
	app.settledState(t)

	other := &http.Client{Timeout: 2 * time.Second}
	resp, err := other.Get(app.server.URL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.JSONEq(t, `{"identifier": "", "phase": "idle"}`, string(body))
}

func TestRouter_Metrics(t *testing.T) {
	app := setupTestApp(t)
	app.post(t, "/search", url.Values{"username": {"torvalds"}})
	app.settledState(t)

	status, body := app.get(t, "/metrics")

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, strings.Contains(body, `profile_finder_lookups_total{outcome="success"} 1`), body)
}
