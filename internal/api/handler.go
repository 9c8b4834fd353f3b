// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github-profile-finder/internal/model"
	"github-profile-finder/internal/query"
	"github-profile-finder/internal/view"
)

// SessionCookie names the cookie carrying the browser's session id.
const SessionCookie = "gpf_session"

const (
	// HandlerTimeout bounds a single request inside the router.
	HandlerTimeout = 10 * time.Second
	// WriteTimeout is the server's write deadline and must exceed HandlerTimeout,
	// otherwise the connection is cut before the router can answer 504.
	WriteTimeout = 15 * time.Second
)

// Handler is the container for API dependencies.
type Handler struct {
	sessions *query.Sessions
	renderer *view.Renderer
	logger   *slog.Logger
}

// NewRouter creates and configures a new chi router with all routes.
// metricsHandler may be nil, in which case /metrics is not mounted.
func NewRouter(sessions *query.Sessions, renderer *view.Renderer, metricsHandler http.Handler, logger *slog.Logger) http.Handler {
	h := &Handler{
		sessions: sessions,
		renderer: renderer,
		logger:   logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(HandlerTimeout))

	r.Get("/health", h.healthCheck)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Get("/", h.page)
	r.Post("/search", h.search)
	r.Post("/retry", h.retry)
	r.Get("/api/state", h.state)

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// page renders the finder page for the caller's session.
// GET /
func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	c := h.session(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.Render(w, c.State()); err != nil {
		h.logger.Error("Failed to render page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// search submits the typed username. The lookup runs in the background and
// the browser is sent back to the page, which shows Loading until it settles.
// POST /search
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Debug("Rejected search form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	c := h.session(w, r)

	// The lookup outlives this request.
	c.Submit(context.WithoutCancel(r.Context()), r.PostForm.Get("username"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// retry re-issues the last submitted lookup of the caller's session.
// POST /retry
func (h *Handler) retry(w http.ResponseWriter, r *http.Request) {
	c := h.session(w, r)

	if _, ok := c.Retry(context.WithoutCancel(r.Context())); !ok {
		h.logger.Debug("Retry requested before any search")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// stateResponse is the JSON form of a query state.
type stateResponse struct {
	Identifier string         `json:"identifier"`
	Phase      string         `json:"phase"`
	Error      string         `json:"error,omitempty"`
	Profile    *model.Profile `json:"profile,omitempty"`
}

// state reports the caller's query state as JSON.
// GET /api/state
func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	st := h.session(w, r).State()

	resp := stateResponse{
		Identifier: st.Identifier,
		Phase:      st.Phase().String(),
		Error:      st.ErrorMessage(),
	}
	if st.Phase() == model.PhaseSuccess {
		resp.Profile = st.Profile
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// session resolves the caller's controller, issuing a new cookie when the
// session is missing or has been evicted.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *query.Controller {
	var id string
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		id = cookie.Value
	}

	newID, c, created := h.sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    newID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return c
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
