// Package http provides the importer status endpoints
package http

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"redditimport/internal/core/version"
	"redditimport/internal/modkit/repokit"
	perr "redditimport/internal/platform/errors"
	phttp "redditimport/internal/platform/net/http"
	"redditimport/internal/services/importer/domain"
	"redditimport/internal/services/importer/repo"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(context.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Status      domain.StatusPort
	// DB serves ledger and row count queries; nil disables them
	DB repokit.Queryer
	// PG is pinged by /readyz when it implements Pinger
	PG any
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

var tableRe = regexp.MustCompile(`^(sub|com)_\d{4}_\d{2}$`)

const maxFilesLimit = 500

// Register mounts the status routes
func Register(r phttp.Router, d Deps) {
	h := &handlers{deps: d, now: time.Now}
	r.Get("/healthz", h.health)
	r.Get("/readyz", h.ready)
	r.Get("/status", h.status)
	r.Get("/files", h.files)
	r.Get("/files/last", h.lastAttempt)
	r.Get("/tables/{table}", h.table)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Version string `json:"version"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyResponse reports the database check
type ReadyResponse struct {
	Status string `json:"status"` // ok fail skipped
	Error  string `json:"error,omitempty"`
}

// TableResponse reports the rows committed to one table
type TableResponse struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	phttp.RespondOK(w, r, HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Version: version.Info(h.deps.ServiceName).Version,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     h.now().UTC().Format(time.RFC3339),
	})
}

func (h *handlers) ready(w http.ResponseWriter, r *http.Request) {
	p, ok := h.deps.PG.(Pinger)
	if !ok || p == nil {
		phttp.RespondOK(w, r, ReadyResponse{Status: "skipped"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		phttp.JSON(w, http.StatusServiceUnavailable, phttp.Envelope{
			StatusCode: http.StatusServiceUnavailable,
			Status:     http.StatusText(http.StatusServiceUnavailable),
			RequestID:  phttp.RequestID(r.Context()),
			Data:       ReadyResponse{Status: "fail", Error: err.Error()},
		})
		return
	}
	phttp.RespondOK(w, r, ReadyResponse{Status: "ok"})
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	if h.deps.Status == nil {
		phttp.RespondError(w, r, perr.New(perr.ErrorCodeUnavailable, "no importer attached"))
		return
	}
	phttp.RespondOK(w, r, h.deps.Status.Snapshot())
}

func (h *handlers) files(w http.ResponseWriter, r *http.Request) {
	if h.deps.DB == nil {
		phttp.RespondError(w, r, perr.New(perr.ErrorCodeUnavailable, "import ledger disabled"))
		return
	}
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxFilesLimit {
			phttp.RespondError(w, r, perr.InvalidArgf("limit must be between 1 and %d", maxFilesLimit))
			return
		}
		limit = n
	}
	out, err := repo.RecentFiles(r.Context(), h.deps.DB, limit)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	if out == nil {
		out = []domain.FileReport{}
	}
	phttp.RespondOK(w, r, out)
}

func (h *handlers) lastAttempt(w http.ResponseWriter, r *http.Request) {
	if h.deps.DB == nil {
		phttp.RespondError(w, r, perr.New(perr.ErrorCodeUnavailable, "import ledger disabled"))
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		phttp.RespondError(w, r, perr.InvalidArgf("path is required"))
		return
	}
	rep, err := repo.LastAttempt(r.Context(), h.deps.DB, path)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, rep)
}

func (h *handlers) table(w http.ResponseWriter, r *http.Request) {
	if h.deps.DB == nil {
		phttp.RespondError(w, r, perr.New(perr.ErrorCodeUnavailable, "database disabled"))
		return
	}
	name := chi.URLParam(r, "table")
	if !tableRe.MatchString(name) {
		phttp.RespondError(w, r, perr.InvalidArgf("table %q is not an archive table", name))
		return
	}
	n, err := repo.CountCommitted(r.Context(), h.deps.DB, name)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, TableResponse{Table: name, Rows: n})
}
