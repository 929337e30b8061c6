package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/jobtimeline/pkg/buildinfo"
	apperr "github.com/matzehuels/jobtimeline/pkg/errors"
	"github.com/matzehuels/jobtimeline/pkg/graph"
	"github.com/matzehuels/jobtimeline/pkg/observability"
	"github.com/matzehuels/jobtimeline/pkg/pipeline"
)

var (
	errNotFound         = apperr.New(apperr.ErrCodeNotFound, "no such route")
	errMethodNotAllowed = apperr.New(apperr.ErrCodeUnsupported, "method not allowed")
)

// contentTypes maps artifact formats to the Content-Type of a raw response.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// LayoutResponse is the body of POST /v1/layout.
type LayoutResponse struct {
	Layout graph.Layout `json:"layout"`
	Cached bool         `json:"cached"`
}

// RenderResponse is the body of POST /v1/render when several formats are
// requested. Artifacts are base64 encoded.
type RenderResponse struct {
	Hash      string            `json:"hash"`
	Artifacts map[string][]byte `json:"artifacts"`
	Cached    bool              `json:"cached"`
	Lanes     int               `json:"lanes,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": info.Version,
		"commit":  info.Commit,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decodeOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	wf, err := s.cfg.Runner.Load(ctx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	layout, hit, err := s.cfg.Runner.ComputeLayoutWithCacheInfo(ctx, wf, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("X-Cache", cacheHeader(hit))
	writeJSON(w, http.StatusOK, LayoutResponse{Layout: layout, Cached: hit})
}

// handleRender answers a single format with the raw artifact and several
// formats with a RenderResponse.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decodeOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts.SetRenderDefaults()
	res, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	formats := opts.Formats
	w.Header().Set("X-Cache", cacheHeader(res.CacheInfo.RenderHit))
	w.Header().Set("X-Layout-Hash", res.Layout.Hash)

	if len(formats) == 1 {
		w.Header().Set("Content-Type", contentTypes[formats[0]])
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Artifacts[formats[0]])
		return
	}

	writeJSON(w, http.StatusOK, RenderResponse{
		Hash:      res.Layout.Hash,
		Artifacts: res.Artifacts,
		Cached:    res.CacheInfo.RenderHit,
		Lanes:     res.Stats.Lanes,
	})
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	l, err := s.cfg.Runner.StoredLayout(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// decodeOptions reads pipeline options from the request body.
func (s *Server) decodeOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return opts, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "request body exceeds %d bytes", s.cfg.MaxBodyBytes)
		}
		return opts, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "malformed request body")
	}
	if opts.Input != "" {
		return opts, apperr.New(apperr.ErrCodeInvalidInput, "input paths are not accepted; send the workflow inline")
	}
	if opts.Workflow == nil {
		return opts, apperr.New(apperr.ErrCodeInvalidInput, "missing workflow")
	}
	opts.Logger = s.cfg.Logger
	return opts, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.CodeOf(err)
	status := apperr.HTTPStatus(code)
	if code == "" {
		code = apperr.ErrCodeInternal
	}
	id := RequestIDFrom(r.Context())
	observability.HTTP().OnError(r.Context(), id, r.Method, r.URL.Path, err)
	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed", "id", id, "path", r.URL.Path, "err", err)
	}

	msg := apperr.Detail(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	if errors.Is(err, errMethodNotAllowed) {
		status = http.StatusMethodNotAllowed
	}
	writeJSON(w, status, ErrorResponse{Code: string(code), Message: msg, RequestID: id})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
