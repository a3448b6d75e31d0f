// Package api serves the commit/reveal engine over HTTP.
package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	com_clock "github.com/mr-shifu/pedersen-commit/pkg/common/clock"
	"github.com/mr-shifu/pedersen-commit/pkg/common/commitstore"
	"github.com/mr-shifu/pedersen-commit/pkg/commitreveal"
	"github.com/mr-shifu/pedersen-commit/pkg/log"
)

const (
	moduleName = "api"

	maxBodyBytes = 1 << 16
)

type requestIDKey struct{}

// Backend applies commit and reveal operations. It is satisfied by
// commitreveal.Engine and by host.Executor.
type Backend interface {
	Commit(ctx context.Context, identity string, g, h, payload []byte) error
	Reveal(ctx context.Context, identity string, message, secret []byte) (com_clock.Timestamp, error)
	Entry(ctx context.Context, identity string) (*commitstore.Entry, error)
}

// Handler handles API requests.
type Handler struct {
	engine Backend
	router *chi.Mux
	logger *log.Logger
}

// NewHandler creates a new API handler.
func NewHandler(engine Backend, logger *log.Logger) *Handler {
	h := &Handler{
		engine: engine,
		router: chi.NewRouter(),
		logger: logger.WithModule(moduleName),
	}
	h.router.Use(h.requestLogger)
	h.router.Use(middleware.Recoverer)

	h.router.Route("/v1/commitments/{identity}", func(r chi.Router) {
		r.Put("/", h.Commit)
		r.Get("/", h.GetCommitment)
		r.Post("/reveal", h.Reveal)
	})
	return h
}

// Router gets the router for this Handler.
func (h *Handler) Router() *chi.Mux {
	return h.router
}

// requestLogger tags every request with an ID and logs its outcome.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New()
		t := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID)))

		h.logger.Info("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestID.String(),
			"status", ww.Status(),
			"latency_ms", time.Since(t).Milliseconds(),
		)
	})
}

// Commit handles PUT /v1/commitments/{identity}.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		HumanReadableJsonErrorHandler(w, r, err)
		return
	}
	g, hh, payload, err := req.decode()
	if err != nil {
		HumanReadableJsonErrorHandler(w, r, err)
		return
	}

	if err := h.engine.Commit(r.Context(), chi.URLParam(r, "identity"), g, hh, payload); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reveal handles POST /v1/commitments/{identity}/reveal.
func (h *Handler) Reveal(w http.ResponseWriter, r *http.Request) {
	var req RevealRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		HumanReadableJsonErrorHandler(w, r, err)
		return
	}

	at, err := h.engine.Reveal(r.Context(), chi.URLParam(r, "identity"), []byte(req.Message), []byte(req.Secret))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RevealResponse{RevealedAt: uint64(at)})
}

// GetCommitment handles GET /v1/commitments/{identity}.
func (h *Handler) GetCommitment(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	entry, err := h.engine.Entry(r.Context(), identity)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := CommitmentResponse{
		Identity:    identity,
		State:       entry.State().String(),
		PointG:      hex.EncodeToString(entry.G),
		PointH:      hex.EncodeToString(entry.H),
		Payload:     hex.EncodeToString(entry.Payload),
		CommittedAt: uint64(entry.CommittedAt),
	}
	if entry.RevealedAt != nil {
		at := uint64(*entry.RevealedAt)
		resp.RevealedAt = &at
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.WithMessage(ErrBadRequest, err.Error())
	}
	return nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if commitreveal.IsFatal(err) {
		h.logger.Error("request failed", "path", r.URL.Path, "request_id", requestID(r), "err", err)
	}
	HumanReadableJsonErrorHandler(w, r, err)
}

func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey{}).(uuid.UUID); ok {
		return id.String()
	}
	return ""
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
