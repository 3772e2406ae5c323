package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmaas/techwiki/internal/log"
	"github.com/dmaas/techwiki/internal/runner"
)

// CodeRunner forwards code execution to the sandbox.
type CodeRunner interface {
	Run(ctx context.Context, req runner.Request) (*runner.Result, error)
}

// RunHandler serves POST /api/run.
type RunHandler struct {
	runner CodeRunner
	logger log.Logger
}

// NewRunHandler creates a run handler.
func NewRunHandler(r CodeRunner, logger log.Logger) *RunHandler {
	return &RunHandler{runner: r, logger: logger}
}

// RegisterRoutes registers run routes on the given mux.
func (h *RunHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/run", h.run)
}

func (h *RunHandler) run(w http.ResponseWriter, r *http.Request) {
	var req runner.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, runner.MaxCodeBytes+runner.MaxStdinBytes+4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	result, err := h.runner.Run(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, runner.ErrUnsupportedLanguage):
			writeError(w, http.StatusBadRequest, "unsupported_language", err.Error())
		case errors.Is(err, runner.ErrCodeTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "code_too_large", err.Error())
		case errors.Is(err, runner.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, "rate_limited", "try again later")
		case errors.Is(err, runner.ErrSandboxUnavailable):
			writeError(w, http.StatusBadGateway, "sandbox_unavailable", "execution backend unavailable")
		default:
			h.logger.Error("code run failed", "error", err)
			writeError(w, http.StatusInternalServerError, "run_failed", "code execution failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
