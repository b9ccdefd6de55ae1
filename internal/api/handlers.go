package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-lab/internal/ledger"
	"github.com/yourusername/value-lab/internal/models"
	"github.com/yourusername/value-lab/internal/tracker"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Field   string `json:"field,omitempty"`
}

// ResultRequest is the body of POST /bets/{position}/result
type ResultRequest struct {
	Result string `json:"result"`
}

// AnalysisRequest is the body of POST /analysis
type AnalysisRequest struct {
	Matchup string `json:"matchup"`
}

// PrefillResponse carries the prefill and, on a feed outage, the reason the
// price must be entered manually
type PrefillResponse struct {
	tracker.Prefill
	Warning string `json:"warning,omitempty"`
}

// Handler serves the tracker endpoints
type Handler struct {
	svc       *tracker.Service
	publisher SummaryPublisher
	logger    *logrus.Entry
}

// NewHandler creates a handler. publisher may be nil.
func NewHandler(svc *tracker.Service, publisher SummaryPublisher, logger *logrus.Logger) *Handler {
	return &Handler{
		svc:       svc,
		publisher: publisher,
		logger:    logger.WithField("component", "api"),
	}
}

// GetPortfolio returns the portfolio summary
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		h.respondServiceError(w, "failed to build portfolio summary", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// ListBets returns every ledger row
func (h *Handler) ListBets(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Bets(r.Context())
	if err != nil {
		h.respondServiceError(w, "failed to read ledger", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bets":  rows,
		"count": len(rows),
	})
}

// CreateBet records a new pending bet
func (h *Handler) CreateBet(w http.ResponseWriter, r *http.Request) {
	var entry models.BetEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bet, err := h.svc.RecordBet(r.Context(), entry)
	if err != nil {
		h.respondServiceError(w, "failed to record bet", err)
		return
	}
	respondJSON(w, http.StatusCreated, bet)
}

// SetResult records the outcome of one bet
func (h *Handler) SetResult(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil || position < 1 {
		respondError(w, http.StatusBadRequest, "position must be a positive integer")
		return
	}

	var req ResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, ok := ledger.ParseResult(req.Result)
	if !ok {
		respondError(w, http.StatusBadRequest, "result must be one of: pending, win, loss, void")
		return
	}

	if err := h.svc.SetResult(r.Context(), position, result); err != nil {
		h.respondServiceError(w, "failed to record result", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"position": position,
		"result":   result,
	})
}

// Reconcile runs a settlement pass and pushes the new summary to stream clients
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Reconcile(r.Context())
	if err != nil {
		h.respondServiceError(w, "reconciliation failed", err)
		return
	}

	if h.publisher != nil && len(report.Applied) > 0 {
		if summary, err := h.svc.Summary(r.Context()); err == nil {
			h.publisher.PublishSummary(summary)
		}
	}
	respondJSON(w, http.StatusOK, report)
}

// ListQuotes returns the reference quote of every feed matchup
func (h *Handler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.svc.ReferenceQuotes(r.Context())
	if err != nil {
		h.respondServiceError(w, "failed to fetch quotes", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matchups": quotes,
		"count":    len(quotes),
	})
}

// Prefill returns the reference price for one side of a matchup. A feed
// outage still answers 200 with the sentinel price so the entry can proceed.
func (h *Handler) Prefill(w http.ResponseWriter, r *http.Request) {
	matchup := strings.TrimSpace(r.URL.Query().Get("matchup"))
	selection := strings.TrimSpace(r.URL.Query().Get("selection"))
	if matchup == "" || selection == "" {
		respondError(w, http.StatusBadRequest, "matchup and selection are required")
		return
	}

	prefill, err := h.svc.PrefillEntry(r.Context(), matchup, selection)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, PrefillResponse{Prefill: prefill})
	case errors.Is(err, models.ErrFeedUnavailable):
		h.logger.WithError(err).Warn("Prefill without odds feed")
		respondJSON(w, http.StatusOK, PrefillResponse{Prefill: prefill, Warning: "odds feed unavailable, enter odds manually"})
	default:
		h.respondServiceError(w, "failed to prefill entry", err)
	}
}

// Analyze returns the analysis text for one matchup
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Matchup) == "" {
		respondError(w, http.StatusBadRequest, "matchup is required")
		return
	}

	text, err := h.svc.Analyze(r.Context(), req.Matchup)
	if err != nil {
		h.respondServiceError(w, "analysis failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"matchup":  req.Matchup,
		"analysis": text,
	})
}

// respondServiceError maps tracker errors to status codes
func (h *Handler) respondServiceError(w http.ResponseWriter, message string, err error) {
	var validationErr *models.ValidationError
	var persistenceErr *models.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   http.StatusText(http.StatusBadRequest),
			Message: validationErr.Error(),
			Code:    http.StatusBadRequest,
			Field:   validationErr.Field,
		})
		return
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, models.ErrFeedUnavailable), errors.Is(err, models.ErrAnalysisUnavailable):
		h.logger.WithError(err).Warn(message)
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.As(err, &persistenceErr):
		h.logger.WithError(err).WithField("op", persistenceErr.Op).Error(message)
		respondError(w, http.StatusBadGateway, message)
		return
	default:
		h.logger.WithError(err).Error(message)
		respondError(w, http.StatusInternalServerError, message)
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
