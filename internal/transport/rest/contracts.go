package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marcosklein04/alquileres-ai/internal/domain"
	contractsvc "github.com/marcosklein04/alquileres-ai/internal/service/contract"
)

type contractService interface {
	CreateFromText(ctx context.Context, input contractsvc.CreateFromTextInput) (contractsvc.CreateResult, error)
	CreateManual(ctx context.Context, input contractsvc.ManualInput) (domain.Contract, error)
	Get(ctx context.Context, id uuid.UUID) (contractsvc.View, error)
	List(ctx context.Context, input contractsvc.ListInput) ([]contractsvc.View, error)
	Alerts(ctx context.Context, threshold *int) ([]contractsvc.View, error)
	UpdateRenewalDecision(ctx context.Context, id uuid.UUID, decision domain.RenewalDecision) (domain.Contract, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContractStatus) (domain.Contract, error)
}

// ContractsHandler serves the contract REST endpoints.
type ContractsHandler struct {
	svc contractService
	log *slog.Logger
}

// NewContractsHandler creates a ContractsHandler.
func NewContractsHandler(svc contractService, logger *slog.Logger) *ContractsHandler {
	return &ContractsHandler{
		svc: svc,
		log: logger.With("handler", "contracts"),
	}
}

// ---------------------------------------------------------------------------
// Request / response types
// ---------------------------------------------------------------------------

type createFromTextRequest struct {
	ContractText string `json:"contractText"`
}

type createManualRequest struct {
	Agency           *string `json:"agency"`
	Tenant           *string `json:"tenant"`
	Owner            *string `json:"owner"`
	StartDate        *string `json:"startDate"`
	EndDate          *string `json:"endDate"`
	NoticeWindowDays *int    `json:"noticeWindowDays"`
	TenantEmail      *string `json:"tenantEmail"`
	OwnerEmail       *string `json:"ownerEmail"`
}

type decisionRequest struct {
	Decision string `json:"decision"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type contractResponse struct {
	ID               string  `json:"id"`
	Agency           *string `json:"agency"`
	Tenant           *string `json:"tenant"`
	Owner            *string `json:"owner"`
	StartDate        *string `json:"startDate"`
	EndDate          *string `json:"endDate"`
	NoticeWindowDays int     `json:"noticeWindowDays"`
	Status           string  `json:"status"`
	RenewalDecision  string  `json:"renewalDecision"`
	TenantEmail      *string `json:"tenantEmail"`
	OwnerEmail       *string `json:"ownerEmail"`
	Notified60d      bool    `json:"notified60d"`
	NotifiedAt       *string `json:"notifiedAt"`

	DaysRemaining    *int   `json:"daysRemaining"`
	ExpirationStatus string `json:"expirationStatus"`
	ExpiringSoon     bool   `json:"expiringSoon"`
}

type createdResponse struct {
	ID        string            `json:"id"`
	Extracted *extractedPayload `json:"extracted,omitempty"`
}

type extractedPayload struct {
	Agency    *string `json:"agency"`
	Tenant    *string `json:"tenant"`
	Owner     *string `json:"owner"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
	Model     string  `json:"model"`
}

type listResponse struct {
	Items         []contractResponse `json:"items"`
	ThresholdDays int                `json:"thresholdDays"`
}

type alertsResponse struct {
	Items         []contractResponse `json:"items"`
	ThresholdDays int                `json:"thresholdDays"`
	Total         int                `json:"total"`
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

// Ping handles GET /api/ping.
func (h *ContractsHandler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}

// CreateFromText handles POST /api/contracts.
func (h *ContractsHandler) CreateFromText(w http.ResponseWriter, r *http.Request) {
	var req createFromTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.CreateFromText(r.Context(), contractsvc.CreateFromTextInput{Text: req.ContractText})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	c := result.Contract
	writeJSON(w, http.StatusCreated, createdResponse{
		ID: c.ID.String(),
		Extracted: &extractedPayload{
			Agency:    c.Agency,
			Tenant:    c.Tenant,
			Owner:     c.Owner,
			StartDate: formatDate(c.StartDate),
			EndDate:   formatDate(c.EndDate),
			Model:     result.Model,
		},
	})
}

// CreateManual handles POST /api/contracts/manual.
func (h *ContractsHandler) CreateManual(w http.ResponseWriter, r *http.Request) {
	var req createManualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.svc.CreateManual(r.Context(), contractsvc.ManualInput{
		Agency:           req.Agency,
		Tenant:           req.Tenant,
		Owner:            req.Owner,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		NoticeWindowDays: req.NoticeWindowDays,
		TenantEmail:      req.TenantEmail,
		OwnerEmail:       req.OwnerEmail,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createdResponse{ID: created.ID.String()})
}

// List handles GET /api/contracts.
func (h *ContractsHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.List(r.Context(), contractsvc.ListInput{})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toContractResponses(views))
}

// ListClassified handles GET /api/contracts/list?threshold=&only=.
func (h *ContractsHandler) ListClassified(w http.ResponseWriter, r *http.Request) {
	input := contractsvc.ListInput{}

	threshold, err := queryInt(r, "threshold")
	if err != nil {
		writeError(w, http.StatusBadRequest, "threshold must be an integer")
		return
	}
	input.Threshold = threshold

	if v := r.URL.Query().Get("only"); v != "" {
		only := domain.ExpirationStatus(v)
		input.Only = &only
	}

	views, err := h.svc.List(r.Context(), input)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Items:         toContractResponses(views),
		ThresholdDays: thresholdOrDefault(input.Threshold),
	})
}

// Alerts handles GET /api/alerts/contracts?threshold=.
func (h *ContractsHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	threshold, err := queryInt(r, "threshold")
	if err != nil {
		writeError(w, http.StatusBadRequest, "threshold must be an integer")
		return
	}

	views, err := h.svc.Alerts(r.Context(), threshold)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	items := toContractResponses(views)
	writeJSON(w, http.StatusOK, alertsResponse{
		Items:         items,
		ThresholdDays: thresholdOrDefault(threshold),
		Total:         len(items),
	})
}

// Get handles GET /api/contracts/{id}.
func (h *ContractsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	view, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toContractResponse(view))
}

// UpdateRenewal handles PATCH /api/contracts/{id}/renewal.
func (h *ContractsHandler) UpdateRenewal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.svc.UpdateRenewalDecision(r.Context(), id, domain.RenewalDecision(req.Decision))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	view, err := h.svc.Get(r.Context(), updated.ID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toContractResponse(view))
}

// UpdateStatus handles PATCH /api/contracts/{id}/status.
func (h *ContractsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.svc.UpdateStatus(r.Context(), id, domain.ContractStatus(req.Status))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	view, err := h.svc.Get(r.Context(), updated.ID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toContractResponse(view))
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (h *ContractsHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrExtractionFailed):
		writeError(w, http.StatusUnprocessableEntity, "could not extract contract fields")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "renewal decision already made")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, name string) (*int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func thresholdOrDefault(threshold *int) int {
	if threshold != nil {
		return *threshold
	}
	return domain.DefaultNoticeWindowDays
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := domain.FormatDate(*t)
	return &s
}

func toContractResponse(v contractsvc.View) contractResponse {
	c := v.Contract

	resp := contractResponse{
		ID:               c.ID.String(),
		Agency:           c.Agency,
		Tenant:           c.Tenant,
		Owner:            c.Owner,
		StartDate:        formatDate(c.StartDate),
		EndDate:          formatDate(c.EndDate),
		NoticeWindowDays: c.NoticeWindowDays,
		Status:           c.Status.String(),
		RenewalDecision:  c.RenewalDecision.String(),
		TenantEmail:      c.TenantEmail,
		OwnerEmail:       c.OwnerEmail,
		Notified60d:      c.Notified60d,
		DaysRemaining:    v.Classification.DaysRemaining,
		ExpirationStatus: v.Classification.Status.String(),
		ExpiringSoon:     v.Classification.RequiresNotice,
	}
	if c.NotifiedAt != nil {
		s := c.NotifiedAt.UTC().Format(time.RFC3339)
		resp.NotifiedAt = &s
	}

	return resp
}

func toContractResponses(views []contractsvc.View) []contractResponse {
	out := make([]contractResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toContractResponse(v))
	}
	return out
}
