package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coreledger/internal/adapter/http/dto"
	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

// BatchService defines the batch jobs exposed over HTTP.
type BatchService interface {
	RunMonthlyAccruals(ctx context.Context, input usecase.RunAccrualsInput) (*usecase.BatchResult, error)
	ApplyMonthlyFees(ctx context.Context, asOf time.Time) (*usecase.FeeBatchResult, error)
}

// AccrualHistoryService reads recorded accrual rows.
type AccrualHistoryService interface {
	History(ctx context.Context, filter domain.AccrualFilter) ([]*domain.MonthlyAccrual, error)
}

// BatchHandler triggers batch jobs and serves accrual history.
type BatchHandler struct {
	batchUC   BatchService
	accrualUC AccrualHistoryService
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batchUC BatchService, accrualUC AccrualHistoryService) *BatchHandler {
	return &BatchHandler{batchUC: batchUC, accrualUC: accrualUC}
}

// RunAccruals runs the monthly accrual batch. The request outlives a client
// disconnect so a started run is not cut short.
func (h *BatchHandler) RunAccruals(w http.ResponseWriter, r *http.Request) {
	var req dto.RunAccrualsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.batchUC.RunMonthlyAccruals(context.WithoutCancel(r.Context()), usecase.RunAccrualsInput{
		AsOf:   parseOptionalDate(req.AsOf),
		DryRun: req.DryRun,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchResultFromUseCase(result))
}

// RunFees runs the monthly maintenance fee batch.
func (h *BatchHandler) RunFees(w http.ResponseWriter, r *http.Request) {
	var req dto.RunFeesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.batchUC.ApplyMonthlyFees(context.WithoutCancel(r.Context()), parseOptionalDate(req.AsOf))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FeeBatchFromUseCase(result))
}

// History lists accrual rows across accounts.
func (h *BatchHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.history(w, r, q.Get("account_id"), q.Get("status"))
}

// AccountAccruals lists accrual rows for one account.
func (h *BatchHandler) AccountAccruals(w http.ResponseWriter, r *http.Request) {
	h.history(w, r, chi.URLParam(r, "id"), r.URL.Query().Get("status"))
}

func (h *BatchHandler) history(w http.ResponseWriter, r *http.Request, accountID, status string) {
	filter := domain.AccrualFilter{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 50),
		Offset:    parseIntQuery(r, "offset", 0),
	}
	if status != "" {
		st, err := domain.ParseAccrualStatus(status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_STATUS", "invalid status filter", err.Error())
			return
		}
		filter.Status = st
	}

	accruals, err := h.accrualUC.History(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccrualsFromDomain(accruals))
}
