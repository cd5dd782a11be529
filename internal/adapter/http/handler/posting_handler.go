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

// LedgerService defines the behavior needed by PostingHandler.
type LedgerService interface {
	Credit(ctx context.Context, input usecase.ManualPostingInput) (*domain.JournalEntry, error)
	Debit(ctx context.Context, input usecase.ManualPostingInput) (*domain.JournalEntry, error)
	GetBalance(ctx context.Context, accountID string) (*usecase.BalanceSnapshot, error)
	GetBalanceAsOf(ctx context.Context, accountID string, date time.Time) (*usecase.BalanceSnapshot, error)
	GetJournal(ctx context.Context, accountID string, limit, offset int) (*usecase.JournalPage, error)
}

// PostingHandler handles postings and balance reads.
type PostingHandler struct {
	ledgerUC LedgerService
}

// NewPostingHandler creates a new PostingHandler.
func NewPostingHandler(ledgerUC LedgerService) *PostingHandler {
	return &PostingHandler{ledgerUC: ledgerUC}
}

// Credit posts an incoming movement.
func (h *PostingHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.post(w, r, h.ledgerUC.Credit)
}

// Debit posts an outgoing movement.
func (h *PostingHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.post(w, r, h.ledgerUC.Debit)
}

func (h *PostingHandler) post(
	w http.ResponseWriter,
	r *http.Request,
	fn func(context.Context, usecase.ManualPostingInput) (*domain.JournalEntry, error),
) {
	var req dto.PostingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := fn(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(entry))
}

// Balance returns the current balance, or the balance as of a value date.
func (h *PostingHandler) Balance(w http.ResponseWriter, r *http.Request) {
	asOf, ok, err := parseDateQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_DATE", "invalid as_of", err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	var snapshot *usecase.BalanceSnapshot
	if ok {
		snapshot, err = h.ledgerUC.GetBalanceAsOf(r.Context(), id, asOf)
	} else {
		snapshot, err = h.ledgerUC.GetBalance(r.Context(), id)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromSnapshot(snapshot))
}

// Journal lists an account's transactions, newest first.
func (h *PostingHandler) Journal(w http.ResponseWriter, r *http.Request) {
	page, err := h.ledgerUC.GetJournal(r.Context(),
		chi.URLParam(r, "id"),
		parseIntQuery(r, "limit", 50),
		parseIntQuery(r, "offset", 0),
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalFromPage(page))
}
