package dto

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

func fixed(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(domain.CurrencyScale(currency))
}

func date(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func totals(byCurrency map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(byCurrency))
	for ccy, amount := range byCurrency {
		out[ccy] = fixed(amount, ccy)
	}
	return out
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"customer_id"`
	ProductID      string    `json:"product_id"`
	Currency       string    `json:"currency"`
	Balance        string    `json:"balance"`
	OverdraftLimit string    `json:"overdraft_limit"`
	Status         string    `json:"status"`
	OpeningDate    string    `json:"opening_date"`
	ClosingDate    *string   `json:"closing_date,omitempty"`
	Sequence       int64     `json:"sequence"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	resp := &AccountResponse{
		ID:             a.ID,
		CustomerID:     a.CustomerID,
		ProductID:      a.ProductID,
		Currency:       a.Currency,
		Balance:        fixed(a.Balance, a.Currency),
		OverdraftLimit: fixed(a.OverdraftLimit, a.Currency),
		Status:         string(a.Status),
		OpeningDate:    date(a.OpeningDate),
		Sequence:       a.Sequence,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.ClosingDate != nil {
		closing := date(*a.ClosingDate)
		resp.ClosingDate = &closing
	}
	return resp
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// TransactionResponse represents a journal entry in API responses.
type TransactionResponse struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	Sequence        int64     `json:"sequence"`
	Direction       string    `json:"direction"`
	Category        string    `json:"category"`
	Amount          string    `json:"amount"`
	Currency        string    `json:"currency"`
	PreviousBalance string    `json:"previous_balance"`
	RunningBalance  string    `json:"running_balance"`
	Description     string    `json:"description,omitempty"`
	Reference       string    `json:"reference,omitempty"`
	Channel         string    `json:"channel,omitempty"`
	TransactionAt   time.Time `json:"transaction_at"`
	ValueDate       string    `json:"value_date"`
	CreatedBy       string    `json:"created_by"`
}

// TransactionFromDomain converts a journal entry to response.
func TransactionFromDomain(e *domain.JournalEntry) *TransactionResponse {
	return &TransactionResponse{
		ID:              e.ID,
		AccountID:       e.AccountID,
		Sequence:        e.Sequence,
		Direction:       string(e.Direction),
		Category:        e.Category.String(),
		Amount:          fixed(e.Amount, e.Currency),
		Currency:        e.Currency,
		PreviousBalance: fixed(e.PreviousBalance, e.Currency),
		RunningBalance:  fixed(e.RunningBalance, e.Currency),
		Description:     e.Description,
		Reference:       e.Reference,
		Channel:         e.Channel,
		TransactionAt:   e.TransactionAt,
		ValueDate:       date(e.ValueDate),
		CreatedBy:       e.CreatedBy,
	}
}

// BalanceResponse is an account balance at a posting sequence.
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
	Currency  string `json:"currency"`
	Sequence  int64  `json:"sequence"`
	AsOf      string `json:"as_of"`
}

// BalanceFromSnapshot converts a balance snapshot to response.
func BalanceFromSnapshot(s *usecase.BalanceSnapshot) *BalanceResponse {
	return &BalanceResponse{
		AccountID: s.AccountID,
		Balance:   s.Balance.String(),
		Currency:  s.Balance.Currency,
		Sequence:  s.Sequence,
		AsOf:      date(s.AsOf),
	}
}

// JournalResponse is a page of an account's journal.
type JournalResponse struct {
	AccountID    string                 `json:"account_id"`
	Balance      string                 `json:"balance"`
	Currency     string                 `json:"currency"`
	Sequence     int64                  `json:"sequence"`
	Transactions []*TransactionResponse `json:"transactions"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}

// JournalFromPage converts a journal page to response.
func JournalFromPage(p *usecase.JournalPage) *JournalResponse {
	txs := make([]*TransactionResponse, len(p.Entries))
	for i, e := range p.Entries {
		txs[i] = TransactionFromDomain(e)
	}
	return &JournalResponse{
		AccountID:    p.AccountID,
		Balance:      p.Balance.String(),
		Currency:     p.Balance.Currency,
		Sequence:     p.Sequence,
		Transactions: txs,
		Limit:        p.Limit,
		Offset:       p.Offset,
	}
}

// ProductResponse represents a product in API responses.
type ProductResponse struct {
	ID                        string    `json:"id"`
	Code                      string    `json:"code"`
	Name                      string    `json:"name,omitempty"`
	Currency                  string    `json:"currency"`
	AnnualInterestRate        string    `json:"annual_interest_rate"`
	MinimumBalanceForInterest string    `json:"minimum_balance_for_interest"`
	MonthlyMaintenanceFee     string    `json:"monthly_maintenance_fee"`
	TransactionFee            string    `json:"transaction_fee"`
	OverdraftLimit            string    `json:"overdraft_limit"`
	CreatedAt                 time.Time `json:"created_at"`
}

// ProductFromDomain converts domain product to response.
func ProductFromDomain(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:                        p.ID,
		Code:                      p.Code,
		Name:                      p.Name,
		Currency:                  p.Currency,
		AnnualInterestRate:        p.AnnualInterestRate.String(),
		MinimumBalanceForInterest: fixed(p.MinimumBalanceForInterest, p.Currency),
		MonthlyMaintenanceFee:     fixed(p.MonthlyMaintenanceFee, p.Currency),
		TransactionFee:            fixed(p.TransactionFee, p.Currency),
		OverdraftLimit:            fixed(p.OverdraftLimit, p.Currency),
		CreatedAt:                 p.CreatedAt,
	}
}

// AccrualResponse represents a monthly accrual row.
type AccrualResponse struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	Month           string    `json:"month"`
	Currency        string    `json:"currency"`
	MonthEndBalance string    `json:"month_end_balance"`
	AnnualRate      string    `json:"annual_rate"`
	Interest        string    `json:"interest"`
	PostingDate     string    `json:"posting_date"`
	ProcessedAt     time.Time `json:"processed_at"`
	Status          string    `json:"status"`
	TransactionID   string    `json:"transaction_id,omitempty"`
	FailureReason   string    `json:"failure_reason,omitempty"`
}

// AccrualsFromDomain converts accrual rows to responses.
func AccrualsFromDomain(accruals []*domain.MonthlyAccrual) []*AccrualResponse {
	result := make([]*AccrualResponse, len(accruals))
	for i, a := range accruals {
		result[i] = &AccrualResponse{
			ID:              a.ID,
			AccountID:       a.AccountID,
			Month:           a.Month.String(),
			Currency:        a.Currency,
			MonthEndBalance: fixed(a.MonthEndBalance, a.Currency),
			AnnualRate:      a.AnnualRate.String(),
			Interest:        fixed(a.Interest, a.Currency),
			PostingDate:     date(a.PostingDate),
			ProcessedAt:     a.ProcessedAt,
			Status:          string(a.Status),
			TransactionID:   a.TransactionID,
			FailureReason:   a.FailureReason,
		}
	}
	return result
}

// MonthResultResponse is the outcome of one month in a run.
type MonthResultResponse struct {
	Month           string `json:"month"`
	Status          string `json:"status"`
	MonthEndBalance string `json:"month_end_balance"`
	Interest        string `json:"interest"`
	TransactionID   string `json:"transaction_id,omitempty"`
	Error           string `json:"error,omitempty"`
}

// AccountAccrualResponse summarises one account in a run.
type AccountAccrualResponse struct {
	AccountID     string                 `json:"account_id"`
	Currency      string                 `json:"currency"`
	MonthsPosted  int                    `json:"months_posted"`
	MonthsSkipped int                    `json:"months_skipped"`
	TotalInterest string                 `json:"total_interest"`
	Months        []*MonthResultResponse `json:"months"`
	Error         string                 `json:"error,omitempty"`
}

// BatchResultResponse summarises a monthly accrual run.
type BatchResultResponse struct {
	AsOf              string                    `json:"as_of"`
	DryRun            bool                      `json:"dry_run"`
	AccountsProcessed int                       `json:"accounts_processed"`
	AccountsFailed    int                       `json:"accounts_failed"`
	MonthsProcessed   int                       `json:"months_processed"`
	TotalInterest     map[string]string         `json:"total_interest"`
	Interrupted       bool                      `json:"interrupted"`
	StartedAt         time.Time                 `json:"started_at"`
	FinishedAt        time.Time                 `json:"finished_at"`
	Results           []*AccountAccrualResponse `json:"results"`
}

// BatchResultFromUseCase converts a run result to response.
func BatchResultFromUseCase(r *usecase.BatchResult) *BatchResultResponse {
	results := make([]*AccountAccrualResponse, len(r.Results))
	for i, o := range r.Results {
		months := make([]*MonthResultResponse, len(o.Months))
		for j, m := range o.Months {
			months[j] = &MonthResultResponse{
				Month:           m.Month.String(),
				Status:          string(m.Status),
				MonthEndBalance: fixed(m.MonthEndBalance, o.Currency),
				Interest:        fixed(m.Interest, o.Currency),
				TransactionID:   m.TransactionID,
				Error:           errString(m.Error),
			}
		}
		results[i] = &AccountAccrualResponse{
			AccountID:     o.AccountID,
			Currency:      o.Currency,
			MonthsPosted:  o.MonthsPosted,
			MonthsSkipped: o.MonthsSkipped,
			TotalInterest: fixed(o.TotalInterest, o.Currency),
			Months:        months,
			Error:         errString(o.Err),
		}
	}

	return &BatchResultResponse{
		AsOf:              date(r.AsOf),
		DryRun:            r.DryRun,
		AccountsProcessed: r.AccountsProcessed,
		AccountsFailed:    r.AccountsFailed,
		MonthsProcessed:   r.MonthsProcessed,
		TotalInterest:     totals(r.TotalInterest),
		Interrupted:       r.Interrupted,
		StartedAt:         r.StartedAt,
		FinishedAt:        r.FinishedAt,
		Results:           results,
	}
}

// FeeResultResponse is the fee outcome for one account.
type FeeResultResponse struct {
	AccountID     string `json:"account_id"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	TransactionID string `json:"transaction_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// FeeBatchResponse summarises a maintenance fee run.
type FeeBatchResponse struct {
	Month           string               `json:"month"`
	AccountsCharged int                  `json:"accounts_charged"`
	AccountsSkipped int                  `json:"accounts_skipped"`
	AccountsFailed  int                  `json:"accounts_failed"`
	TotalFees       map[string]string    `json:"total_fees"`
	Interrupted     bool                 `json:"interrupted"`
	Results         []*FeeResultResponse `json:"results"`
}

// FeeBatchFromUseCase converts a fee run result to response.
func FeeBatchFromUseCase(r *usecase.FeeBatchResult) *FeeBatchResponse {
	results := make([]*FeeResultResponse, len(r.Results))
	for i, f := range r.Results {
		results[i] = &FeeResultResponse{
			AccountID:     f.AccountID,
			Status:        f.Status,
			Amount:        fixed(f.Amount, f.Currency),
			TransactionID: f.TransactionID,
			Reason:        f.Reason,
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].AccountID < results[j].AccountID })

	return &FeeBatchResponse{
		Month:           r.Month.String(),
		AccountsCharged: r.AccountsCharged,
		AccountsSkipped: r.AccountsSkipped,
		AccountsFailed:  r.AccountsFailed,
		TotalFees:       totals(r.TotalFees),
		Interrupted:     r.Interrupted,
		Results:         results,
	}
}

// ReconciliationResponse is the check of one account.
type ReconciliationResponse struct {
	AccountID          string    `json:"account_id"`
	RecordedBalance    string    `json:"recorded_balance"`
	CalculatedBalance  string    `json:"calculated_balance"`
	LastRunningBalance string    `json:"last_running_balance"`
	Difference         string    `json:"difference"`
	RecordedSequence   int64     `json:"recorded_sequence"`
	EntryCount         int64     `json:"entry_count"`
	IsReconciled       bool      `json:"is_reconciled"`
	LastChecked        time.Time `json:"last_checked"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:          r.AccountID,
		RecordedBalance:    fixed(r.RecordedBalance, r.Currency),
		CalculatedBalance:  fixed(r.CalculatedBalance, r.Currency),
		LastRunningBalance: fixed(r.LastRunningBalance, r.Currency),
		Difference:         fixed(r.Difference, r.Currency),
		RecordedSequence:   r.RecordedSequence,
		EntryCount:         r.EntryCount,
		IsReconciled:       r.IsReconciled,
		LastChecked:        r.LastChecked,
	}
}

// ReconciliationReportResponse summarises a full reconciliation pass.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReportFromUseCase converts a reconciliation report to response.
func ReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromUseCase(d)
	}
	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		CheckedAt:          r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}
