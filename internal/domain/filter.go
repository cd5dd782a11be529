package domain

// AccountFilter selects accounts. A non-empty AfterID switches to keyset paging by ID.
type AccountFilter struct {
	Status  AccountStatus
	AfterID string
	Limit   int
	Offset  int
}

// AccrualFilter selects accrual rows, newest first.
type AccrualFilter struct {
	AccountID string
	Status    AccrualStatus
	Limit     int
	Offset    int
}
