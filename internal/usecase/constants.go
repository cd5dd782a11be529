package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a store transaction
	// This prevents long-running transactions from holding account locks
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// BatchLockTTL bounds how long a crashed batch can block the next one
	BatchLockTTL = 30 * time.Minute

	// DefaultBatchConcurrency is the number of accounts processed in parallel
	DefaultBatchConcurrency = 4

	// batchPageSize is the keyset page used when enumerating accounts
	batchPageSize = 200

	// ChannelAPI and ChannelBatch tag the origin of a posting
	ChannelAPI   = "API"
	ChannelBatch = "Batch"

	// TransactionFeeDescription labels the fee entry posted alongside a customer debit
	TransactionFeeDescription = "Transaction fee"
)
