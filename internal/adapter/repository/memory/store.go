// Package memory is a transactional in-memory store for the ledger. Writes made through a
// Tx are buffered and applied atomically on Commit. Reads, including reads inside a Tx,
// see committed state only.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

// ErrTxClosed is returned when a finished transaction is used again.
var ErrTxClosed = errors.New("memory: transaction already closed")

// Store holds all ledger state for one process.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]*domain.Account
	entries      map[string][]*domain.JournalEntry // per account, sequence order
	accruals     []*domain.MonthlyAccrual
	products     map[string]*domain.Product
	productCodes map[string]string

	lockMu sync.Mutex
	locks  map[string]chan struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]*domain.Account),
		entries:      make(map[string][]*domain.JournalEntry),
		products:     make(map[string]*domain.Product),
		productCodes: make(map[string]string),
		locks:        make(map[string]chan struct{}),
	}
}

// lockAccount takes the exclusive lock for one account, waiting until ctx ends.
func (s *Store) lockAccount(ctx context.Context, id string) (func(), error) {
	s.lockMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[id] = l
	}
	s.lockMu.Unlock()

	select {
	case l <- struct{}{}:
		return func() { <-l }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("memory: waiting for account %s lock: %w", id, ctx.Err())
	}
}

// op applies one buffered write and returns how to revert it.
type op func(s *Store) (undo func(), err error)

// Tx is a buffered store transaction. It is not safe for concurrent use.
type Tx struct {
	store *Store
	ops   []op
	held  map[string]func()
	done  bool
}

func (tx *Tx) stage(o op) error {
	if tx.done {
		return ErrTxClosed
	}
	tx.ops = append(tx.ops, o)
	return nil
}

func (tx *Tx) lock(ctx context.Context, accountID string) error {
	if tx.done {
		return ErrTxClosed
	}
	if _, ok := tx.held[accountID]; ok {
		return nil
	}
	release, err := tx.store.lockAccount(ctx, accountID)
	if err != nil {
		return err
	}
	tx.held[accountID] = release
	return nil
}

func (tx *Tx) release() {
	for id, release := range tx.held {
		release()
		delete(tx.held, id)
	}
}

// Commit applies every buffered write or none of them.
func (tx *Tx) Commit(ctx context.Context) error {
	if tx.done {
		return ErrTxClosed
	}
	tx.done = true
	defer tx.release()

	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	undos := make([]func(), 0, len(tx.ops))
	for _, o := range tx.ops {
		undo, err := o(s)
		if err != nil {
			for i := len(undos) - 1; i >= 0; i-- {
				undos[i]()
			}
			return err
		}
		undos = append(undos, undo)
	}
	return nil
}

// Rollback discards buffered writes. Rolling back a finished transaction is a no-op.
func (tx *Tx) Rollback(ctx context.Context) error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.ops = nil
	tx.release()
	return nil
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a transaction manager over store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{store: m.store, held: make(map[string]func())}, nil
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("memory: unsupported transaction type %T", tx)
	}
	return t, nil
}

var _ usecase.TransactionManager = (*TxManager)(nil)
