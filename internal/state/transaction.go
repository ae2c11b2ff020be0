package state

import (
	"context"
	"errors"
)

type (
	// Transactional is the capability a storage connector must have to be
	// committed or rolled back by transaction blocks
	Transactional interface {
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// TransactionManager tracks the transactions opened during an execution
	TransactionManager struct {
		open []Transactional
	}
)

var ErrUnknownTransaction = errors.New("transaction not managed")

// NewTransactionManager creates an empty transaction manager
func NewTransactionManager() *TransactionManager {
	return &TransactionManager{}
}

// Track registers a newly opened transaction
func (m *TransactionManager) Track(tx Transactional) {
	m.open = append(m.open, tx)
}

// Commit commits a tracked transaction and stops tracking it
func (m *TransactionManager) Commit(
	ctx context.Context, tx Transactional,
) error {
	if !m.release(tx) {
		return ErrUnknownTransaction
	}
	return tx.Commit(ctx)
}

// Rollback rolls back a tracked transaction and stops tracking it
func (m *TransactionManager) Rollback(
	ctx context.Context, tx Transactional,
) error {
	if !m.release(tx) {
		return ErrUnknownTransaction
	}
	return tx.Rollback(ctx)
}

// RollbackAll rolls back every tracked transaction, most recent first
func (m *TransactionManager) RollbackAll(ctx context.Context) error {
	var errs []error
	for i := len(m.open) - 1; i >= 0; i-- {
		if err := m.open[i].Rollback(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	m.open = nil
	return errors.Join(errs...)
}

// Open returns the number of tracked transactions
func (m *TransactionManager) Open() int {
	return len(m.open)
}

func (m *TransactionManager) release(tx Transactional) bool {
	for i, t := range m.open {
		if t == tx {
			m.open = append(m.open[:i], m.open[i+1:]...)
			return true
		}
	}
	return false
}
