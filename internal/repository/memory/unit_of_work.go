package memory

import (
	"context"
	"fmt"

	"bookreview-be/internal/repository/contract"
	"bookreview-be/internal/repository/unitofwork"
)

type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

type UnitOfWork struct {
	store    *Store
	snapshot *tables
}

func (u *UnitOfWork) inTx() bool {
	return u != nil && u.snapshot != nil
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.snapshot != nil {
		return fmt.Errorf("transaction already started")
	}
	u.store.txMu.Lock()
	u.snapshot = u.store.snapshot()
	return nil
}

func (u *UnitOfWork) Commit() error {
	if u.snapshot == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.snapshot = nil
	u.store.txMu.Unlock()
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if u.snapshot == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	u.store.restore(u.snapshot)
	u.snapshot = nil
	u.store.txMu.Unlock()
	return nil
}

func (u *UnitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{store: u.store, uow: u}
}

func (u *UnitOfWork) ProfileRepository() contract.ProfileRepository {
	return &profileRepository{store: u.store, uow: u}
}

func (u *UnitOfWork) BookRepository() contract.BookRepository {
	return &bookRepository{store: u.store, uow: u}
}

func (u *UnitOfWork) AssignmentRepository() contract.AssignmentRepository {
	return &assignmentRepository{store: u.store, uow: u}
}

func (u *UnitOfWork) CreditPurchaseRepository() contract.CreditPurchaseRepository {
	return &creditPurchaseRepository{store: u.store, uow: u}
}

func (u *UnitOfWork) RefundRepository() contract.RefundRepository {
	return &refundRepository{store: u.store, uow: u}
}

func (u *UnitOfWork) AuditLogRepository() contract.AuditLogRepository {
	return &auditLogRepository{store: u.store, uow: u}
}
