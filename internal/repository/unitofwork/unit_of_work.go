package unitofwork

import (
	"context"

	"bookreview-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ProfileRepository() contract.ProfileRepository
	BookRepository() contract.BookRepository
	AssignmentRepository() contract.AssignmentRepository
	CreditPurchaseRepository() contract.CreditPurchaseRepository
	RefundRepository() contract.RefundRepository
	AuditLogRepository() contract.AuditLogRepository
}

// RunInTx executes fn inside a transaction, rolling back when fn or the commit fails.
func RunInTx(ctx context.Context, uow UnitOfWork, fn func(uow UnitOfWork) error) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := fn(uow); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		_ = uow.Rollback()
		return err
	}
	return nil
}
