package account

import "context"

type Repository interface {
	// Create inserts a new account; unique indexes back ErrDuplicateAccount.
	Create(ctx context.Context, a *Account) error

	GetByAccountNumber(ctx context.Context, accountNumber string) (*Account, error)
	// Row lock; only meaningful inside a UnitOfWork transaction
	GetByAccountNumberForUpdate(ctx context.Context, accountNumber string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// ExistsByNumberOrEmail is the uniqueness pre-check used at creation.
	ExistsByNumberOrEmail(ctx context.Context, accountNumber string, email *string) (bool, error)

	List(ctx context.Context) ([]Account, error)
	ListByAccountNumbers(ctx context.Context, accountNumbers []string) ([]Account, error)
	// Pending = approved_by IS NULL and role != admin
	ListPendingApproval(ctx context.Context) ([]Account, error)

	// Update-by-key, each returning the updated record.
	SetApprovedBy(ctx context.Context, accountNumber, approver string) (*Account, error)
	SetLinkedAccounts(ctx context.Context, accountNumber string, linked []string) (*Account, error)
	UpdateFields(ctx context.Context, accountNumber string, columns map[string]any) (*Account, error)
}

// EventPublisher receives account lifecycle events. Implementations must not
// fail the calling operation; errors are returned only for logging.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}
