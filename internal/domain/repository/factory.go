package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Products() ProductRepository
	Orders() OrderRepository
	Transactions() TransactionRepository
	Recipients() RecipientRepository
	Contacts() ContactRepository
}

// Transactor runs fn against repositories bound to a single database
// transaction. The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	Atomic(ctx context.Context, fn func(Factory) error) error
}
