package service

import (
	"storefront/internal/database"
	"storefront/internal/repository"
)

// Stores bundles the repositories a service touches, all bound to the same
// database handle so a transactional operation sees one consistent view.
type Stores struct {
	Users         repository.UserRepository
	Products      repository.ProductRepository
	Carts         repository.CartRepository
	Orders        repository.OrderRepository
	Notifications repository.NotificationRepository
	Comments      repository.CommentRepository
}

// StoreFactory builds a Stores bundle over a handle; pass *sql.DB for
// standalone reads or the transaction for multi-step writes.
type StoreFactory func(db database.DBTX) Stores

// NewStoreFactory returns the production factory over the SQL repositories.
func NewStoreFactory() StoreFactory {
	return func(db database.DBTX) Stores {
		return Stores{
			Users:         repository.NewUserRepository(db),
			Products:      repository.NewProductRepository(db),
			Carts:         repository.NewCartRepository(db),
			Orders:        repository.NewOrderRepository(db),
			Notifications: repository.NewNotificationRepository(db),
			Comments:      repository.NewCommentRepository(db),
		}
	}
}
