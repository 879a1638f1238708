package service

import (
	"context"
	"golang.org/x/sync/errgroup"
	"kusina-service/internal/auth"
	"kusina-service/internal/entity"
)

// CustomerService is the admin view of customer accounts.
type CustomerService struct {
	users  UserStore
	orders OrderStore
}

func NewCustomerService(users UserStore, orders OrderStore) *CustomerService {
	return &CustomerService{users: users, orders: orders}
}

func (s *CustomerService) List(ctx context.Context, p auth.Principal) ([]entity.User, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, authError(err)
	}
	customers, err := s.users.ListByRole(ctx, entity.RoleCustomer)
	if err != nil {
		return nil, internalError(err, "listing customers")
	}
	if customers == nil {
		customers = []entity.User{}
	}
	return customers, nil
}

// Get returns a customer together with their order history.
func (s *CustomerService) Get(ctx context.Context, p auth.Principal, id string) (*entity.CustomerDetail, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, authError(err)
	}
	userID, err := parseID(id, "customer")
	if err != nil {
		return nil, err
	}

	var (
		user   *entity.User
		orders []entity.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.users.FindByID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.orders.ListByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError(err, "customer", "loading customer")
	}
	if user.Role != entity.RoleCustomer {
		return nil, notFound("customer")
	}
	if orders == nil {
		orders = []entity.Order{}
	}

	return &entity.CustomerDetail{User: *user, Orders: orders}, nil
}
