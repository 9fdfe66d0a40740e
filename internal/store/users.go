package store

import (
	"context"

	"github.com/demobank/backend/internal/models"
)

type UserStore struct{}

func NewUserStore() *UserStore {
	return &UserStore{}
}

func (s *UserStore) FindByUsername(ctx context.Context, q Querier, username string) (*models.User, error) {
	var user models.User
	err := q.QueryRowContext(ctx, selectUserByUsername, username).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Email)
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}
