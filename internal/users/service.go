package users

import "context"

// Service wraps user account queries.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get fetches a user by ID.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// List returns users matching the request.
func (s *Service) List(ctx context.Context, req ListUsersRequest) ([]User, int, error) {
	return s.repo.List(ctx, req)
}

// TouchLastLogin stamps the account's last login time.
func (s *Service) TouchLastLogin(ctx context.Context, id int64) error {
	return s.repo.TouchLastLogin(ctx, id)
}
