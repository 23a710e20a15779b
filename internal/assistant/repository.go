package assistant

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("assistant: not found")
	ErrInvalidArgument = errors.New("assistant: invalid argument")
)

// Repository persists assistant mirrors keyed by provider id.
type Repository interface {
	Insert(ctx context.Context, a Assistant) error
	Update(ctx context.Context, a Assistant) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (Assistant, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Assistant, error)
}
