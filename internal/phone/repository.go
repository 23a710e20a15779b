package phone

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("phone: not found")
	ErrNumberTaken     = errors.New("phone: number already provisioned")
	ErrInvalidArgument = errors.New("phone: invalid argument")
)

// Repository persists phone-number mirrors.
type Repository interface {
	Insert(ctx context.Context, n PhoneNumber) error
	Update(ctx context.Context, n PhoneNumber) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (PhoneNumber, bool, error)
	FindByNumber(ctx context.Context, number string) (PhoneNumber, bool, error)
	ListByUser(ctx context.Context, userID string) ([]PhoneNumber, error)
}
