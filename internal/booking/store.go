package booking

import (
	"context"

	"fyyur/internal/models"
)

// Querier answers overlap questions against committed shows.
type Querier interface {
	HasOverlap(ctx context.Context, r models.Resource, iv models.Interval) (bool, error)
}

// Tx is the unit of work a booking runs in. LockResource must hold the
// resource until the transaction ends so that a concurrent booking for the
// same venue or artist waits and then sees this one's show.
type Tx interface {
	Querier
	LockResource(ctx context.Context, r models.Resource) error
	InsertShow(ctx context.Context, show models.Show) (models.Show, error)
}

// Store persists shows. InBookingTx commits when fn returns nil and rolls back
// otherwise.
type Store interface {
	Querier
	InBookingTx(ctx context.Context, fn func(tx Tx) error) error
}
