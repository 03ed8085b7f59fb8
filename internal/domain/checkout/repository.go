package checkout

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository defines the persistence contract for cart snapshots
type CartRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Cart, error)
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, id uuid.UUID) error
}
