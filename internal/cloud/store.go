package cloud

import (
	"context"
	"errors"

	"github.com/saadjs/checkin-cli/internal/model"
)

// ErrUnauthorized is returned when the remote rejects the session credentials.
var ErrUnauthorized = errors.New("remote rejected credentials")

// Store holds one snapshot blob per user. Load returns a nil snapshot and no
// error when the user has never saved.
type Store interface {
	Load(ctx context.Context, userID string) (*model.Snapshot, error)
	Save(ctx context.Context, userID string, snap *model.Snapshot) error
}
