// package tasks coordinates the per-slot session: authentication, library fetches and transfers.
//
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/services"
)

// Authorizer builds authorize URLs and exchanges codes. Implemented by [services.Authenticator].
type Authorizer interface {
	AuthorizeURL(slot models.Slot) (string, error)
	Exchange(ctx context.Context, code string) (models.Credential, error)
}

// Library fetches and writes liked songs. Implemented by [services.LibraryClient].
type Library interface {
	Fetch(ctx context.Context, cred models.Credential, onPage services.PageFunc) ([]models.Item, error)
	Write(ctx context.Context, cred models.Credential, items []models.Item, onBatch services.BatchFunc) error
}

// TokenStore persists the bearer token of each slot. Implemented by [repositories.TokenStore].
type TokenStore interface {
	Save(slot models.Slot, token string) error
	Load(slot models.Slot) (string, error)
	Clear(slot models.Slot) error
}

// Journal records transfer runs. Implemented by [repositories.Journal].
type Journal interface {
	Begin(itemCount, batchCount int) (*models.Transfer, error)
	RecordBatch(b models.TransferBatch) error
	Finish(id string, cause error) error
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
