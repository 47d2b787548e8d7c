package port

import (
	"context"

	"github.com/billed-app/billed-api/internal/domain/entity"
)

// CreateRequest carries a receipt upload into the store. The bill record does
// not exist yet; the store assigns the identifier returned in CreateResult.
type CreateRequest struct {
	FileName    string
	ContentType string
	Content     []byte
	Email       string
}

// CreateResult is the durable reference returned by a receipt upload.
// Key identifies the partially-persisted bill for the later Update.
type CreateResult struct {
	FileURL string
	Key     string
}

// UpdateRequest persists a full or partial bill record. Data is the
// JSON-serialized bill, Selector the id of the record to write.
type UpdateRequest struct {
	Data     []byte
	Selector string
}

// Gateway is the narrow contract the bill workflows require from the remote
// data service. All operations may fail independently; callers must not
// assume ordering across separate calls.
type Gateway interface {
	// List fetches all bills visible to the caller
	List(ctx context.Context) ([]entity.Bill, error)

	// Create uploads a receipt file and returns its durable reference
	Create(ctx context.Context, req CreateRequest) (CreateResult, error)

	// Update persists a serialized bill against an existing record
	Update(ctx context.Context, req UpdateRequest) (entity.Bill, error)

	// Discard removes the partial record left behind by a superseded
	// upload, receipt included. Unknown selectors are a no-op.
	Discard(ctx context.Context, selector string) error
}
