package chapter

import "context"

// Repository abstracts the persistence layer for chapters. Queries are scoped
// to live records unless the method name says otherwise.
//
// Create and Retire also maintain the owning novel's live-chapter count, in
// the same transaction as the chapter row.
type Repository interface {
	ListByNovel(ctx context.Context, novelID string, limit, offset int) ([]*Chapter, int, error)
	FindByID(ctx context.Context, id string) (*Chapter, error)
	FindByIDAny(ctx context.Context, id string) (*Chapter, error)

	FindLiveByNumber(ctx context.Context, novelID string, number int) (*Chapter, error)
	FindLiveByFingerprint(ctx context.Context, novelID, fingerprint string) (*Chapter, error)

	// MaxLiveNumber returns the highest number among a novel's live
	// chapters, or zero when there are none.
	MaxLiveNumber(ctx context.Context, novelID string) (int, error)

	Create(ctx context.Context, c *Chapter) error
	SetVisibility(ctx context.Context, id string, visible bool) error
	Retire(ctx context.Context, id string) error
}
