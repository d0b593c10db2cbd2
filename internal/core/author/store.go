package author

import "context"

// Repository abstracts the persistence layer for authors.
//
// Unless the method name says otherwise, every query is scoped to live
// records. FindByIDAny ignores retirement so that lifecycle transitions can
// report "found but retired" instead of "not found".
type Repository interface {
	List(ctx context.Context, f Filter, limit, offset int) ([]*Author, int, error)
	FindByID(ctx context.Context, id string) (*Author, error)
	FindByIDAny(ctx context.Context, id string) (*Author, error)
	FindBySlug(ctx context.Context, slug string) (*Author, error)

	// FindLiveByName looks up a live author by case-insensitive name match.
	FindLiveByName(ctx context.Context, name string) (*Author, error)

	Create(ctx context.Context, a *Author) error
	Update(ctx context.Context, a *Author) error
	Retire(ctx context.Context, id string) error
}
