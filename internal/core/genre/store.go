package genre

import "context"

// Repository abstracts the persistence layer for genres. Queries are scoped
// to live records unless the method name says otherwise.
type Repository interface {
	List(ctx context.Context, f Filter, limit, offset int) ([]*Genre, int, error)
	FindByID(ctx context.Context, id string) (*Genre, error)
	FindByIDAny(ctx context.Context, id string) (*Genre, error)
	FindBySlug(ctx context.Context, slug string) (*Genre, error)
	FindLiveByName(ctx context.Context, name string) (*Genre, error)

	Create(ctx context.Context, g *Genre) error
	Update(ctx context.Context, g *Genre) error
	Retire(ctx context.Context, id string) error
}
