package novel

import "context"

// Repository abstracts the persistence layer for novels and their genre
// associations. Queries are scoped to live records unless the method name
// says otherwise; finders hydrate the Genres projection.
type Repository interface {
	List(ctx context.Context, f Filter, limit, offset int) ([]*Novel, int, error)
	FindByID(ctx context.Context, id string) (*Novel, error)
	FindByIDAny(ctx context.Context, id string) (*Novel, error)
	FindBySlug(ctx context.Context, slug string) (*Novel, error)

	// FindLiveByTitleAndAuthor looks up a live novel by case-insensitive
	// title match within one author's works.
	FindLiveByTitleAndAuthor(ctx context.Context, title, authorID string) (*Novel, error)

	Create(ctx context.Context, n *Novel) error
	Update(ctx context.Context, n *Novel, replaceGenres bool) error

	// SetVisibility flips the published flag. Making a novel visible stamps
	// the publication timestamp; hiding it clears the timestamp.
	SetVisibility(ctx context.Context, id string, visible bool) error

	// Retire stamps the novel and every live chapter under it in a single
	// transaction, chapters first. It returns the number of chapters retired.
	Retire(ctx context.Context, id string) (int, error)
}
