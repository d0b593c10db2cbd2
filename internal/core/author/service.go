package author

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taibuivan/novika/internal/platform/apperr"
	"github.com/taibuivan/novika/internal/platform/dberr"
	"github.com/taibuivan/novika/internal/platform/revalidate"
	"github.com/taibuivan/novika/internal/platform/validate"
	"github.com/taibuivan/novika/pkg/slug"
	"github.com/taibuivan/novika/pkg/uuidv7"
)

type Service struct {
	repo     Repository
	notifier revalidate.Notifier
	logger   *slog.Logger
}

func NewService(repo Repository, notifier revalidate.Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

func (service *Service) ListAuthors(context context.Context, filter Filter, limit, offset int) ([]*Author, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

func (service *Service) GetAuthor(context context.Context, id string) (*Author, error) {
	author, err := service.repo.FindByID(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.NotFound("Author")
	}
	return author, err
}

// CreateAuthor registers a new author. The slug is derived from the name when
// absent; both the name (case-insensitively) and the slug must be unique
// among live authors.
func (service *Service) CreateAuthor(context context.Context, author *Author) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, author.Name).MaxLen(FieldName, author.Name, 200)
	if author.Bio != nil {
		validator.MaxLen(FieldBio, *author.Bio, 5000)
	}
	if author.Slug != "" {
		validator.Slug(FieldSlug, author.Slug)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if author.Slug == "" {
		author.Slug = slug.From(author.Name)
	}
	if author.Slug == "" {
		return validate.RequiredError(FieldSlug, "A URL slug could not be derived from this name")
	}

	if err := service.checkUnique(context, author.Name, author.Slug, ""); err != nil {
		return err
	}

	author.ID = uuidv7.New()
	author.RetiredAt = nil
	if err := service.repo.Create(context, author); err != nil {
		return err
	}

	service.logger.Info("author_created",
		slog.String("author_id", author.ID),
		slog.String("slug", author.Slug),
	)
	service.notifier.Notify(revalidate.AuthorPaths(author.Slug)...)
	return nil
}

// UpdateAuthor applies a partial update to a live author. Fields left nil in
// the input keep their current value.
func (service *Service) UpdateAuthor(context context.Context, id string, input UpdateInput) (*Author, error) {
	author, err := service.repo.FindByID(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.NotFound("Author")
	}
	if err != nil {
		return nil, err
	}
	previousSlug := author.Slug

	if input.Name != nil {
		author.Name = *input.Name
	}
	if input.Slug != nil {
		author.Slug = *input.Slug
	}
	if input.Bio != nil {
		author.Bio = input.Bio
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, author.Name).MaxLen(FieldName, author.Name, 200)
	validator.Slug(FieldSlug, author.Slug)
	if author.Bio != nil {
		validator.MaxLen(FieldBio, *author.Bio, 5000)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.checkUnique(context, author.Name, author.Slug, author.ID); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, author); err != nil {
		return nil, err
	}

	service.logger.Info("author_updated", slog.String("author_id", author.ID))
	paths := revalidate.AuthorPaths(author.Slug)
	if previousSlug != author.Slug {
		paths = append(paths, revalidate.AuthorPaths(previousSlug)...)
	}
	service.notifier.Notify(paths...)
	return author, nil
}

// RetireAuthor soft-retires an author. Retirement is terminal: retiring an
// already-retired author fails rather than silently succeeding, so editors
// notice when they are acting on stale data.
func (service *Service) RetireAuthor(context context.Context, id string) error {
	author, err := service.repo.FindByIDAny(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.NotFound("Author")
	}
	if err != nil {
		return err
	}
	if !author.Live() {
		return apperr.Statef("Author %q is already retired", author.Name)
	}

	if err := service.repo.Retire(context, id); err != nil {
		return err
	}

	service.logger.Warn("author_retired",
		slog.String("author_id", id),
		slog.String("name", author.Name),
	)
	service.notifier.Notify(revalidate.AuthorPaths(author.Slug)...)
	return nil
}

// checkUnique enforces live-scope name and slug uniqueness. excludeID skips
// the record itself on updates. The returned conflict names the existing
// record so editors can find it.
func (service *Service) checkUnique(context context.Context, name, slugValue, excludeID string) error {
	existing, err := service.repo.FindLiveByName(context, name)
	if err == nil && existing.ID != excludeID {
		return apperr.Conflictf("An author named %q already exists", existing.Name)
	}
	if err != nil && !errors.Is(err, dberr.ErrNotFound) {
		return err
	}

	existing, err = service.repo.FindBySlug(context, slugValue)
	if err == nil && existing.ID != excludeID {
		return apperr.Conflictf("An author with slug %q already exists", existing.Slug)
	}
	if err != nil && !errors.Is(err, dberr.ErrNotFound) {
		return err
	}
	return nil
}
