package genre

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

func (service *Service) ListGenres(context context.Context, filter Filter, limit, offset int) ([]*Genre, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

func (service *Service) GetGenre(context context.Context, id string) (*Genre, error) {
	genre, err := service.repo.FindByID(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.NotFound("Genre")
	}
	return genre, err
}

func (service *Service) CreateGenre(context context.Context, genre *Genre) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, genre.Name).MaxLen(FieldName, genre.Name, 100)
	if genre.Description != nil {
		validator.MaxLen(FieldDescription, *genre.Description, 2000)
	}
	if genre.Slug != "" {
		validator.Slug(FieldSlug, genre.Slug)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if genre.Slug == "" {
		genre.Slug = slug.From(genre.Name)
	}
	if genre.Slug == "" {
		return validate.RequiredError(FieldSlug, "A URL slug could not be derived from this name")
	}

	if err := service.checkUnique(context, genre.Name, genre.Slug, ""); err != nil {
		return err
	}

	genre.ID = uuidv7.New()
	genre.RetiredAt = nil
	if err := service.repo.Create(context, genre); err != nil {
		return err
	}

	service.logger.Info("genre_created",
		slog.String("genre_id", genre.ID),
		slog.String("slug", genre.Slug),
	)
	service.notifier.Notify(revalidate.GenrePaths(genre.Slug)...)
	return nil
}

func (service *Service) UpdateGenre(context context.Context, id string, input UpdateInput) (*Genre, error) {
	genre, err := service.repo.FindByID(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.NotFound("Genre")
	}
	if err != nil {
		return nil, err
	}
	previousSlug := genre.Slug

	if input.Name != nil {
		genre.Name = *input.Name
	}
	if input.Slug != nil {
		genre.Slug = *input.Slug
	}
	if input.Description != nil {
		genre.Description = input.Description
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, genre.Name).MaxLen(FieldName, genre.Name, 100)
	validator.Slug(FieldSlug, genre.Slug)
	if genre.Description != nil {
		validator.MaxLen(FieldDescription, *genre.Description, 2000)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.checkUnique(context, genre.Name, genre.Slug, genre.ID); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, genre); err != nil {
		return nil, err
	}

	service.logger.Info("genre_updated", slog.String("genre_id", genre.ID))
	paths := revalidate.GenrePaths(genre.Slug)
	if previousSlug != genre.Slug {
		paths = append(paths, revalidate.GenrePaths(previousSlug)...)
	}
	service.notifier.Notify(paths...)
	return genre, nil
}

// RetireGenre soft-retires a genre. Novels tagged with it keep their
// association rows; the genre simply stops resolving in live queries.
func (service *Service) RetireGenre(context context.Context, id string) error {
	genre, err := service.repo.FindByIDAny(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.NotFound("Genre")
	}
	if err != nil {
		return err
	}
	if !genre.Live() {
		return apperr.Statef("Genre %q is already retired", genre.Name)
	}

	if err := service.repo.Retire(context, id); err != nil {
		return err
	}

	service.logger.Warn("genre_retired",
		slog.String("genre_id", id),
		slog.String("name", genre.Name),
	)
	service.notifier.Notify(revalidate.GenrePaths(genre.Slug)...)
	return nil
}

func (service *Service) checkUnique(context context.Context, name, slugValue, excludeID string) error {
	existing, err := service.repo.FindLiveByName(context, name)
	if err == nil && existing.ID != excludeID {
		return apperr.Conflictf("A genre named %q already exists", existing.Name)
	}
	if err != nil && !errors.Is(err, dberr.ErrNotFound) {
		return err
	}

	existing, err = service.repo.FindBySlug(context, slugValue)
	if err == nil && existing.ID != excludeID {
		return apperr.Conflictf("A genre with slug %q already exists", existing.Slug)
	}
	if err != nil && !errors.Is(err, dberr.ErrNotFound) {
		return err
	}
	return nil
}
