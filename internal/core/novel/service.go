package novel

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taibuivan/novika/internal/core/author"
	"github.com/taibuivan/novika/internal/platform/apperr"
	"github.com/taibuivan/novika/internal/platform/dberr"
	"github.com/taibuivan/novika/internal/platform/revalidate"
	"github.com/taibuivan/novika/internal/platform/validate"
	"github.com/taibuivan/novika/pkg/slug"
	"github.com/taibuivan/novika/pkg/uuidv7"
)

// AuthorDirectory is the slice of the author repository the novel service
// needs: resolving an author reference to a live record.
type AuthorDirectory interface {
	FindByID(ctx context.Context, id string) (*author.Author, error)
}

type Service struct {
	repo     Repository
	authors  AuthorDirectory
	notifier revalidate.Notifier
	logger   *slog.Logger
}

func NewService(repo Repository, authors AuthorDirectory, notifier revalidate.Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		authors:  authors,
		notifier: notifier,
		logger:   logger,
	}
}

func (service *Service) ListNovels(context context.Context, filter Filter, limit, offset int) ([]*Novel, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

func (service *Service) GetNovel(context context.Context, id string) (*Novel, error) {
	novel, err := service.repo.FindByID(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.NotFound("Novel")
	}
	return novel, err
}

func (service *Service) GetNovelBySlug(context context.Context, slugValue string) (*Novel, error) {
	novel, err := service.repo.FindBySlug(context, slugValue)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.NotFound("Novel")
	}
	return novel, err
}

// CreateNovel registers a new novel. Title uniqueness is scoped to the
// author: two different authors can both have a novel called "Dawn".
func (service *Service) CreateNovel(context context.Context, novel *Novel) error {
	if novel.Status == "" {
		novel.Status = StatusDraft
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, novel.Title).MaxLen(FieldTitle, novel.Title, 500)
	validator.OneOf(FieldStatus, string(novel.Status), Statuses()...)
	if novel.Description != nil {
		validator.MaxLen(FieldDescription, *novel.Description, 10000)
	}
	if novel.AuthorID != nil {
		validator.UUID(FieldAuthorID, *novel.AuthorID)
	}
	for _, genreID := range novel.GenreIDs {
		validator.UUID(FieldGenreIDs, genreID)
	}
	if novel.Slug != "" {
		validator.Slug(FieldSlug, novel.Slug)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if novel.AuthorID != nil {
		if _, err := service.authors.FindByID(context, *novel.AuthorID); err != nil {
			if errors.Is(err, dberr.ErrNotFound) {
				return apperr.NotFound("Author")
			}
			return err
		}

		existing, err := service.repo.FindLiveByTitleAndAuthor(context, novel.Title, *novel.AuthorID)
		if err == nil {
			return apperr.Conflictf("A novel titled %q already exists for this author", existing.Title)
		}
		if !errors.Is(err, dberr.ErrNotFound) {
			return err
		}
	}

	novel.ID = uuidv7.New()
	if err := service.assignSlug(context, novel, novel.Slug == ""); err != nil {
		return err
	}

	// A novel may be created already visible; otherwise it starts as a
	// hidden draft awaiting an explicit publish.
	if novel.IsVisible {
		now := time.Now()
		novel.PublishedAt = &now
	} else {
		novel.PublishedAt = nil
	}
	novel.RetiredAt = nil
	novel.ChapterCount = 0

	if err := service.repo.Create(context, novel); err != nil {
		return err
	}

	service.logger.Info("novel_created",
		slog.String("novel_id", novel.ID),
		slog.String("slug", novel.Slug),
	)
	service.notifier.Notify(revalidate.CatalogPaths()...)
	return nil
}

// UpdateNovel applies a partial update to a live novel. A non-nil GenreIDs in
// the input replaces the whole association set.
func (service *Service) UpdateNovel(context context.Context, id string, input UpdateInput) (*Novel, error) {
	novel, err := service.repo.FindByID(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.NotFound("Novel")
	}
	if err != nil {
		return nil, err
	}
	previousSlug := novel.Slug

	if input.Title != nil {
		novel.Title = *input.Title
	}
	if input.Slug != nil {
		novel.Slug = *input.Slug
	}
	if input.Description != nil {
		novel.Description = input.Description
	}
	if input.Status != nil {
		novel.Status = Status(*input.Status)
	}
	if input.AuthorID != nil {
		if *input.AuthorID == "" {
			novel.AuthorID = nil
		} else {
			novel.AuthorID = input.AuthorID
		}
	}

	replaceGenres := input.GenreIDs != nil
	if replaceGenres {
		novel.GenreIDs = *input.GenreIDs
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, novel.Title).MaxLen(FieldTitle, novel.Title, 500)
	validator.Slug(FieldSlug, novel.Slug)
	validator.OneOf(FieldStatus, string(novel.Status), Statuses()...)
	if novel.Description != nil {
		validator.MaxLen(FieldDescription, *novel.Description, 10000)
	}
	if novel.AuthorID != nil {
		validator.UUID(FieldAuthorID, *novel.AuthorID)
	}
	for _, genreID := range novel.GenreIDs {
		validator.UUID(FieldGenreIDs, genreID)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if novel.AuthorID != nil {
		if _, err := service.authors.FindByID(context, *novel.AuthorID); err != nil {
			if errors.Is(err, dberr.ErrNotFound) {
				return nil, apperr.NotFound("Author")
			}
			return nil, err
		}

		existing, err := service.repo.FindLiveByTitleAndAuthor(context, novel.Title, *novel.AuthorID)
		if err == nil && existing.ID != novel.ID {
			return nil, apperr.Conflictf("A novel titled %q already exists for this author", existing.Title)
		}
		if err != nil && !errors.Is(err, dberr.ErrNotFound) {
			return nil, err
		}
	}

	if novel.Slug != previousSlug {
		existing, err := service.repo.FindBySlug(context, novel.Slug)
		if err == nil && existing.ID != novel.ID {
			return nil, apperr.Conflictf("A novel with slug %q already exists", existing.Slug)
		}
		if err != nil && !errors.Is(err, dberr.ErrNotFound) {
			return nil, err
		}
	}

	if err := service.repo.Update(context, novel, replaceGenres); err != nil {
		return nil, err
	}

	service.logger.Info("novel_updated", slog.String("novel_id", novel.ID))
	paths := revalidate.NovelPaths(novel.Slug)
	if previousSlug != novel.Slug {
		paths = append(paths, revalidate.NovelPaths(previousSlug)...)
	}
	service.notifier.Notify(paths...)

	return service.GetNovel(context, novel.ID)
}

// PublishNovel flips a live novel's visibility. Publishing stamps the
// publication timestamp anew on every call; hiding clears it.
func (service *Service) PublishNovel(context context.Context, id string, visible bool) (*Novel, error) {
	novel, err := service.repo.FindByIDAny(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.NotFound("Novel")
	}
	if err != nil {
		return nil, err
	}
	if !novel.Live() {
		return nil, apperr.Statef("Novel %q is retired and cannot change visibility", novel.Title)
	}

	if err := service.repo.SetVisibility(context, id, visible); err != nil {
		return nil, err
	}

	service.logger.Info("novel_visibility_changed",
		slog.String("novel_id", id),
		slog.Bool("visible", visible),
	)
	paths := append(revalidate.NovelPaths(novel.Slug), revalidate.CatalogPaths()...)
	service.notifier.Notify(paths...)

	return service.GetNovel(context, id)
}

// RetireNovel soft-retires a novel and every live chapter under it in one
// transaction. Retirement is terminal.
func (service *Service) RetireNovel(context context.Context, id string) error {
	novel, err := service.repo.FindByIDAny(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.NotFound("Novel")
	}
	if err != nil {
		return err
	}
	if !novel.Live() {
		return apperr.Statef("Novel %q is already retired", novel.Title)
	}

	chaptersRetired, err := service.repo.Retire(context, id)
	if err != nil {
		return err
	}

	service.logger.Warn("novel_retired",
		slog.String("novel_id", id),
		slog.String("title", novel.Title),
		slog.Int("chapters_retired", chaptersRetired),
	)
	paths := append(revalidate.NovelPaths(novel.Slug), revalidate.CatalogPaths()...)
	service.notifier.Notify(paths...)
	return nil
}

// assignSlug derives or verifies the novel's slug. Derived slugs auto-suffix
// on collision so two authors can share a title; explicit slugs conflict
// instead, because the editor asked for that exact value.
func (service *Service) assignSlug(context context.Context, novel *Novel, derived bool) error {
	if derived {
		novel.Slug = slug.From(novel.Title)
		if novel.Slug == "" {
			return validate.RequiredError(FieldSlug, "A URL slug could not be derived from this title")
		}
	}

	existing, err := service.repo.FindBySlug(context, novel.Slug)
	if err != nil && !errors.Is(err, dberr.ErrNotFound) {
		return err
	}
	if err == nil && existing.ID != novel.ID {
		if !derived {
			return apperr.Conflictf("A novel with slug %q already exists", existing.Slug)
		}
		novel.Slug = novel.Slug + "-" + novel.ID[len(novel.ID)-8:]
	}
	return nil
}
