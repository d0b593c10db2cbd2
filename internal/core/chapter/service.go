package chapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taibuivan/novika/internal/core/novel"
	"github.com/taibuivan/novika/internal/platform/apperr"
	"github.com/taibuivan/novika/internal/platform/dberr"
	"github.com/taibuivan/novika/internal/platform/revalidate"
	"github.com/taibuivan/novika/internal/platform/validate"
	"github.com/taibuivan/novika/pkg/fingerprint"
	"github.com/taibuivan/novika/pkg/uuidv7"
)

// NovelDirectory is the slice of the novel repository the chapter service
// needs: resolving the owning novel, including retired ones, so lifecycle
// refusals can name it.
type NovelDirectory interface {
	FindByID(ctx context.Context, id string) (*novel.Novel, error)
	FindByIDAny(ctx context.Context, id string) (*novel.Novel, error)
}

type Service struct {
	repo     Repository
	novels   NovelDirectory
	notifier revalidate.Notifier
	logger   *slog.Logger
}

func NewService(repo Repository, novels NovelDirectory, notifier revalidate.Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		novels:   novels,
		notifier: notifier,
		logger:   logger,
	}
}

func (service *Service) ListChapters(context context.Context, novelID string, limit, offset int) ([]*Chapter, int, error) {
	if _, err := service.novels.FindByID(context, novelID); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, 0, apperr.NotFound("Novel")
		}
		return nil, 0, err
	}
	return service.repo.ListByNovel(context, novelID, limit, offset)
}

func (service *Service) GetChapter(context context.Context, id string) (*Chapter, error) {
	chapter, err := service.repo.FindByID(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.NotFound("Chapter")
	}
	return chapter, err
}

// CreateChapter adds an installment to a live novel.
//
// A zero or negative Number asks for automatic allocation: one past the
// highest live number, so retiring the latest chapter frees its number for
// the re-upload.
// An explicit Number must not collide with a live chapter. The normalized
// body must be unique among the novel's live chapters regardless of number.
func (service *Service) CreateChapter(context context.Context, chapter *Chapter) error {
	validator := &validate.Validator{}
	validator.Required(FieldNovelID, chapter.NovelID)
	if chapter.NovelID != "" {
		validator.UUID(FieldNovelID, chapter.NovelID)
	}
	validator.Required(FieldTitle, chapter.Title).MaxLen(FieldTitle, chapter.Title, 500)
	validator.Required(FieldBody, chapter.Body)
	if err := validator.Err(); err != nil {
		return err
	}

	owner, err := service.novels.FindByIDAny(context, chapter.NovelID)
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.NotFound("Novel")
	}
	if err != nil {
		return err
	}
	if !owner.Live() {
		return apperr.Statef("Novel %q is retired and cannot accept chapters", owner.Title)
	}

	if chapter.Number <= 0 {
		max, err := service.repo.MaxLiveNumber(context, chapter.NovelID)
		if err != nil {
			return err
		}
		chapter.Number = max + 1
	} else {
		existing, err := service.repo.FindLiveByNumber(context, chapter.NovelID, chapter.Number)
		if err == nil {
			return apperr.Conflictf("Chapter %d (%q) already uses this number", existing.Number, existing.Title)
		}
		if !errors.Is(err, dberr.ErrNotFound) {
			return err
		}
	}

	chapter.Fingerprint = fingerprint.Of(chapter.Body)
	if existing, err := service.repo.FindLiveByFingerprint(context, chapter.NovelID, chapter.Fingerprint); err == nil {
		return apperr.Conflictf("Chapter content duplicates chapter %d (%q)", existing.Number, existing.Title)
	} else if !errors.Is(err, dberr.ErrNotFound) {
		return err
	}

	chapter.ID = uuidv7.New()
	chapter.RetiredAt = nil
	if chapter.IsVisible {
		now := time.Now()
		chapter.PublishedAt = &now
	} else {
		chapter.PublishedAt = nil
	}

	if err := service.repo.Create(context, chapter); err != nil {
		return err
	}

	service.logger.Info("chapter_created",
		slog.String("chapter_id", chapter.ID),
		slog.String("novel_id", chapter.NovelID),
		slog.Int("number", chapter.Number),
	)
	paths := append(revalidate.ChapterPaths(owner.Slug, chapter.Number), revalidate.NovelPaths(owner.Slug)...)
	service.notifier.Notify(paths...)
	return nil
}

// TogglePublish flips a chapter's visibility. Both the chapter and its owning
// novel must still be live.
func (service *Service) TogglePublish(context context.Context, id string, visible bool) (*Chapter, error) {
	chapter, err := service.repo.FindByIDAny(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.NotFound("Chapter")
	}
	if err != nil {
		return nil, err
	}
	if !chapter.Live() {
		return nil, apperr.Statef("Chapter %d is retired and cannot change visibility", chapter.Number)
	}

	owner, err := service.novels.FindByIDAny(context, chapter.NovelID)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.NotFound("Novel")
	}
	if err != nil {
		return nil, err
	}
	if !owner.Live() {
		return nil, apperr.Statef("Novel %q is retired; its chapters cannot change visibility", owner.Title)
	}

	if err := service.repo.SetVisibility(context, id, visible); err != nil {
		return nil, err
	}

	service.logger.Info("chapter_visibility_changed",
		slog.String("chapter_id", id),
		slog.Bool("visible", visible),
	)
	paths := append(revalidate.ChapterPaths(owner.Slug, chapter.Number), revalidate.NovelPaths(owner.Slug)...)
	service.notifier.Notify(paths...)

	return service.GetChapter(context, id)
}

// RetireChapter soft-retires a chapter, freeing its number and content hash
// for future uploads. Retirement is terminal. Both the chapter and its owning
// novel must still be live; a retired novel already retired its chapters.
func (service *Service) RetireChapter(context context.Context, id string) error {
	chapter, err := service.repo.FindByIDAny(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.NotFound("Chapter")
	}
	if err != nil {
		return err
	}
	if !chapter.Live() {
		return apperr.Statef("Chapter %d is already retired", chapter.Number)
	}

	owner, err := service.novels.FindByIDAny(context, chapter.NovelID)
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.NotFound("Novel")
	}
	if err != nil {
		return err
	}
	if !owner.Live() {
		return apperr.Statef("Novel %q is retired; its chapters cannot be retired individually", owner.Title)
	}

	if err := service.repo.Retire(context, id); err != nil {
		return err
	}

	service.logger.Warn("chapter_retired",
		slog.String("chapter_id", id),
		slog.String("novel_id", chapter.NovelID),
		slog.Int("number", chapter.Number),
	)
	paths := append(revalidate.ChapterPaths(owner.Slug, chapter.Number), revalidate.NovelPaths(owner.Slug)...)
	service.notifier.Notify(paths...)
	return nil
}
