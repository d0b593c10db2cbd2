package novel

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taibuivan/novika/internal/core/author"
	"github.com/taibuivan/novika/internal/platform/apperr"
	"github.com/taibuivan/novika/internal/platform/dberr"
	"github.com/taibuivan/novika/internal/platform/revalidate"
	"github.com/taibuivan/novika/pkg/pointer"
	"github.com/taibuivan/novika/pkg/uuidv7"
)

type memoryRepository struct {
	novels map[string]*Novel

	// liveChapters simulates the chapter rows the cascade would touch.
	liveChapters map[string]int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		novels:       map[string]*Novel{},
		liveChapters: map[string]int{},
	}
}

func (m *memoryRepository) List(_ context.Context, f Filter, limit, offset int) ([]*Novel, int, error) {
	var out []*Novel
	for _, n := range m.novels {
		if n.RetiredAt != nil {
			continue
		}
		if f.VisibleOnly && !n.IsVisible {
			continue
		}
		out = append(out, n)
	}
	return out, len(out), nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*Novel, error) {
	n, ok := m.novels[id]
	if !ok || n.RetiredAt != nil {
		return nil, dberr.ErrNotFound
	}
	return n, nil
}

func (m *memoryRepository) FindByIDAny(_ context.Context, id string) (*Novel, error) {
	n, ok := m.novels[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return n, nil
}

func (m *memoryRepository) FindBySlug(_ context.Context, slug string) (*Novel, error) {
	for _, n := range m.novels {
		if n.Slug == slug && n.RetiredAt == nil {
			return n, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (m *memoryRepository) FindLiveByTitleAndAuthor(_ context.Context, title, authorID string) (*Novel, error) {
	for _, n := range m.novels {
		if n.RetiredAt != nil || n.AuthorID == nil || *n.AuthorID != authorID {
			continue
		}
		if strings.EqualFold(n.Title, title) {
			return n, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (m *memoryRepository) Create(_ context.Context, n *Novel) error {
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	m.novels[n.ID] = n
	return nil
}

func (m *memoryRepository) Update(_ context.Context, n *Novel, _ bool) error {
	if _, ok := m.novels[n.ID]; !ok {
		return dberr.ErrNotFound
	}
	n.UpdatedAt = time.Now()
	m.novels[n.ID] = n
	return nil
}

func (m *memoryRepository) SetVisibility(_ context.Context, id string, visible bool) error {
	n, ok := m.novels[id]
	if !ok || n.RetiredAt != nil {
		return dberr.ErrNotFound
	}
	n.IsVisible = visible
	if visible {
		now := time.Now()
		n.PublishedAt = &now
	} else {
		n.PublishedAt = nil
	}
	return nil
}

func (m *memoryRepository) Retire(_ context.Context, id string) (int, error) {
	n, ok := m.novels[id]
	if !ok || n.RetiredAt != nil {
		return 0, dberr.ErrNotFound
	}
	now := time.Now()
	n.RetiredAt = &now
	n.IsVisible = false
	n.PublishedAt = nil
	n.ChapterCount = 0

	retired := m.liveChapters[id]
	m.liveChapters[id] = 0
	return retired, nil
}

// memoryAuthors is a minimal AuthorDirectory fake.
type memoryAuthors struct {
	authors map[string]*author.Author
}

func (m *memoryAuthors) FindByID(_ context.Context, id string) (*author.Author, error) {
	a, ok := m.authors[id]
	if !ok || a.RetiredAt != nil {
		return nil, dberr.ErrNotFound
	}
	return a, nil
}

func newTestService() (*Service, *memoryRepository, *memoryAuthors) {
	repo := newMemoryRepository()
	authors := &memoryAuthors{authors: map[string]*author.Author{}}
	logger := slog.New(slog.DiscardHandler)
	return NewService(repo, authors, revalidate.Noop{}, logger), repo, authors
}

func (m *memoryAuthors) add(name string) string {
	id := uuidv7.New()
	m.authors[id] = &author.Author{ID: id, Name: name}
	return id
}

func TestCreateNovel(t *testing.T) {
	service, _, authors := newTestService()
	ctx := context.Background()
	authorID := authors.add("Jane Doe")

	n := &Novel{Title: "The Winter Garden", AuthorID: &authorID}
	require.NoError(t, service.CreateNovel(ctx, n))

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "the-winter-garden", n.Slug)
	assert.Equal(t, StatusDraft, n.Status)
	assert.False(t, n.IsVisible)
	assert.Nil(t, n.PublishedAt)
}

func TestCreateNovel_VisibleImmediately(t *testing.T) {
	service, _, _ := newTestService()

	n := &Novel{Title: "The Winter Garden", IsVisible: true}
	require.NoError(t, service.CreateNovel(context.Background(), n))

	assert.True(t, n.IsVisible)
	assert.NotNil(t, n.PublishedAt)
}

func TestCreateNovel_UnknownAuthor(t *testing.T) {
	service, _, _ := newTestService()

	unknown := uuidv7.New()
	err := service.CreateNovel(context.Background(), &Novel{Title: "Dawn", AuthorID: &unknown})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}

func TestCreateNovel_TitleUniquePerAuthor(t *testing.T) {
	service, _, authors := newTestService()
	ctx := context.Background()
	jane := authors.add("Jane Doe")
	john := authors.add("John Roe")

	require.NoError(t, service.CreateNovel(ctx, &Novel{Title: "Dawn", AuthorID: &jane}))

	// Same author, same title (case-insensitively): conflict naming the work.
	err := service.CreateNovel(ctx, &Novel{Title: "dawn", AuthorID: &jane})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
	assert.Contains(t, err.Error(), `"Dawn"`)

	// Different author: allowed, slug de-duplicated automatically.
	other := &Novel{Title: "Dawn", AuthorID: &john}
	require.NoError(t, service.CreateNovel(ctx, other))
	assert.NotEqual(t, "dawn", other.Slug)
	assert.True(t, strings.HasPrefix(other.Slug, "dawn-"))
}

func TestCreateNovel_ExplicitSlugConflict(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, service.CreateNovel(ctx, &Novel{Title: "Dawn"}))

	err := service.CreateNovel(ctx, &Novel{Title: "Something Else", Slug: "dawn"})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
	assert.Contains(t, err.Error(), `"dawn"`)
}

func TestUpdateNovel_PartialPatch(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	n := &Novel{Title: "The Winter Garden"}
	require.NoError(t, service.CreateNovel(ctx, n))

	updated, err := service.UpdateNovel(ctx, n.ID, UpdateInput{Status: pointer.To("ongoing")})
	require.NoError(t, err)

	assert.Equal(t, "The Winter Garden", updated.Title)
	assert.Equal(t, StatusOngoing, updated.Status)
}

func TestUpdateNovel_InvalidStatus(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	n := &Novel{Title: "The Winter Garden"}
	require.NoError(t, service.CreateNovel(ctx, n))

	_, err := service.UpdateNovel(ctx, n.ID, UpdateInput{Status: pointer.To("paused")})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
}

func TestPublishNovel_StampsAndClears(t *testing.T) {
	service, repo, _ := newTestService()
	ctx := context.Background()

	n := &Novel{Title: "The Winter Garden"}
	require.NoError(t, service.CreateNovel(ctx, n))

	published, err := service.PublishNovel(ctx, n.ID, true)
	require.NoError(t, err)
	assert.True(t, published.IsVisible)
	assert.NotNil(t, published.PublishedAt)

	hidden, err := service.PublishNovel(ctx, n.ID, false)
	require.NoError(t, err)
	assert.False(t, hidden.IsVisible)
	assert.Nil(t, hidden.PublishedAt)

	assert.False(t, repo.novels[n.ID].IsVisible)
}

func TestPublishNovel_RetiredNovel(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	n := &Novel{Title: "The Winter Garden"}
	require.NoError(t, service.CreateNovel(ctx, n))
	require.NoError(t, service.RetireNovel(ctx, n.ID))

	_, err := service.PublishNovel(ctx, n.ID, true)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "STATE_ERROR"))
}

func TestRetireNovel_CascadesToChapters(t *testing.T) {
	service, repo, _ := newTestService()
	ctx := context.Background()

	n := &Novel{Title: "The Winter Garden"}
	require.NoError(t, service.CreateNovel(ctx, n))
	repo.liveChapters[n.ID] = 5

	require.NoError(t, service.RetireNovel(ctx, n.ID))

	assert.NotNil(t, repo.novels[n.ID].RetiredAt)
	assert.Zero(t, repo.liveChapters[n.ID])
}

func TestRetireNovel_WithoutChapters(t *testing.T) {
	service, repo, _ := newTestService()
	ctx := context.Background()

	n := &Novel{Title: "The Winter Garden"}
	require.NoError(t, service.CreateNovel(ctx, n))

	require.NoError(t, service.RetireNovel(ctx, n.ID))
	assert.NotNil(t, repo.novels[n.ID].RetiredAt)
}

func TestRetireNovel_Twice(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	n := &Novel{Title: "The Winter Garden"}
	require.NoError(t, service.CreateNovel(ctx, n))
	require.NoError(t, service.RetireNovel(ctx, n.ID))

	err := service.RetireNovel(ctx, n.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "STATE_ERROR"))
}
