package chapter

import (
	"context"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taibuivan/novika/internal/core/novel"
	"github.com/taibuivan/novika/internal/platform/apperr"
	"github.com/taibuivan/novika/internal/platform/dberr"
	"github.com/taibuivan/novika/internal/platform/revalidate"
	"github.com/taibuivan/novika/pkg/uuidv7"
)

type memoryRepository struct {
	chapters map[string]*Chapter
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{chapters: map[string]*Chapter{}}
}

func (m *memoryRepository) ListByNovel(_ context.Context, novelID string, limit, offset int) ([]*Chapter, int, error) {
	var out []*Chapter
	for _, c := range m.chapters {
		if c.NovelID == novelID && c.RetiredAt == nil {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, len(out), nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*Chapter, error) {
	c, ok := m.chapters[id]
	if !ok || c.RetiredAt != nil {
		return nil, dberr.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepository) FindByIDAny(_ context.Context, id string) (*Chapter, error) {
	c, ok := m.chapters[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepository) FindLiveByNumber(_ context.Context, novelID string, number int) (*Chapter, error) {
	for _, c := range m.chapters {
		if c.NovelID == novelID && c.Number == number && c.RetiredAt == nil {
			return c, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (m *memoryRepository) FindLiveByFingerprint(_ context.Context, novelID, fingerprint string) (*Chapter, error) {
	for _, c := range m.chapters {
		if c.NovelID == novelID && c.Fingerprint == fingerprint && c.RetiredAt == nil {
			return c, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (m *memoryRepository) MaxLiveNumber(_ context.Context, novelID string) (int, error) {
	max := 0
	for _, c := range m.chapters {
		if c.NovelID == novelID && c.RetiredAt == nil && c.Number > max {
			max = c.Number
		}
	}
	return max, nil
}

func (m *memoryRepository) Create(_ context.Context, c *Chapter) error {
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.chapters[c.ID] = c
	return nil
}

func (m *memoryRepository) SetVisibility(_ context.Context, id string, visible bool) error {
	c, ok := m.chapters[id]
	if !ok || c.RetiredAt != nil {
		return dberr.ErrNotFound
	}
	c.IsVisible = visible
	if visible {
		now := time.Now()
		c.PublishedAt = &now
	} else {
		c.PublishedAt = nil
	}
	return nil
}

func (m *memoryRepository) Retire(_ context.Context, id string) error {
	c, ok := m.chapters[id]
	if !ok || c.RetiredAt != nil {
		return dberr.ErrNotFound
	}
	now := time.Now()
	c.RetiredAt = &now
	c.IsVisible = false
	c.PublishedAt = nil
	return nil
}

type memoryNovels struct {
	novels map[string]*novel.Novel
}

func (m *memoryNovels) FindByID(_ context.Context, id string) (*novel.Novel, error) {
	n, ok := m.novels[id]
	if !ok || n.RetiredAt != nil {
		return nil, dberr.ErrNotFound
	}
	return n, nil
}

func (m *memoryNovels) FindByIDAny(_ context.Context, id string) (*novel.Novel, error) {
	n, ok := m.novels[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return n, nil
}

func (m *memoryNovels) add(title string) string {
	id := uuidv7.New()
	m.novels[id] = &novel.Novel{ID: id, Title: title, Slug: "test-novel"}
	return id
}

func (m *memoryNovels) retire(id string) {
	now := time.Now()
	m.novels[id].RetiredAt = &now
}

func newTestService() (*Service, *memoryRepository, *memoryNovels) {
	repo := newMemoryRepository()
	novels := &memoryNovels{novels: map[string]*novel.Novel{}}
	logger := slog.New(slog.DiscardHandler)
	return NewService(repo, novels, revalidate.Noop{}, logger), repo, novels
}

func createChapter(t *testing.T, service *Service, novelID, title, body string) *Chapter {
	t.Helper()
	c := &Chapter{NovelID: novelID, Title: title, Body: body}
	require.NoError(t, service.CreateChapter(context.Background(), c))
	return c
}

func TestCreateChapter_AutoNumbering(t *testing.T) {
	service, _, novels := newTestService()
	novelID := novels.add("The Winter Garden")

	first := createChapter(t, service, novelID, "One", "Body one.")
	second := createChapter(t, service, novelID, "Two", "Body two.")
	third := createChapter(t, service, novelID, "Three", "Body three.")

	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, second.Number)
	assert.Equal(t, 3, third.Number)
}

func TestCreateChapter_NegativeNumberAutoAllocates(t *testing.T) {
	service, _, novels := newTestService()
	novelID := novels.add("The Winter Garden")

	createChapter(t, service, novelID, "One", "Body one.")

	// Anything non-positive means "pick the next number for me".
	second := &Chapter{NovelID: novelID, Number: -1, Title: "Two", Body: "Body two."}
	require.NoError(t, service.CreateChapter(context.Background(), second))
	assert.Equal(t, 2, second.Number)
}

func TestCreateChapter_NumberingSkipsRetiredGap(t *testing.T) {
	service, _, novels := newTestService()
	ctx := context.Background()
	novelID := novels.add("The Winter Garden")

	createChapter(t, service, novelID, "One", "Body one.")
	second := createChapter(t, service, novelID, "Two", "Body two.")
	createChapter(t, service, novelID, "Three", "Body three.")

	require.NoError(t, service.RetireChapter(ctx, second.ID))

	// Allocation is max live + 1, so the gap at 2 stays open.
	fourth := createChapter(t, service, novelID, "Four", "Body four.")
	assert.Equal(t, 4, fourth.Number)
}

func TestCreateChapter_RetiredNumberIsReusable(t *testing.T) {
	service, _, novels := newTestService()
	ctx := context.Background()
	novelID := novels.add("The Winter Garden")

	latest := createChapter(t, service, novelID, "One", "Body one.")
	require.NoError(t, service.RetireChapter(ctx, latest.ID))

	replacement := &Chapter{NovelID: novelID, Number: 1, Title: "One, corrected", Body: "Corrected body."}
	require.NoError(t, service.CreateChapter(ctx, replacement))
	assert.Equal(t, 1, replacement.Number)
}

func TestCreateChapter_ExplicitNumberConflict(t *testing.T) {
	service, _, novels := newTestService()
	novelID := novels.add("The Winter Garden")

	createChapter(t, service, novelID, "The Thaw", "Body one.")

	err := service.CreateChapter(context.Background(), &Chapter{
		NovelID: novelID, Number: 1, Title: "Another", Body: "Different body.",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
	// The conflict names the chapter already holding the number.
	assert.Contains(t, err.Error(), `"The Thaw"`)
}

func TestCreateChapter_DuplicateContent(t *testing.T) {
	service, _, novels := newTestService()
	novelID := novels.add("The Winter Garden")

	createChapter(t, service, novelID, "The Thaw", "It began to rain.\n")

	// Same content after normalization: CRLF line endings and trailing
	// whitespace do not make a body distinct.
	err := service.CreateChapter(context.Background(), &Chapter{
		NovelID: novelID, Title: "The Thaw Again", Body: "It began to rain.\r\n\r\n",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
	assert.Contains(t, err.Error(), "chapter 1")
	assert.Contains(t, err.Error(), `"The Thaw"`)
}

func TestCreateChapter_DuplicateContentAllowedAcrossNovels(t *testing.T) {
	service, _, novels := newTestService()
	first := novels.add("The Winter Garden")
	second := novels.add("Another Novel")

	createChapter(t, service, first, "One", "Shared body.")
	createChapter(t, service, second, "One", "Shared body.")
}

func TestCreateChapter_RetiredContentIsReusable(t *testing.T) {
	service, _, novels := newTestService()
	ctx := context.Background()
	novelID := novels.add("The Winter Garden")

	original := createChapter(t, service, novelID, "One", "The same body.")
	require.NoError(t, service.RetireChapter(ctx, original.ID))

	createChapter(t, service, novelID, "One again", "The same body.")
}

func TestCreateChapter_UnderRetiredNovel(t *testing.T) {
	service, _, novels := newTestService()
	novelID := novels.add("The Winter Garden")
	novels.retire(novelID)

	err := service.CreateChapter(context.Background(), &Chapter{
		NovelID: novelID, Title: "One", Body: "Body.",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "STATE_ERROR"))
}

func TestTogglePublish(t *testing.T) {
	service, _, novels := newTestService()
	ctx := context.Background()
	novelID := novels.add("The Winter Garden")

	c := createChapter(t, service, novelID, "One", "Body.")

	published, err := service.TogglePublish(ctx, c.ID, true)
	require.NoError(t, err)
	assert.True(t, published.IsVisible)
	assert.NotNil(t, published.PublishedAt)

	hidden, err := service.TogglePublish(ctx, c.ID, false)
	require.NoError(t, err)
	assert.False(t, hidden.IsVisible)
	assert.Nil(t, hidden.PublishedAt)
}

func TestTogglePublish_UnderRetiredNovel(t *testing.T) {
	service, _, novels := newTestService()
	ctx := context.Background()
	novelID := novels.add("The Winter Garden")

	c := createChapter(t, service, novelID, "One", "Body.")
	novels.retire(novelID)

	_, err := service.TogglePublish(ctx, c.ID, true)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "STATE_ERROR"))
	assert.Contains(t, err.Error(), `"The Winter Garden"`)
}

func TestTogglePublish_RetiredChapter(t *testing.T) {
	service, _, novels := newTestService()
	ctx := context.Background()
	novelID := novels.add("The Winter Garden")

	c := createChapter(t, service, novelID, "One", "Body.")
	require.NoError(t, service.RetireChapter(ctx, c.ID))

	_, err := service.TogglePublish(ctx, c.ID, true)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "STATE_ERROR"))
}

func TestRetireChapter_UnderRetiredNovel(t *testing.T) {
	service, repo, novels := newTestService()
	ctx := context.Background()
	novelID := novels.add("The Winter Garden")

	c := createChapter(t, service, novelID, "One", "Body.")
	// Simulate the cascade: retiring the novel retires its chapters too, but
	// even a chapter the cascade missed must refuse individual retirement.
	novels.retire(novelID)

	err := service.RetireChapter(ctx, c.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "STATE_ERROR"))
	assert.Contains(t, err.Error(), `"The Winter Garden"`)
	assert.Nil(t, repo.chapters[c.ID].RetiredAt)
}

func TestRetireChapter_Twice(t *testing.T) {
	service, _, novels := newTestService()
	ctx := context.Background()
	novelID := novels.add("The Winter Garden")

	c := createChapter(t, service, novelID, "One", "Body.")
	require.NoError(t, service.RetireChapter(ctx, c.ID))

	err := service.RetireChapter(ctx, c.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "STATE_ERROR"))
}
