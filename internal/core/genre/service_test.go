package genre

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taibuivan/novika/internal/platform/apperr"
	"github.com/taibuivan/novika/internal/platform/dberr"
	"github.com/taibuivan/novika/internal/platform/revalidate"
	"github.com/taibuivan/novika/pkg/pointer"
)

type memoryRepository struct {
	genres map[string]*Genre
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{genres: map[string]*Genre{}}
}

func (m *memoryRepository) List(_ context.Context, f Filter, limit, offset int) ([]*Genre, int, error) {
	var out []*Genre
	for _, g := range m.genres {
		if g.RetiredAt != nil {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(g.Name), strings.ToLower(f.Query)) {
			continue
		}
		out = append(out, g)
	}
	return out, len(out), nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*Genre, error) {
	g, ok := m.genres[id]
	if !ok || g.RetiredAt != nil {
		return nil, dberr.ErrNotFound
	}
	return g, nil
}

func (m *memoryRepository) FindByIDAny(_ context.Context, id string) (*Genre, error) {
	g, ok := m.genres[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return g, nil
}

func (m *memoryRepository) FindBySlug(_ context.Context, slug string) (*Genre, error) {
	for _, g := range m.genres {
		if g.Slug == slug && g.RetiredAt == nil {
			return g, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (m *memoryRepository) FindLiveByName(_ context.Context, name string) (*Genre, error) {
	for _, g := range m.genres {
		if strings.EqualFold(g.Name, name) && g.RetiredAt == nil {
			return g, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (m *memoryRepository) Create(_ context.Context, g *Genre) error {
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	m.genres[g.ID] = g
	return nil
}

func (m *memoryRepository) Update(_ context.Context, g *Genre) error {
	if _, ok := m.genres[g.ID]; !ok {
		return dberr.ErrNotFound
	}
	g.UpdatedAt = time.Now()
	m.genres[g.ID] = g
	return nil
}

func (m *memoryRepository) Retire(_ context.Context, id string) error {
	g, ok := m.genres[id]
	if !ok || g.RetiredAt != nil {
		return dberr.ErrNotFound
	}
	now := time.Now()
	g.RetiredAt = &now
	return nil
}

func newTestService() *Service {
	logger := slog.New(slog.DiscardHandler)
	return NewService(newMemoryRepository(), revalidate.Noop{}, logger)
}

func TestCreateGenre(t *testing.T) {
	service := newTestService()

	g := &Genre{Name: "Science Fiction"}
	require.NoError(t, service.CreateGenre(context.Background(), g))

	assert.NotEmpty(t, g.ID)
	assert.Equal(t, "science-fiction", g.Slug)
}

func TestCreateGenre_DuplicateName(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	require.NoError(t, service.CreateGenre(ctx, &Genre{Name: "Romance"}))

	err := service.CreateGenre(ctx, &Genre{Name: "ROMANCE", Slug: "romance-2"})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
	assert.Contains(t, err.Error(), `"Romance"`)
}

func TestUpdateGenre_PartialPatch(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	g := &Genre{Name: "Romance"}
	require.NoError(t, service.CreateGenre(ctx, g))

	updated, err := service.UpdateGenre(ctx, g.ID, UpdateInput{Description: pointer.To("Love stories.")})
	require.NoError(t, err)

	assert.Equal(t, "Romance", updated.Name)
	assert.Equal(t, "Love stories.", *updated.Description)
}

func TestRetireGenre_Twice(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	g := &Genre{Name: "Romance"}
	require.NoError(t, service.CreateGenre(ctx, g))
	require.NoError(t, service.RetireGenre(ctx, g.ID))

	err := service.RetireGenre(ctx, g.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "STATE_ERROR"))
}

func TestRetireGenre_FreesNameForReuse(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	g := &Genre{Name: "Romance"}
	require.NoError(t, service.CreateGenre(ctx, g))
	require.NoError(t, service.RetireGenre(ctx, g.ID))

	require.NoError(t, service.CreateGenre(ctx, &Genre{Name: "Romance"}))
}
