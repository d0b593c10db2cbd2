package author

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

// memoryRepository is an in-memory Repository used by the service tests.
type memoryRepository struct {
	authors map[string]*Author
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{authors: map[string]*Author{}}
}

func (m *memoryRepository) List(_ context.Context, f Filter, limit, offset int) ([]*Author, int, error) {
	var out []*Author
	for _, a := range m.authors {
		if a.RetiredAt != nil {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(f.Query)) {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*Author, error) {
	a, ok := m.authors[id]
	if !ok || a.RetiredAt != nil {
		return nil, dberr.ErrNotFound
	}
	return a, nil
}

func (m *memoryRepository) FindByIDAny(_ context.Context, id string) (*Author, error) {
	a, ok := m.authors[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return a, nil
}

func (m *memoryRepository) FindBySlug(_ context.Context, slug string) (*Author, error) {
	for _, a := range m.authors {
		if a.Slug == slug && a.RetiredAt == nil {
			return a, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (m *memoryRepository) FindLiveByName(_ context.Context, name string) (*Author, error) {
	for _, a := range m.authors {
		if strings.EqualFold(a.Name, name) && a.RetiredAt == nil {
			return a, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (m *memoryRepository) Create(_ context.Context, a *Author) error {
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.authors[a.ID] = a
	return nil
}

func (m *memoryRepository) Update(_ context.Context, a *Author) error {
	if _, ok := m.authors[a.ID]; !ok {
		return dberr.ErrNotFound
	}
	a.UpdatedAt = time.Now()
	m.authors[a.ID] = a
	return nil
}

func (m *memoryRepository) Retire(_ context.Context, id string) error {
	a, ok := m.authors[id]
	if !ok || a.RetiredAt != nil {
		return dberr.ErrNotFound
	}
	now := time.Now()
	a.RetiredAt = &now
	return nil
}

func newTestService() (*Service, *memoryRepository) {
	repo := newMemoryRepository()
	logger := slog.New(slog.DiscardHandler)
	return NewService(repo, revalidate.Noop{}, logger), repo
}

func TestCreateAuthor(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	a := &Author{Name: "Jane Doe"}
	require.NoError(t, service.CreateAuthor(ctx, a))

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "jane-doe", a.Slug)
}

func TestCreateAuthor_RequiresName(t *testing.T) {
	service, _ := newTestService()

	err := service.CreateAuthor(context.Background(), &Author{Name: "   "})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
}

func TestCreateAuthor_DuplicateNameIsCaseInsensitive(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, service.CreateAuthor(ctx, &Author{Name: "Jane Doe"}))

	err := service.CreateAuthor(ctx, &Author{Name: "jane doe", Slug: "jane-doe-2"})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
	// The conflict must name the record that exists, not the one submitted.
	assert.Contains(t, err.Error(), `"Jane Doe"`)
}

func TestCreateAuthor_DuplicateSlug(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, service.CreateAuthor(ctx, &Author{Name: "Jane Doe"}))

	err := service.CreateAuthor(ctx, &Author{Name: "Another Jane", Slug: "jane-doe"})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
	assert.Contains(t, err.Error(), `"jane-doe"`)
}

func TestCreateAuthor_ReusesRetiredIdentity(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	first := &Author{Name: "Jane Doe"}
	require.NoError(t, service.CreateAuthor(ctx, first))
	require.NoError(t, service.RetireAuthor(ctx, first.ID))

	// A retired author no longer blocks the name or slug.
	second := &Author{Name: "Jane Doe"}
	require.NoError(t, service.CreateAuthor(ctx, second))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestUpdateAuthor_PartialPatch(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	a := &Author{Name: "Jane Doe", Bio: pointer.To("Writes serial fiction.")}
	require.NoError(t, service.CreateAuthor(ctx, a))

	updated, err := service.UpdateAuthor(ctx, a.ID, UpdateInput{Bio: pointer.To("Updated bio.")})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", updated.Name)
	assert.Equal(t, "jane-doe", updated.Slug)
	assert.Equal(t, "Updated bio.", *updated.Bio)
}

func TestUpdateAuthor_RejectsEmptyName(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	a := &Author{Name: "Jane Doe"}
	require.NoError(t, service.CreateAuthor(ctx, a))

	_, err := service.UpdateAuthor(ctx, a.ID, UpdateInput{Name: pointer.To("")})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
}

func TestUpdateAuthor_KeepingOwnNameIsNotAConflict(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	a := &Author{Name: "Jane Doe"}
	require.NoError(t, service.CreateAuthor(ctx, a))

	_, err := service.UpdateAuthor(ctx, a.ID, UpdateInput{Name: pointer.To("Jane Doe")})
	require.NoError(t, err)
}

func TestRetireAuthor(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()

	a := &Author{Name: "Jane Doe"}
	require.NoError(t, service.CreateAuthor(ctx, a))
	require.NoError(t, service.RetireAuthor(ctx, a.ID))

	assert.NotNil(t, repo.authors[a.ID].RetiredAt)

	_, err := service.GetAuthor(ctx, a.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}

func TestRetireAuthor_Twice(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	a := &Author{Name: "Jane Doe"}
	require.NoError(t, service.CreateAuthor(ctx, a))
	require.NoError(t, service.RetireAuthor(ctx, a.ID))

	err := service.RetireAuthor(ctx, a.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "STATE_ERROR"))
	assert.Contains(t, err.Error(), "already retired")
}

func TestRetireAuthor_Unknown(t *testing.T) {
	service, _ := newTestService()

	err := service.RetireAuthor(context.Background(), "0198b6f2-0000-7000-8000-000000000000")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}
