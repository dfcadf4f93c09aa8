package experts

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/expertbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockExpertRepository struct {
	mock.Mock
}

func (m *MockExpertRepository) List(ctx context.Context, filter domain.ExpertFilter) ([]domain.Expert, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Expert), args.Int(1), args.Error(2)
}

func (m *MockExpertRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Expert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expert), args.Error(1)
}

func (m *MockExpertRepository) RemoveSlotIfPresent(ctx context.Context, expertID uuid.UUID, date domain.Date, label string) (bool, error) {
	args := m.Called(ctx, expertID, date, label)
	return args.Bool(0), args.Error(1)
}

func (m *MockExpertRepository) ReplaceAll(ctx context.Context, experts []domain.Expert) error {
	return m.Called(ctx, experts).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) GetExpertPage(ctx context.Context, gen int64, filter domain.ExpertFilter) (*domain.ExpertPage, error) {
	args := m.Called(ctx, gen, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpertPage), args.Error(1)
}

func (m *MockCache) SetExpertPage(ctx context.Context, gen int64, filter domain.ExpertFilter, page *domain.ExpertPage) error {
	return m.Called(ctx, gen, filter, page).Error(0)
}

func (m *MockCache) GetExpert(ctx context.Context, gen int64, id uuid.UUID) (*domain.Expert, error) {
	args := m.Called(ctx, gen, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expert), args.Error(1)
}

func (m *MockCache) SetExpert(ctx context.Context, gen int64, expert *domain.Expert) error {
	return m.Called(ctx, gen, expert).Error(0)
}

func TestExpertService_List_Clamping(t *testing.T) {
	tests := []struct {
		name  string
		query ListQuery
		want  domain.ExpertFilter
	}{
		{"defaults", ListQuery{}, domain.ExpertFilter{Page: 1, Limit: 5}},
		{"negative page", ListQuery{Page: -3, Limit: 10}, domain.ExpertFilter{Page: 1, Limit: 10}},
		{"over max", ListQuery{Page: 2, Limit: 500}, domain.ExpertFilter{Page: 2, Limit: 50}},
		{"negative limit", ListQuery{Limit: -1}, domain.ExpertFilter{Page: 1, Limit: 1}},
		{"trimmed filters", ListQuery{Search: " arj ", Category: " Technology "}, domain.ExpertFilter{Page: 1, Limit: 5, Search: "arj", Category: "Technology"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockExpertRepository{}
			service := NewExpertService(repo, nil, 5, 50, zap.NewNop())
			ctx := context.Background()

			repo.On("List", ctx, tt.want).Return([]domain.Expert{}, 7, nil).Once()

			page, err := service.List(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, 7, page.Total)
			assert.Equal(t, tt.want.Page, page.Page)
			assert.Equal(t, tt.want.Limit, page.Limit)
			repo.AssertExpectations(t)
		})
	}
}

func TestExpertService_List_CacheHit(t *testing.T) {
	repo := &MockExpertRepository{}
	cache := &MockCache{}
	service := NewExpertService(repo, cache, 5, 50, zap.NewNop())
	ctx := context.Background()

	filter := domain.ExpertFilter{Page: 1, Limit: 5}
	cached := &domain.ExpertPage{Experts: []domain.Expert{{Name: "Arjun Rao"}}, Total: 1, Page: 1, Limit: 5}
	cache.On("Generation", ctx).Return(int64(4), nil).Once()
	cache.On("GetExpertPage", ctx, int64(4), filter).Return(cached, nil).Once()

	page, err := service.List(ctx, ListQuery{})

	require.NoError(t, err)
	assert.Equal(t, cached, page)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestExpertService_List_CacheMiss(t *testing.T) {
	repo := &MockExpertRepository{}
	cache := &MockCache{}
	service := NewExpertService(repo, cache, 5, 50, zap.NewNop())
	ctx := context.Background()

	filter := domain.ExpertFilter{Page: 1, Limit: 5}
	experts := []domain.Expert{{Name: "Arjun Rao"}}
	cache.On("Generation", ctx).Return(int64(4), nil).Once()
	cache.On("GetExpertPage", ctx, int64(4), filter).Return(nil, errors.New("redis down")).Once()
	repo.On("List", ctx, filter).Return(experts, 1, nil).Once()
	cache.On("SetExpertPage", ctx, int64(4), filter, mock.AnythingOfType("*domain.ExpertPage")).Return(nil).Once()

	page, err := service.List(ctx, ListQuery{})

	require.NoError(t, err)
	assert.Equal(t, experts, page.Experts)
	assert.Equal(t, 1, page.TotalPages())
	cache.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestExpertService_List_CacheUnavailable(t *testing.T) {
	repo := &MockExpertRepository{}
	cache := &MockCache{}
	service := NewExpertService(repo, cache, 5, 50, zap.NewNop())
	ctx := context.Background()

	filter := domain.ExpertFilter{Page: 1, Limit: 5}
	cache.On("Generation", ctx).Return(int64(0), errors.New("redis down")).Once()
	repo.On("List", ctx, filter).Return([]domain.Expert{}, 0, nil).Once()

	_, err := service.List(ctx, ListQuery{})

	require.NoError(t, err)
	cache.AssertNotCalled(t, "SetExpertPage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestExpertService_List_RepoError(t *testing.T) {
	repo := &MockExpertRepository{}
	service := NewExpertService(repo, nil, 5, 50, zap.NewNop())
	ctx := context.Background()

	repo.On("List", ctx, mock.Anything).Return(nil, 0, errors.New("db down")).Once()

	_, err := service.List(ctx, ListQuery{})
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestExpertService_GetByID(t *testing.T) {
	repo := &MockExpertRepository{}
	cache := &MockCache{}
	service := NewExpertService(repo, cache, 5, 50, zap.NewNop())
	ctx := context.Background()

	id := uuid.New()
	expert := &domain.Expert{ID: id, Name: "Sneha Kapoor"}
	cache.On("Generation", ctx).Return(int64(0), nil).Once()
	cache.On("GetExpert", ctx, int64(0), id).Return(nil, nil).Once()
	repo.On("GetByID", ctx, id).Return(expert, nil).Once()
	cache.On("SetExpert", ctx, int64(0), expert).Return(nil).Once()

	got, err := service.GetByID(ctx, id.String())

	require.NoError(t, err)
	assert.Equal(t, expert, got)
	cache.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestExpertService_GetByID_Errors(t *testing.T) {
	repo := &MockExpertRepository{}
	service := NewExpertService(repo, nil, 5, 50, zap.NewNop())
	ctx := context.Background()

	_, err := service.GetByID(ctx, "not-a-uuid")
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	missing := uuid.New()
	repo.On("GetByID", ctx, missing).Return(nil, domain.ErrNotFound).Once()
	_, err = service.GetByID(ctx, missing.String())
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.Equal(t, "Expert not found", domain.PublicMessage(err))
}
