package experts

import (
	"context"
	"errors"
	"strings"

	"github.com/Domenick1991/expertbooking/internal/domain"
	"github.com/Domenick1991/expertbooking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExpertUseCase interface {
	List(ctx context.Context, query ListQuery) (*domain.ExpertPage, error)
	GetByID(ctx context.Context, id string) (*domain.Expert, error)
}

// ExpertCache stores reads under a generation. The generation is taken
// before the store is read and passed back on write.
type ExpertCache interface {
	Generation(ctx context.Context) (int64, error)
	GetExpertPage(ctx context.Context, gen int64, filter domain.ExpertFilter) (*domain.ExpertPage, error)
	SetExpertPage(ctx context.Context, gen int64, filter domain.ExpertFilter, page *domain.ExpertPage) error
	GetExpert(ctx context.Context, gen int64, id uuid.UUID) (*domain.Expert, error)
	SetExpert(ctx context.Context, gen int64, expert *domain.Expert) error
}

// ListQuery carries the raw paging values; zero means "not given".
type ListQuery struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

type ExpertService struct {
	repo         repository.ExpertRepository
	cache        ExpertCache
	defaultLimit int
	maxLimit     int
	log          *zap.Logger
}

func NewExpertService(repo repository.ExpertRepository, cache ExpertCache, defaultLimit, maxLimit int, log *zap.Logger) *ExpertService {
	if defaultLimit < 1 {
		defaultLimit = 5
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &ExpertService{repo: repo, cache: cache, defaultLimit: defaultLimit, maxLimit: maxLimit, log: log}
}

func (s *ExpertService) filter(q ListQuery) domain.ExpertFilter {
	f := domain.ExpertFilter{
		Page:     q.Page,
		Limit:    q.Limit,
		Search:   strings.TrimSpace(q.Search),
		Category: strings.TrimSpace(q.Category),
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = s.defaultLimit
	}
	f.Limit = max(1, min(s.maxLimit, f.Limit))
	return f
}

// generation reports whether the cache can be used for this read and under
// which generation.
func (s *ExpertService) generation(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn("expert cache unavailable", zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (s *ExpertService) List(ctx context.Context, query ListQuery) (*domain.ExpertPage, error) {
	filter := s.filter(query)

	gen, cached := s.generation(ctx)
	if cached {
		page, err := s.cache.GetExpertPage(ctx, gen, filter)
		if err != nil {
			s.log.Warn("expert page cache read failed", zap.Error(err))
		} else if page != nil {
			return page, nil
		}
	}

	experts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.InternalError("failed to list experts", err)
	}
	page := &domain.ExpertPage{Experts: experts, Total: total, Page: filter.Page, Limit: filter.Limit}

	if cached {
		if err := s.cache.SetExpertPage(ctx, gen, filter, page); err != nil {
			s.log.Warn("expert page cache write failed", zap.Error(err))
		}
	}
	return page, nil
}

func (s *ExpertService) GetByID(ctx context.Context, id string) (*domain.Expert, error) {
	expertID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.BadRequestError("Invalid expert ID format")
	}

	gen, cached := s.generation(ctx)
	if cached {
		if hit, err := s.cache.GetExpert(ctx, gen, expertID); err == nil && hit != nil {
			return hit, nil
		}
	}

	expert, err := s.repo.GetByID(ctx, expertID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundError("Expert not found")
		}
		return nil, domain.InternalError("failed to load expert", err)
	}

	if cached {
		if err := s.cache.SetExpert(ctx, gen, expert); err != nil {
			s.log.Warn("expert cache write failed", zap.String("expert_id", expertID.String()), zap.Error(err))
		}
	}
	return expert, nil
}

var _ ExpertUseCase = (*ExpertService)(nil)
