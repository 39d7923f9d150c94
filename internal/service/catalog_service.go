package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

const (
	cacheKeyDepartments = "catalog:departments"
	cacheKeyCategories  = "catalog:categories"
	cacheKeyPriorities  = "catalog:priorities"
)

// CatalogService serves the option catalogs (departments, categories,
// priorities) with a Redis read-through cache in front of Postgres. A cache
// outage degrades to direct repository reads.
type CatalogService struct {
	departments repository.DepartmentRepository
	categories  repository.CategoryRepository
	priorities  repository.PriorityRepository
	cache       *persistence.Redis
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// CatalogDependencies bundles repositories for the catalog service.
type CatalogDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	CategoryRepo   repository.CategoryRepository
	PriorityRepo   repository.PriorityRepository
	Cache          *persistence.Redis
	CacheTTL       time.Duration
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		departments: deps.DepartmentRepo,
		categories:  deps.CategoryRepo,
		priorities:  deps.PriorityRepo,
		cache:       deps.Cache,
		cacheTTL:    deps.CacheTTL,
		logger:      logger,
	}
}

// ListDepartments returns active departments.
func (s *CatalogService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	var cached []domain.Department
	if s.readCache(ctx, cacheKeyDepartments, &cached) {
		return cached, nil
	}
	depts, err := s.departments.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, cacheKeyDepartments, depts)
	return depts, nil
}

// ListCategories returns active categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cached []domain.Category
	if s.readCache(ctx, cacheKeyCategories, &cached) {
		return cached, nil
	}
	cats, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, cacheKeyCategories, cats)
	return cats, nil
}

// ListPriorities returns active priorities ordered by rank.
func (s *CatalogService) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	var cached []domain.Priority
	if s.readCache(ctx, cacheKeyPriorities, &cached) {
		return cached, nil
	}
	pris, err := s.priorities.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, cacheKeyPriorities, pris)
	return pris, nil
}

// LoadAll fetches the three catalogs in parallel. Lists that fail come back
// empty; the combined error reports every failure so callers can degrade
// instead of blocking.
func (s *CatalogService) LoadAll(ctx context.Context) ([]domain.Department, []domain.Category, []domain.Priority, error) {
	var (
		wg    sync.WaitGroup
		depts []domain.Department
		cats  []domain.Category
		pris  []domain.Priority
		errs  [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		depts, errs[0] = s.ListDepartments(ctx)
	}()
	go func() {
		defer wg.Done()
		cats, errs[1] = s.ListCategories(ctx)
	}()
	go func() {
		defer wg.Done()
		pris, errs[2] = s.ListPriorities(ctx)
	}()
	wg.Wait()

	return depts, cats, pris, errors.Join(errs[0], errs[1], errs[2])
}

// Invalidate drops cached catalog lists after admin mutations.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	if err := s.cache.Client.Del(ctx, cacheKeyDepartments, cacheKeyCategories, cacheKeyPriorities).Err(); err != nil {
		s.logger.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}

func (s *CatalogService) readCache(ctx context.Context, key string, dest any) bool {
	if s.cache == nil || s.cache.Client == nil {
		return false
	}
	raw, err := s.cache.Client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("catalog cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *CatalogService) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
