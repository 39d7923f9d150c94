package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func newCatalogServiceFixture() *CatalogService {
	return NewCatalogService(CatalogDependencies{
		DepartmentRepo: newMemDepartmentRepo(
			domain.Department{ID: "dept-it", Name: "IT", IsActive: true},
			domain.Department{ID: "dept-old", Name: "Retired", IsActive: false},
		),
		CategoryRepo: newMemCategoryRepo(
			domain.Category{ID: "cat-inc", Name: "Incident", IsActive: true},
		),
		PriorityRepo: newMemPriorityRepo(
			domain.Priority{ID: "pri-low", Name: "Low", Rank: 1, IsActive: true},
		),
	}, zap.NewNop())
}

func TestCatalogListsSkipInactiveEntries(t *testing.T) {
	svc := newCatalogServiceFixture()

	depts, err := svc.ListDepartments(context.Background())
	require.NoError(t, err)
	require.Len(t, depts, 1)
	assert.Equal(t, "IT", depts[0].Name)
}

func TestCatalogLoadAllWithoutCache(t *testing.T) {
	svc := newCatalogServiceFixture()

	depts, cats, pris, err := svc.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, depts, 1)
	assert.Len(t, cats, 1)
	assert.Len(t, pris, 1)
}

func TestCatalogInvalidateWithoutCacheIsNoop(t *testing.T) {
	svc := newCatalogServiceFixture()
	assert.NotPanics(t, func() { svc.Invalidate(context.Background()) })
}
