package intake

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestPreviewTitleShortDescription(t *testing.T) {
	assert.Equal(t, "printer jam", previewTitle("  printer jam  "))
}

func TestPreviewTitleTruncatesLongDescription(t *testing.T) {
	long := strings.Repeat("x", 100)
	title := previewTitle(long)
	assert.Len(t, title, titleMaxLen)
	assert.True(t, strings.HasSuffix(title, "..."))
}

func TestCatalogFieldPrefersResolvedRef(t *testing.T) {
	field := catalogField(CatalogAnswer{Ref: &Option{ID: "d1", Name: "IT"}})
	if assert.NotNil(t, field.ID) {
		assert.Equal(t, "d1", *field.ID)
	}
	assert.Empty(t, field.Text)
}

func TestCatalogFieldFallsBackToFreeText(t *testing.T) {
	field := catalogField(CatalogAnswer{FreeText: "Zarquon"})
	assert.Nil(t, field.ID)
	assert.Equal(t, "Zarquon", field.Text)
}

func TestCatalogFieldEmptyAnswer(t *testing.T) {
	field := catalogField(CatalogAnswer{})
	assert.Equal(t, service.CatalogFieldInput{}, field)
}

func TestSubmitErrorMessageUsesDomainMessage(t *testing.T) {
	err := apperrors.NewConflict("duplicate ticket", nil)
	assert.Equal(t, "duplicate ticket", submitErrorMessage(err))
}

func TestSubmitErrorMessageHidesInternalDetail(t *testing.T) {
	msg := submitErrorMessage(errors.New("pq: connection refused"))
	assert.NotContains(t, msg, "connection refused")
	assert.Equal(t, "internal server error", msg)
}
