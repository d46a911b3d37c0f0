package catalog

import (
	"testing"

	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOffering(t *testing.T) {
	o, err := NewOffering(" Fret aérien ")
	require.NoError(t, err)
	assert.Equal(t, "Fret aérien", o.Title)
	assert.Equal(t, shared.Status(1), o.IsVisible)

	_, err = NewOffering("")
	assert.ErrorContains(t, err, "title is required")
}

func TestOffering_Validate(t *testing.T) {
	o := &Offering{Title: "Dédouanement", IsVisible: 3}
	assert.ErrorContains(t, o.Validate(), "is_visible")

	o.IsVisible = 0
	o.SortOrder = -1
	assert.ErrorContains(t, o.Validate(), "sort_order")
}

func TestOfferingSchema_VisibilityCounts(t *testing.T) {
	rows := []Offering{{IsVisible: 1}, {IsVisible: 1}, {IsVisible: 0}}
	counts := listview.CountBy(rows, OfferingSchema().Buckets["is_visible"], []string{"0", "1"})
	assert.Equal(t, map[string]int{"0": 1, "1": 2}, counts)
}
