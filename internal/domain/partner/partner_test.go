package partner

import (
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("creates a pending visible partner", func(t *testing.T) {
		p, err := New("  Acme Logistics ", "supplier")
		require.NoError(t, err)

		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "Acme Logistics", p.Title)
		assert.Equal(t, StatusPending, p.Status)
		assert.Equal(t, shared.Status(1), p.IsVisible)
		assert.Equal(t, "Fournisseur", p.CategoryName)
	})

	t.Run("resolves category by display name", func(t *testing.T) {
		p, err := New("Acme", "transporteur")
		require.NoError(t, err)
		assert.Equal(t, "carrier", p.CategoryID)
	})

	t.Run("fails with empty title", func(t *testing.T) {
		_, err := New("", "client")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "title is required")
	})

	t.Run("fails with unknown category", func(t *testing.T) {
		_, err := New("Acme", "martian")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown category")
	})
}

func TestPartner_Validate(t *testing.T) {
	p, err := New("Acme", "client")
	require.NoError(t, err)

	p.Status = 3
	assert.Error(t, p.Validate())

	p.Status = StatusSuspended
	p.IsVisible = 2
	assert.Error(t, p.Validate())
}

func TestStatuses(t *testing.T) {
	assert.Equal(t, "Suspendu", Statuses.Label(StatusSuspended))
	assert.Equal(t, "Inconnu", Statuses.Label(9))
	assert.Equal(t, "Non classé", Categories.Name("martian"))
}

func TestSchema(t *testing.T) {
	march := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	rows := []Partner{
		{BaseEntity: shared.BaseEntity{ID: "1", CreatedAt: march}, Title: "Alpha", CategoryID: "client", CategoryName: "Client", Status: StatusActive},
		{BaseEntity: shared.BaseEntity{ID: "2", CreatedAt: march}, Title: "Beta", Email: "alpha@beta.io", CategoryID: "carrier", Status: StatusPending},
		{BaseEntity: shared.BaseEntity{ID: "3", CreatedAt: march}, Title: "Gamma", CategoryID: "client", Status: StatusActive},
	}

	res := listview.Apply(Schema(), rows, listview.Query{Search: "ALPHA", GroupBy: "category"}, march)
	require.Len(t, res.Records, 2, "title or email match")
	require.Len(t, res.Groups, 2)
	assert.Equal(t, "Client", res.Groups[0].Label)
	assert.Equal(t, "Transporteur", res.Groups[1].Label)

	sum, ok := listview.SummarizeBy(Schema(), rows, "status")
	require.True(t, ok)
	require.Len(t, sum.Buckets, 2)
	assert.Equal(t, "Actif", sum.Buckets[0].Label)
	assert.Equal(t, 2, sum.Buckets[0].Count)
}
