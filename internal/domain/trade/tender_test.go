package trade

import (
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) shared.Date {
	return shared.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func validTender() *Tender {
	return &Tender{
		BaseEntity:    shared.BaseEntity{ID: "abcdef12-0000-0000-0000-000000000000"},
		Reference:     "AO-1",
		Title:         "Alpha",
		PartnerID:     "p1",
		ResponsibleID: "m1",
		Type:          TenderPublic,
		ReceptionDate: day(2026, time.March, 2),
		LimitDate:     day(2026, time.March, 30),
	}
}

func TestTender_Validate(t *testing.T) {
	require.NoError(t, validTender().Validate())

	t.Run("required fields in declaration order", func(t *testing.T) {
		tender := validTender()
		tender.ResponsibleID = ""
		tender.LimitDate = shared.Date{}
		err := tender.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "responsible_id is required")
	})

	t.Run("limit before reception", func(t *testing.T) {
		tender := validTender()
		tender.LimitDate = day(2026, time.March, 1)
		assert.ErrorContains(t, tender.Validate(), "cannot precede")
	})

	t.Run("unknown type", func(t *testing.T) {
		tender := validTender()
		tender.Type = "secret"
		assert.ErrorContains(t, tender.Validate(), "type must be")
	})
}

func TestTender_EnsureReference(t *testing.T) {
	tender := validTender()
	tender.Reference = ""
	tender.EnsureReference(time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "AO-202601-ABCDEF", tender.Reference)
}

func TestTender_DaysLeft(t *testing.T) {
	tender := validTender()
	assert.Equal(t, 12, tender.DaysLeft(time.Date(2026, time.March, 18, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, -1, tender.DaysLeft(time.Date(2026, time.March, 31, 9, 0, 0, 0, time.UTC)))
}

func TestTenderSchema_Search(t *testing.T) {
	rows := []Tender{
		{Reference: "AO-1", Title: "Alpha"},
		{Reference: "AO-2", Title: "Beta"},
	}
	got := listview.Filter(TenderSchema(), rows, listview.Query{Search: "alpha"}, time.Now())
	require.Len(t, got, 1)
	assert.Equal(t, "AO-1", got[0].Reference)
}

func TestTenderSchema_ReceptionWindow(t *testing.T) {
	now := time.Date(2026, time.March, 18, 15, 30, 0, 0, time.UTC)
	rows := []Tender{
		{Reference: "AO-1", ReceptionDate: day(2026, time.March, 18)},
		{Reference: "AO-2", ReceptionDate: day(2026, time.March, 17)},
		{Reference: "AO-3"},
	}
	got := listview.Filter(TenderSchema(), rows, listview.Query{Window: listview.DateWindow{Mode: listview.WindowToday}}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "AO-1", got[0].Reference)
}
