package identity

import (
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisitor_Validate(t *testing.T) {
	v := &Visitor{FullName: "Karim", Email: "KARIM@site.ma"}
	require.NoError(t, v.Validate())
	assert.Equal(t, "karim@site.ma", v.Email)
	assert.Equal(t, VisitorPending, v.Status)

	v.Status = 2
	assert.ErrorContains(t, v.Validate(), "status")
}

func TestVisitorSchema(t *testing.T) {
	rows := []Visitor{
		{FullName: "Karim", Company: "Atlas", Status: VisitorApproved},
		{FullName: "Sara", Company: "Ocean", Status: VisitorPending},
	}
	got := listview.Filter(VisitorSchema(), rows, listview.Query{Filters: map[string]string{"status": "1"}}, time.Time{})
	require.Len(t, got, 1)
	assert.Equal(t, "Karim - Atlas", got[0].DisplayLabel())
	assert.Equal(t, "Approuvé", VisitorStatuses.Label(VisitorApproved))
}
