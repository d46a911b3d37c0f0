package organization

import (
	"testing"

	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMember_Validate(t *testing.T) {
	m := &Member{FullName: "Nadia Benali", Email: " Nadia@Example.COM ", Status: 1}
	require.NoError(t, m.Validate())
	assert.Equal(t, "nadia@example.com", m.Email)

	m.Email = "not-an-email"
	assert.ErrorContains(t, m.Validate(), "email")

	m = &Member{Email: "a@b.c"}
	assert.ErrorContains(t, m.Validate(), "full_name is required")
}

func TestMemberSchema_GroupByOffice(t *testing.T) {
	rows := []Member{
		{FullName: "A", OfficeName: "Paris"},
		{FullName: "B"},
		{FullName: "C", OfficeName: "Paris"},
	}
	groups := listview.GroupRecords(MemberSchema(), rows, "office")
	require.Len(t, groups, 2)
	assert.Equal(t, "Paris", groups[0].Label)
	assert.Len(t, groups[0].Records, 2)
	assert.Equal(t, "Sans bureau", groups[1].Label)
}

func TestOffice(t *testing.T) {
	o := &Office{Name: "Siège", City: "Casablanca", Status: 1}
	require.NoError(t, o.Validate())
	assert.Equal(t, "Siège (Casablanca)", o.DisplayLabel())
	assert.Equal(t, "Fermé", OfficeStatuses.Label(0))

	o.City = ""
	assert.ErrorContains(t, o.Validate(), "city is required")
}
