package partner

import "strings"

// Category classifies partners
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategorySet is a closed list of partner categories
type CategorySet []Category

// Categories is the list of partner categories
var Categories = CategorySet{
	{ID: "client", Name: "Client"},
	{ID: "supplier", Name: "Fournisseur"},
	{ID: "subcontractor", Name: "Sous-traitant"},
	{ID: "institution", Name: "Institution"},
	{ID: "carrier", Name: "Transporteur"},
}

// Find looks a category up by id or, case-insensitively, by display name
func (s CategorySet) Find(key string) (Category, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Category{}, false
	}
	for _, c := range s {
		if c.ID == key || strings.EqualFold(c.Name, key) || strings.EqualFold(c.ID, key) {
			return c, true
		}
	}
	return Category{}, false
}

// Name returns the display name of id, or "Non classé" when unknown
func (s CategorySet) Name(id string) string {
	if c, ok := s.Find(id); ok {
		return c.Name
	}
	return "Non classé"
}
