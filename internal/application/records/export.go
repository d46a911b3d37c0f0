package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/domain/shared"
)

// Export returns the filtered records as a header and text rows.
// Reference columns show the resolved display name when the record carries one,
// and the status column shows its label.
func (s *Service[T, P]) Export(ctx context.Context, q listview.Query) ([]string, [][]string, error) {
	all, err := s.all(ctx)
	if err != nil {
		return nil, nil, err
	}
	items := listview.Filter(s.cfg.Schema, all, q, s.now())

	header := make([]string, 0, len(s.cfg.Fields)+2)
	header = append(header, "ID")
	for _, f := range s.cfg.Fields {
		header = append(header, f.Label)
	}
	header = append(header, "Créé le")

	rows := make([][]string, 0, len(items))
	for i := range items {
		values, err := asMap(&items[i])
		if err != nil {
			return nil, nil, fmt.Errorf("encode %s: %w", s.Entity(), err)
		}
		row := make([]string, 0, len(header))
		row = append(row, P(&items[i]).GetID())
		for _, f := range s.cfg.Fields {
			row = append(row, s.cell(f, values))
		}
		row = append(row, P(&items[i]).GetCreatedAt().Format("2006-01-02 15:04"))
		rows = append(rows, row)
	}
	return header, rows, nil
}

func (s *Service[T, P]) cell(f shared.FieldSpec, values map[string]any) string {
	v := values[f.Name]
	switch f.Kind {
	case shared.KindRef:
		nameField := strings.TrimSuffix(f.Name, "_id") + "_name"
		if name, ok := values[nameField].(string); ok && name != "" {
			return name
		}
	case shared.KindStatus:
		if n, ok := v.(float64); ok && f.Name == s.cfg.StatusKey {
			return s.cfg.Statuses.Label(shared.Status(int(n)))
		}
	case shared.KindBool:
		if b, ok := v.(bool); ok {
			if b {
				return "YES"
			}
			return "NO"
		}
	}
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.4f", t), "0"), ".")
	default:
		return fmt.Sprint(t)
	}
}
