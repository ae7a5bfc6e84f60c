package assistant

import (
	"fmt"
	"sort"
)

// RenderLimit bounds how many result rows reach the presentation layer.
const RenderLimit = 20

// Table is the bounded tabular view of a turn's result rows.
type Table struct {
	Columns []string
	Rows    [][]string
	// TotalRows is the size of the full returned set.
	TotalRows int
	// Truncated is how many rows beyond RenderLimit were held back. Zero
	// means the full set is shown.
	Truncated int
}

// TableFor renders a turn's result rows, surfacing at most RenderLimit of
// them and reporting how many more exist. The column set is derived from
// the first row only; rows are assumed homogeneous. Columns are sorted so
// rendering is stable across runs.
func TableFor(t Turn) (Table, bool) {
	if len(t.Rows) == 0 {
		return Table{}, false
	}

	columns := make([]string, 0, len(t.Rows[0]))
	for col := range t.Rows[0] {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	limit := len(t.Rows)
	if limit > RenderLimit {
		limit = RenderLimit
	}

	rows := make([][]string, 0, limit)
	for _, rowMap := range t.Rows[:limit] {
		row := make([]string, len(columns))
		for i, col := range columns {
			if v, ok := rowMap[col]; ok && v != nil {
				row[i] = fmt.Sprint(v)
			}
		}
		rows = append(rows, row)
	}

	return Table{
		Columns:   columns,
		Rows:      rows,
		TotalRows: len(t.Rows),
		Truncated: len(t.Rows) - limit,
	}, true
}
