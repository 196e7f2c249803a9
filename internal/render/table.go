package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// View names the query a table was produced for.
type View string

const (
	ViewAll          View = "all"
	ViewSubjects     View = "subjects"
	ViewCCAs         View = "ccas"
	ViewProgrammes   View = "programmes"
	ViewDistinctives View = "distinctives"
	ViewAdvanced     View = "advanced"
)

// Placeholders for missing values.
const (
	PlaceholderDash          = "-"
	PlaceholderNotApplicable = "N/A"
)

// Options control how a table is built.
type Options struct {
	View View
	// Admin is true when the viewer holds the administrator role.
	Admin bool
	// Placeholder replaces null or missing values. Defaults to PlaceholderDash.
	Placeholder string
	// BlankAsMissing also replaces empty strings with the placeholder.
	BlankAsMissing bool
}

// Column is one rendered column.
type Column struct {
	Key   string
	Label string
}

// Row is one rendered row. ID is the school id when the record carries one.
type Row struct {
	ID    string
	Cells []string
}

// Table is a generic result table.
type Table struct {
	Columns []Column
	Rows    []Row
	Actions bool
	// Filter is the name search that produced Rows. Row actions carry it so the
	// edited row stays in the results.
	Filter string
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// Label turns a snake_case key into a Title Case header.
func Label(key string) string {
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

// PlaceholderFor returns the placeholder used by a view. Advanced search shows N/A.
func PlaceholderFor(view View) string {
	if view == ViewAdvanced {
		return PlaceholderNotApplicable
	}
	return PlaceholderDash
}

// BuildTable derives the columns from the first record and renders every row in that order.
// Keys absent from the first record are dropped; keys missing from later records get the placeholder.
func BuildTable(records []Record, opts Options) Table {
	placeholder := opts.Placeholder
	if placeholder == "" {
		placeholder = PlaceholderDash
	}
	if len(records) == 0 {
		return Table{}
	}

	keys := records[0].Keys()
	columns := make([]Column, 0, len(keys))
	for _, key := range keys {
		columns = append(columns, Column{Key: key, Label: Label(key)})
	}

	_, hasID := records[0].Get("school_id")
	table := Table{
		Columns: columns,
		Rows:    make([]Row, 0, len(records)),
		Actions: opts.View == ViewAll && opts.Admin && hasID,
	}

	for _, record := range records {
		row := Row{Cells: make([]string, 0, len(keys))}
		for _, key := range keys {
			value, _ := record.Get(key)
			row.Cells = append(row.Cells, formatValue(value, placeholder, opts.BlankAsMissing))
		}
		if table.Actions {
			if id, ok := record.Get("school_id"); ok && id != nil {
				row.ID = formatValue(id, "", false)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// FormatValue renders a decoded value as text. Null becomes the empty string.
func FormatValue(value interface{}) string {
	return formatValue(value, "", false)
}

func formatValue(value interface{}, placeholder string, blankAsMissing bool) string {
	switch v := value.(type) {
	case nil:
		return placeholder
	case string:
		if blankAsMissing && strings.TrimSpace(v) == "" {
			return placeholder
		}
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case map[string]interface{}, []interface{}:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	default:
		return fmt.Sprint(v)
	}
}
