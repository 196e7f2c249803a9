package render

// State is the outcome of rendering a result panel.
type State string

const (
	StateTable State = "table"
	StateEmpty State = "empty"
	StateError State = "error"
)

// Panel is the view model of one result area.
type Panel struct {
	State   State
	Title   string
	Message string
	Hint    string
	Table   Table
	Footer  string
}

// TablePanel wraps a table, falling back to the empty state when it has no rows.
func TablePanel(title string, table Table) Panel {
	if table.Empty() {
		return EmptyPanel(title, "No results found")
	}
	return Panel{State: StateTable, Title: title, Table: table}
}

// EmptyPanel is shown when a query returned nothing.
func EmptyPanel(title, message string) Panel {
	return Panel{State: StateEmpty, Title: title, Message: message, Hint: "Try adjusting your search query"}
}

// ErrorPanel is shown when a request failed. The message is displayed verbatim.
func ErrorPanel(title, message string) Panel {
	return Panel{State: StateError, Title: title, Message: message}
}
