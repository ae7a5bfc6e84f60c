package assistant

// QuickPrompts are the canned questions offered beside the input box. They
// submit through the same state machine as typed text.
var QuickPrompts = []string{
	"Show low-stock products",
	"Which employee worked the most last week?",
	"What was my revenue this month?",
	"Show expenses by type for last 30 days",
	"Forecast sales for next 30 days",
}
