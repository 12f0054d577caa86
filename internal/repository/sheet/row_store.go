package sheet

import "context"

// Worksheet names, one per logical table.
const (
	SheetUsers    = "users"
	SheetSessions = "sessions"
	SheetMessages = "messages"
	SheetFeedback = "feedback"
)

// RowStore is the opaque spreadsheet wire client. The adapter only needs
// append, full read and row replace; authentication and the actual
// spreadsheet API are the client's concern.
type RowStore interface {
	// Append adds a data row to the named worksheet.
	Append(ctx context.Context, sheet string, row []string) error

	// Rows returns all data rows of the worksheet (header excluded), in
	// insertion order.
	Rows(ctx context.Context, sheet string) ([][]string, error)

	// Update replaces the data row at index (0-based, matching Rows).
	Update(ctx context.Context, sheet string, index int, row []string) error
}
