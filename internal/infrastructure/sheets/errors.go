package sheets

import "errors"

// Parsing errors
var (
	// ErrEmptyFile is returned when the CSV export is empty
	ErrEmptyFile = errors.New("sheets: CSV export is empty")

	// ErrInvalidEncoding is returned when the export is not valid UTF-8
	ErrInvalidEncoding = errors.New("sheets: invalid file encoding")

	// ErrMissingHeader is returned when the export has no header row
	ErrMissingHeader = errors.New("sheets: CSV export missing header row")

	// ErrSheetConfigMissingID is returned when no spreadsheet id is configured
	ErrSheetConfigMissingID = errors.New("sheets: spreadsheet id is required")
)
