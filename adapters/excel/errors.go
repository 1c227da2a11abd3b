package excel

import "errors"

var (
	// ErrMissingFilePath is returned when Config has no file path.
	ErrMissingFilePath = errors.New("file path is required")

	// ErrSheetNotFound is returned when a write or delete names a sheet the workbook lacks.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrInvalidFileFormat is returned when the file is not a readable workbook.
	ErrInvalidFileFormat = errors.New("invalid Excel file format")
)
