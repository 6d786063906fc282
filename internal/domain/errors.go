package domain

import "errors"

var (
	// ErrInvalidFileType is returned before any side effect when the
	// declared extension is not csv or xlsx.
	ErrInvalidFileType = errors.New("invalid file type: only csv and xlsx are supported")

	// ErrInvalidDataset is returned when the dataset kind is neither
	// stock nor demand.
	ErrInvalidDataset = errors.New("invalid dataset: must be stock or demand")

	// ErrSettingsNotFound means the singleton settings row is missing.
	// The calculator treats this as fatal since every derived value
	// depends on it.
	ErrSettingsNotFound = errors.New("settings not found")

	// ErrEmptyFile is returned when the spreadsheet has no data rows.
	ErrEmptyFile = errors.New("file contains no data rows")

	// ErrInvalidSettings is returned when a settings update carries an
	// unknown calculation mode or a threshold outside 0-100.
	ErrInvalidSettings = errors.New("invalid settings values")
)
