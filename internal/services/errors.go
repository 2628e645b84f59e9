package services

import (
	"errors"
	"fmt"

	"sentimentpulse/internal/config"
	"sentimentpulse/internal/dataprocessing"
)

// Dataset service errors
var (
	ErrDataFileNotFound  = errors.New("data file not found")
	ErrNoObservations    = errors.New("no observations found")
	ErrCompanyNotFound   = errors.New("company not found")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// DataLoadError records a failed dataset load along with where it was read from
type DataLoadError struct {
	Source   string
	Location string
	Err      error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("failed to load %s data from %s: %v", e.Source, e.Location, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// Is reports a missing workbook as ErrDataFileNotFound
func (e *DataLoadError) Is(target error) bool {
	return target == ErrDataFileNotFound && errors.Is(e.Err, dataprocessing.ErrFileNotFound)
}

// Message is the text shown in place of the dashboard
func (e *DataLoadError) Message() string {
	if errors.Is(e, ErrDataFileNotFound) {
		return fmt.Sprintf(config.ErrMsgDataFileNotFound, e.Location)
	}
	return fmt.Sprintf(config.ErrMsgDataLoadFailed, e.Err)
}

// CompanyNotFoundError names the company a lookup failed for
type CompanyNotFoundError struct {
	Company string
}

func (e *CompanyNotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCompanyNotFound, e.Company)
}

// Is matches ErrCompanyNotFound
func (e *CompanyNotFoundError) Is(target error) bool {
	return target == ErrCompanyNotFound
}
