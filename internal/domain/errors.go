package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrRunActive           = errors.New("a processing run is already active")
	ErrNoFilesQueued       = errors.New("no files queued for processing")
	ErrInvalidSort         = errors.New("invalid sort parameter")
	ErrUploadFailed        = errors.New("file upload to storage failed")
)
