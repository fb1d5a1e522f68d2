package domain

// FileType represents the allowed file types for upload. Only PDF documents
// are accepted into the processing queue.
type FileType string

const (
	FileTypePDF FileType = "pdf"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf": FileTypePDF,
}

// FileStatus represents the lifecycle of a queued file.
type FileStatus string

const (
	FileStatusQueued    FileStatus = "queued"
	FileStatusProcessed FileStatus = "processed"
	FileStatusFailed    FileStatus = "failed"
)

// RunState is the state of the page-processing scheduler.
type RunState string

const (
	RunStateIdle    RunState = "idle"
	RunStateRunning RunState = "running"
)

// Pallet classifies a delivery note by the letter of its unit code.
type Pallet string

const (
	PalletEuro Pallet = "EURO"
	PalletBlok Pallet = "BLOK"
)
