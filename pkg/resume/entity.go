package resume

// Meta describes an uploaded resume file. The file bytes are never kept.
type Meta struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
	LastModified int64  `json:"lastModified"` // unix milliseconds
	Pages        int    `json:"pages,omitempty"`
}

// Accepted MIME types.
const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// MaxBytes caps uploads at 5MB.
const MaxBytes = 5 << 20
