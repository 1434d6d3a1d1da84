// Package core provides the execution model types for checkout-runner.
package core

// Attachment represents a debug artifact captured during step execution
type Attachment struct {
	Name        string `json:"name"`        // Descriptive name: screenshot, page_text
	ContentType string `json:"contentType"` // MIME type: image/png, text/plain
	Path        string `json:"path"`        // File path relative to output directory
	Body        []byte `json:"-"`           // In-memory content (not serialized to JSON)
}

// Common attachment names
const (
	AttachmentScreenshot = "screenshot"
	AttachmentPageText   = "page_text"
)

// Common content types
const (
	ContentTypePNG  = "image/png"
	ContentTypeText = "text/plain"
)

// NewScreenshotAttachment creates a screenshot attachment
func NewScreenshotAttachment(path string, data []byte) Attachment {
	return Attachment{
		Name:        AttachmentScreenshot,
		ContentType: ContentTypePNG,
		Path:        path,
		Body:        data,
	}
}

// NewPageTextAttachment creates a page text attachment holding the
// current URL and visible body text
func NewPageTextAttachment(path string, data []byte) Attachment {
	return Attachment{
		Name:        AttachmentPageText,
		ContentType: ContentTypeText,
		Path:        path,
		Body:        data,
	}
}
