package domain

import "time"

// Attachment is an image file written under the attachments directory
type Attachment struct {
	UUID string
	Path string
}

// GeneratedImage represents a generated image and where it was saved
type GeneratedImage struct {
	ID        int64
	UUID      string
	Prompt    string
	Model     string
	Path      string
	Size      int
	SHA256    string
	CreatedAt time.Time
}
