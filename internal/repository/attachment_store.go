package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/basel-ax/draw/internal/domain"
	"github.com/google/uuid"
)

const (
	attachmentPrefix = "gen_"
	attachmentExt    = ".png"
	attachmentPerm   = 0o644
	dirPerm          = 0o755
)

// AttachmentStore defines the interface for persisting generated image bytes
type AttachmentStore interface {
	Save(ctx context.Context, data []byte) (*domain.Attachment, error)
}

// FileAttachmentStore writes attachments as files under a directory that is
// relative to the working directory
type FileAttachmentStore struct {
	dir string
}

// NewFileAttachmentStore creates a new file attachment store
func NewFileAttachmentStore(dir string) *FileAttachmentStore {
	return &FileAttachmentStore{dir: dir}
}

// Save writes data to <dir>/gen_<uuid>.png, creating the directory tree if needed
func (s *FileAttachmentStore) Save(ctx context.Context, data []byte) (*domain.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate file name: %w", err)
	}

	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, attachmentPrefix+id.String()+attachmentExt)
	if err := os.WriteFile(path, data, attachmentPerm); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return &domain.Attachment{UUID: id.String(), Path: path}, nil
}
