package repository

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

var attachmentNameRe = regexp.MustCompile(`^gen_[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\.png$`)

func TestFileAttachmentStore_CreatesDirectoryAndWritesBytes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "brain", "attachments")
	store := NewFileAttachmentStore(dir)
	data := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

	att, err := store.Save(context.Background(), data)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Dir(att.Path) != dir {
		t.Fatalf("path %q not under %q", att.Path, dir)
	}
	if !attachmentNameRe.MatchString(filepath.Base(att.Path)) {
		t.Fatalf("unexpected file name %q", filepath.Base(att.Path))
	}
	if filepath.Base(att.Path) != "gen_"+att.UUID+".png" {
		t.Fatalf("uuid %q does not match path %q", att.UUID, att.Path)
	}
	got, err := os.ReadFile(att.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("contents = %v; want %v", got, data)
	}
}

func TestFileAttachmentStore_RelativeDirectory(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	tmp := t.TempDir()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	att, err := NewFileAttachmentStore(filepath.Join("brain", "attachments")).Save(context.Background(), []byte("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.IsAbs(att.Path) {
		t.Fatalf("expected relative path, got %q", att.Path)
	}
	if _, err := os.Stat(filepath.Join(tmp, att.Path)); err != nil {
		t.Fatalf("stat: %v", err)
	}
}

func TestFileAttachmentStore_NamesAreUnique(t *testing.T) {
	store := NewFileAttachmentStore(t.TempDir())
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		att, err := store.Save(context.Background(), []byte("same bytes"))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if seen[att.Path] {
			t.Fatalf("duplicate path %q", att.Path)
		}
		seen[att.Path] = true
	}
}

func TestFileAttachmentStore_DirectoryIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "brain")
	if err := os.WriteFile(blocker, []byte("not a dir"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := NewFileAttachmentStore(filepath.Join(blocker, "attachments")).Save(context.Background(), []byte("x"))
	if err == nil {
		t.Fatal("expected error when the directory cannot be created")
	}
}

func TestFileAttachmentStore_CancelledContext(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFileAttachmentStore(dir).Save(ctx, []byte("x")); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("directory should not be created, stat err = %v", err)
	}
}
