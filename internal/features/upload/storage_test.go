package upload

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestObjectPath(t *testing.T) {
	at := time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		domain   Domain
		filename string
		want     string
	}{
		{DomainMemo, "a.png", "memo/2026/03/a.png"},
		{DomainProfileImage, "avatar.jpg", "profile-image/2026/03/avatar.jpg"},
		{DomainAttachment, "doc.pdf", "attachment/2026/03/doc.pdf"},
	}
	for _, tt := range tests {
		if got := ObjectPath(tt.domain, at, tt.filename); got != tt.want {
			t.Errorf("ObjectPath(%s, %s) = %q, want %q", tt.domain, tt.filename, got, tt.want)
		}
	}
}

func TestLocalBlobStoreRoundTrip(t *testing.T) {
	store := &LocalBlobStore{Base: t.TempDir()}
	path := ObjectPath(DomainMemo, time.Now(), "note.txt")
	data := []byte("hello")

	// directories are created lazily on first write
	if err := store.Write(path, data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Base, filepath.FromSlash(path))); err != nil {
		t.Fatalf("blob not on disk: %v", err)
	}

	got, err := store.Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Read() = %q, want %q", got, "hello")
	}

	size, err := store.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if size != int64(len(data)) {
		t.Errorf("Stat() = %d, want %d", size, len(data))
	}

	if err := store.Delete(path); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Read(path); err == nil {
		t.Error("Read() after delete should fail")
	}
}

func TestLocalBlobStoreDeleteMissingIsNil(t *testing.T) {
	store := &LocalBlobStore{Base: t.TempDir()}
	if err := store.Delete("memo/2026/01/never-written.txt"); err != nil {
		t.Errorf("Delete() of missing blob = %v, want nil", err)
	}
}
