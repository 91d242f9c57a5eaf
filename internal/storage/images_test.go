package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tableorder/internal/domain"
)

func TestLocalImages_Save(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalImages(dir, "https://cdn.example.com/")
	if err != nil {
		t.Fatalf("NewLocalImages: %v", err)
	}

	url, err := store.Save(context.Background(), "ribeye.JPG", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(url, "https://cdn.example.com/images/") || !strings.HasSuffix(url, ".jpg") {
		t.Fatalf("unexpected url %q", url)
	}
	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestLocalImages_RejectsUnknownType(t *testing.T) {
	store, err := NewLocalImages(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewLocalImages: %v", err)
	}
	if _, err := store.Save(context.Background(), "menu.exe", strings.NewReader("x")); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestLocalImages_Delete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalImages(dir, "https://cdn.example.com")
	if err != nil {
		t.Fatalf("NewLocalImages: %v", err)
	}
	url, err := store.Save(context.Background(), "lobster.png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(context.Background(), url); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.Base(url))); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected file removed, stat err %v", err)
	}
	if err := store.Delete(context.Background(), url); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if err := store.Delete(context.Background(), "/images/../secret.png"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for traversal, got %v", err)
	}
}
