package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalFileSystem(t *testing.T) {
	fs := NewLocalFileSystem()
	tempDir := t.TempDir()

	testFile := filepath.Join(tempDir, "test.txt")
	content := []byte("Hello, World!")
	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatal(err)
	}

	// Test ReadFile
	readContent, err := fs.ReadFile(testFile)
	if err != nil {
		t.Errorf("ReadFile failed: %v", err)
	}
	if string(readContent) != string(content) {
		t.Errorf("Expected %s, got %s", content, readContent)
	}

	// Test IsDirectory
	isDir, err := fs.IsDirectory(tempDir)
	if err != nil {
		t.Errorf("IsDirectory failed: %v", err)
	}
	if !isDir {
		t.Error("Should be a directory")
	}

	isDir, err = fs.IsDirectory(testFile)
	if err != nil {
		t.Errorf("IsDirectory failed: %v", err)
	}
	if isDir {
		t.Error("File should not be a directory")
	}

	// Test GetAbsolutePath
	absPath, err := fs.GetAbsolutePath(testFile)
	if err != nil {
		t.Errorf("GetAbsolutePath failed: %v", err)
	}
	if !filepath.IsAbs(absPath) {
		t.Error("Path should be absolute")
	}
}

func TestReadFileErrors(t *testing.T) {
	fs := NewLocalFileSystem()
	tempDir := t.TempDir()

	_, err := fs.ReadFile(filepath.Join(tempDir, "missing.txt"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}

	_, err = fs.ReadFile(tempDir)
	if !errors.Is(err, ErrNotAFile) {
		t.Errorf("Expected ErrNotAFile, got %v", err)
	}

	_, err = fs.ReadFile("")
	if !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath, got %v", err)
	}
}

func TestEnsureDirectory(t *testing.T) {
	fs := NewLocalFileSystem()
	tempDir := t.TempDir()

	if err := EnsureDirectory(fs, tempDir); err != nil {
		t.Errorf("EnsureDirectory failed: %v", err)
	}

	err := EnsureDirectory(fs, filepath.Join(tempDir, "nope"))
	if !errors.Is(err, ErrDirectoryNotFound) {
		t.Errorf("Expected ErrDirectoryNotFound, got %v", err)
	}
}
