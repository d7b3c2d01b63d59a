/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package global

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("write new file", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "config.json")
		content := []byte(`{"api_key":"pk_test_1234567890"}`)

		if err := AtomicWrite(filePath, content, 0600); err != nil {
			t.Fatalf("AtomicWrite() error = %v", err)
		}

		data, err := os.ReadFile(filePath)
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		if string(data) != string(content) {
			t.Errorf("File content = %q, want %q", string(data), string(content))
		}

		info, err := os.Stat(filePath)
		if err != nil {
			t.Fatalf("Failed to stat file: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("File mode = %v, want 0600", info.Mode().Perm())
		}
	})

	t.Run("overwrite existing file", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "existing.json")
		if err := os.WriteFile(filePath, []byte("old content"), 0644); err != nil {
			t.Fatalf("Failed to create initial file: %v", err)
		}

		if err := AtomicWrite(filePath, []byte("new content"), 0644); err != nil {
			t.Fatalf("AtomicWrite() error = %v", err)
		}

		data, err := os.ReadFile(filePath)
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		if string(data) != "new content" {
			t.Errorf("File content = %q, want %q", string(data), "new content")
		}
	})

	t.Run("create nested directories", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "a", "b", "clickup-mcp", "config.json")

		if err := AtomicWrite(filePath, []byte("nested"), 0600); err != nil {
			t.Fatalf("AtomicWrite() error = %v", err)
		}
		if !FileExists(filePath) {
			t.Error("File was not created in nested directory")
		}
	})

	t.Run("no temp file left on success", func(t *testing.T) {
		dir := filepath.Join(tmpDir, "clean")
		filePath := filepath.Join(dir, "config.json")

		if err := AtomicWrite(filePath, []byte("content"), 0600); err != nil {
			t.Fatalf("AtomicWrite() error = %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("Failed to read dir: %v", err)
		}
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".tmp") {
				t.Errorf("Temp file %s should not exist after successful write", e.Name())
			}
		}
	})
}

func TestIsValidUTF8File(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("valid UTF-8 file", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "notes.md")
		if err := os.WriteFile(filePath, []byte("# Release notes 世界"), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
		if err := IsValidUTF8File(filePath); err != nil {
			t.Errorf("IsValidUTF8File() error = %v, want nil", err)
		}
	})

	t.Run("invalid UTF-8 file", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "binary.md")
		if err := os.WriteFile(filePath, []byte{0xFF, 0xFE, 0x00, 0x01}, 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
		if err := IsValidUTF8File(filePath); err == nil {
			t.Error("IsValidUTF8File() expected error for invalid UTF-8, got nil")
		}
	})

	t.Run("non-existent file", func(t *testing.T) {
		if err := IsValidUTF8File(filepath.Join(tmpDir, "missing.md")); err == nil {
			t.Error("IsValidUTF8File() expected error for non-existent file, got nil")
		}
	})
}

func TestFileAndDirExists(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "exists.txt")
	if err := os.WriteFile(filePath, []byte("content"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	if !FileExists(filePath) {
		t.Error("FileExists() = false, want true for existing file")
	}
	if FileExists(filepath.Join(tmpDir, "missing.txt")) {
		t.Error("FileExists() = true, want false for missing file")
	}
	if FileExists(tmpDir) {
		t.Error("FileExists() = true, want false for directory")
	}
	if !DirExists(tmpDir) {
		t.Error("DirExists() = false, want true for directory")
	}
	if DirExists(filePath) {
		t.Error("DirExists() = true, want false for file")
	}
}
