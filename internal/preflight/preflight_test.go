package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"assetpack/internal/config"
	"assetpack/internal/services"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	result := CheckDirectoryAccess("Library root", dir)
	if !result.Passed {
		t.Fatalf("writable dir failed: %s", result.Detail)
	}

	result = CheckDirectoryAccess("Library root", filepath.Join(dir, "missing"))
	if result.Passed {
		t.Fatal("missing dir passed")
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result = CheckDirectoryAccess("Library root", file)
	if result.Passed {
		t.Fatal("regular file passed directory check")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()

	if result := CheckFreeSpace("space", dir, 0); !result.Passed {
		t.Fatalf("zero floor failed: %s", result.Detail)
	}
	// No filesystem has an exbibyte free.
	if result := CheckFreeSpace("space", dir, 1<<30); result.Passed {
		t.Fatal("absurd floor passed")
	}
}

func TestVerifyGatesOnFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryRoot = filepath.Join(dir, "library")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Materialize.MinFreeGiB = 0

	err := Verify(context.Background(), &cfg)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("missing dirs err = %v", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	if err := Verify(context.Background(), &cfg); err != nil {
		t.Fatalf("verify after ensure: %v", err)
	}
}
