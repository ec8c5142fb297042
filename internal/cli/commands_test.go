package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dataload-go/dataload/pkg/dataload"
)

func TestScanCmd_ArgsValidation(t *testing.T) {
	err := scanCmd.Args(scanCmd, []string{})
	if err == nil {
		t.Fatal("Expected error for missing args")
	}
	exitCode := dataload.ExitCodeForError(err)
	if exitCode != dataload.ExitUsageError {
		t.Errorf("Expected exit code %d (usage), got %d for: %v", dataload.ExitUsageError, exitCode, err)
	}
	if err := scanCmd.Args(scanCmd, []string{"a", "b"}); err == nil {
		t.Fatal("Expected error for too many args")
	}
}

func TestResolveCmd_ArgsValidation(t *testing.T) {
	if err := resolveCmd.Args(resolveCmd, []string{}); err == nil {
		t.Fatal("Expected error for missing args")
	}
}

func TestScanCmd_NonexistentFile(t *testing.T) {
	err := runScan(scanCmd, []string{"/nonexistent/path/abc123.txt"})
	if err == nil {
		t.Fatal("Expected error for nonexistent file")
	}
}

func TestResolveCmd_NotFound(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tempDir, "go.mod"), []byte("module example.com/tmp\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := resolveCmd.Flags().Set("from", tempDir); err != nil {
		t.Fatal(err)
	}
	defer resolveCmd.Flags().Set("from", "")

	err := runResolve(resolveCmd, []string{"missing.txt"})
	if err == nil {
		t.Fatal("Expected error for unresolvable path")
	}
	exitCode := dataload.ExitCodeForError(err)
	if exitCode != dataload.ExitNotFound {
		t.Errorf("Expected exit code %d (not found), got %d for: %v", dataload.ExitNotFound, exitCode, err)
	}
}

func TestResolveCmd_FindsFile(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tempDir, "go.mod"), []byte("module example.com/tmp\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	dataDir := filepath.Join(tempDir, "test_data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dataDir, "sample.txt")
	if err := os.WriteFile(want, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := resolveCmd.Flags().Set("from", tempDir); err != nil {
		t.Fatal(err)
	}
	defer resolveCmd.Flags().Set("from", "")

	if err := runResolve(resolveCmd, []string{"sample.txt"}); err != nil {
		t.Fatalf("Expected resolution to succeed, got: %v", err)
	}
}

func TestScanCmd_RunsOnFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "lines.txt")
	if err := os.WriteFile(path, []byte("one\ntwo\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runScan(scanCmd, []string{path}); err != nil {
		t.Fatalf("Expected scan to succeed, got: %v", err)
	}
}

func TestPreviewLine(t *testing.T) {
	data := []byte("alpha\r\nbeta\n")
	if got := previewLine(data, 0); got != "alpha" {
		t.Errorf("Expected %q, got %q", "alpha", got)
	}
	if got := previewLine(data, 7); got != "beta" {
		t.Errorf("Expected %q, got %q", "beta", got)
	}
	if got := previewLine(data, 100); got != "" {
		t.Errorf("Expected empty preview past EOF, got %q", got)
	}
	long := []byte(strings.Repeat("x", 200) + "\n")
	if got := previewLine(long, 0); len(got) != scanPreviewLimit+len("...") {
		t.Errorf("Expected truncated preview, got %d bytes", len(got))
	}
}
