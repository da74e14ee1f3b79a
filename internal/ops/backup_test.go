package ops

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBackupAndRestoreRoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	writeFile(t, filepath.Join(srcDir, "taskglance.db"), "sqlite-bytes")
	writeFile(t, filepath.Join(srcDir, "config.yml"), "time_zone: UTC\n")
	writeFile(t, filepath.Join(srcDir, "exports", "glance.json"), `{"display":[]}`)
	writeFile(t, filepath.Join(srcDir, "scratch.tmp"), "should not survive")

	archive := filepath.Join(t.TempDir(), "backups", "taskglance.tar.gz")
	if err := BackupDataDir(srcDir, archive); err != nil {
		t.Fatalf("backup: %v", err)
	}

	restored := t.TempDir()
	if err := RestoreDataDir(archive, restored); err != nil {
		t.Fatalf("restore: %v", err)
	}

	for path, want := range map[string]string{
		"taskglance.db":       "sqlite-bytes",
		"config.yml":          "time_zone: UTC\n",
		"exports/glance.json": `{"display":[]}`,
	} {
		got, err := os.ReadFile(filepath.Join(restored, filepath.FromSlash(path)))
		if err != nil {
			t.Fatalf("read restored %s: %v", path, err)
		}
		if string(got) != want {
			t.Fatalf("restored %s = %q, want %q", path, got, want)
		}
	}

	if _, err := os.Stat(filepath.Join(restored, "scratch.tmp")); !os.IsNotExist(err) {
		t.Fatalf("scratch file must be excluded from the archive")
	}
}

func TestSanitizeArchiveRelPathRejectsTraversal(t *testing.T) {
	for _, name := range []string{"", ".", "..", "../escape.db", "/etc/passwd"} {
		if _, err := sanitizeArchiveRelPath(name); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
	if rel, err := sanitizeArchiveRelPath("exports/glance.json"); err != nil || rel != filepath.FromSlash("exports/glance.json") {
		t.Fatalf("unexpected sanitize result: %q, %v", rel, err)
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
