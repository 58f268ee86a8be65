package session

import (
	"os"
	"testing"

	"github.com/bananasjim/rdc-cli/internal/config"
)

func TestWriteThenLoadRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	d := &Descriptor{PID: os.Getpid(), Host: "127.0.0.1", Port: 4000, Token: "abc", Capture: "/tmp/x.rdc", OpenedAt: Now()}
	if err := Write("default", d); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load("default")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *d {
		t.Errorf("Load() = %+v, want %+v", got, d)
	}
}

func TestWriteEnforcesFileAndDirModes(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	d := &Descriptor{PID: os.Getpid(), Host: "127.0.0.1", Port: 1, Token: "tok"}
	if err := Write("s1", d); err != nil {
		t.Fatalf("Write: %v", err)
	}

	dir, err := config.SessionsDir()
	if err != nil {
		t.Fatalf("SessionsDir: %v", err)
	}
	dirInfo, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if dirInfo.Mode().Perm() != 0700 {
		t.Errorf("sessions dir mode = %o, want 0700", dirInfo.Mode().Perm())
	}

	path, err := Path("s1")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	fileInfo, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat file: %v", err)
	}
	if fileInfo.Mode().Perm() != 0600 {
		t.Errorf("descriptor file mode = %o, want 0600", fileInfo.Mode().Perm())
	}
}

func TestUpdateCurrentEIDRewritesOnlyThatField(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	d := &Descriptor{PID: os.Getpid(), Host: "127.0.0.1", Port: 99, Token: "tok", Capture: "/tmp/a.rdc"}
	if err := Write("s2", d); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := UpdateCurrentEID("s2", 42); err != nil {
		t.Fatalf("UpdateCurrentEID: %v", err)
	}
	got, err := Load("s2")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.CurrentEID != 42 {
		t.Errorf("CurrentEID = %d, want 42", got.CurrentEID)
	}
	if got.Port != 99 || got.Capture != "/tmp/a.rdc" {
		t.Errorf("unrelated fields changed: %+v", got)
	}
}

func TestRemoveIsNotAnErrorWhenMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := Remove("never-existed"); err != nil {
		t.Errorf("Remove on a missing descriptor should not error, got %v", err)
	}
}

func TestIsProcessAliveForCurrentProcess(t *testing.T) {
	if !IsProcessAlive(os.Getpid()) {
		t.Error("the running test process should be reported alive")
	}
}

func TestIsProcessAliveRejectsNonPositivePID(t *testing.T) {
	if IsProcessAlive(0) || IsProcessAlive(-1) {
		t.Error("pid <= 0 should never be reported alive")
	}
}

func TestGenerateTokenIsUniqueAndHexEncoded(t *testing.T) {
	a, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	b, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if a == b {
		t.Error("two generated tokens should not collide")
	}
	if len(a) != 64 {
		t.Errorf("token length = %d, want 64 hex chars for a 32-byte token", len(a))
	}
}

func TestDescriptorAliveReflectsStalePID(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	// A pid unlikely to be in use; IsProcessAlive should report it dead.
	d := &Descriptor{PID: 1 << 30}
	if d.Alive() {
		t.Error("an implausible pid should not be reported alive")
	}
}
