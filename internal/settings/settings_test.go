package settings

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestADSAPIKeyRoundtrip(t *testing.T) {
	store := NewStore(t.TempDir())

	key, err := store.ADSAPIKey()
	if err != nil {
		t.Fatalf("ADSAPIKey: %v", err)
	}
	if key != "" {
		t.Errorf("expected empty key before set, got %q", key)
	}

	if err := store.SetADSAPIKey("abcdef1234567890"); err != nil {
		t.Fatalf("SetADSAPIKey: %v", err)
	}
	key, err = store.ADSAPIKey()
	if err != nil {
		t.Fatalf("ADSAPIKey: %v", err)
	}
	if key != "abcdef1234567890" {
		t.Errorf("key = %q, want roundtripped value", key)
	}

	configured, err := store.HasADSAPIKey()
	if err != nil {
		t.Fatalf("HasADSAPIKey: %v", err)
	}
	if !configured {
		t.Error("expected key to be configured")
	}
}

func TestSetADSAPIKeyEmptyClears(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.SetADSAPIKey("abcdef1234567890"); err != nil {
		t.Fatalf("SetADSAPIKey: %v", err)
	}
	if err := store.SetADSAPIKey(""); err != nil {
		t.Fatalf("SetADSAPIKey(\"\"): %v", err)
	}
	configured, err := store.HasADSAPIKey()
	if err != nil {
		t.Fatalf("HasADSAPIKey: %v", err)
	}
	if configured {
		t.Error("expected key to be cleared")
	}
}

func TestKeyStoredEncrypted(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := store.SetADSAPIKey("supersecretvalue"); err != nil {
		t.Fatalf("SetADSAPIKey: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	if err != nil {
		t.Fatalf("reading settings file: %v", err)
	}
	if string(raw) == "" {
		t.Fatal("settings file is empty")
	}
	for i := 0; i+len("supersecret") <= len(raw); i++ {
		if string(raw[i:i+len("supersecret")]) == "supersecret" {
			t.Fatal("plaintext key found in settings file")
		}
	}
}

func TestEncryptionKeyPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes not enforced on windows")
	}
	dir := t.TempDir()
	store := NewStore(dir)
	if err := store.SetADSAPIKey("abcdef1234567890"); err != nil {
		t.Fatalf("SetADSAPIKey: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, ".encryption_key"))
	if err != nil {
		t.Fatalf("stat key file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("key file mode = %o, want 0600", perm)
	}
}

func TestReplacedKeyFileYieldsNoKey(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := store.SetADSAPIKey("abcdef1234567890"); err != nil {
		t.Fatalf("SetADSAPIKey: %v", err)
	}

	// Simulate a new machine key; the old ciphertext becomes unreadable.
	fresh := make([]byte, 32)
	if err := os.WriteFile(filepath.Join(dir, ".encryption_key"), fresh, 0o600); err != nil {
		t.Fatalf("replacing key file: %v", err)
	}

	if _, err := store.ADSAPIKey(); err != ErrCorruptValue {
		t.Errorf("ADSAPIKey err = %v, want ErrCorruptValue", err)
	}
	configured, err := store.HasADSAPIKey()
	if err != nil {
		t.Fatalf("HasADSAPIKey: %v", err)
	}
	if configured {
		t.Error("expected unreadable key to report not configured")
	}
}

func TestGenericSettings(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Set("theme", "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get("theme")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "dark" {
		t.Errorf("Get = %q, want dark", got)
	}

	if err := store.Delete("theme"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = store.Get("theme")
	if err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if got != "" {
		t.Errorf("Get after delete = %q, want empty", got)
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abcdef1234567890", "****7890"},
		{"abc", "****"},
		{"", "****"},
	}
	for _, tt := range tests {
		if got := MaskKey(tt.in); got != tt.want {
			t.Errorf("MaskKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
