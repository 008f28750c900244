package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("TEST_KEY", "")
	t.Setenv("ANOTHER_KEY", "")
	t.Setenv("QUOTED_KEY", "")
	t.Setenv("AFTER_BROKEN", "")

	path := filepath.Join(t.TempDir(), ".env")
	content := "TEST_KEY=test_value\n" +
		"# This is a comment\n" +
		"   \n" +
		"ANOTHER_KEY=another_value\n" +
		"this line is broken\n" +
		"QUOTED_KEY=\"with spaces\"\n" +
		"AFTER_BROKEN=still_loaded\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}

	want := map[string]string{
		"TEST_KEY":     "test_value",
		"ANOTHER_KEY":  "another_value",
		"QUOTED_KEY":   "with spaces",
		"AFTER_BROKEN": "still_loaded",
	}
	for k, v := range want {
		if got := os.Getenv(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestLoadEnvFile_Overrides(t *testing.T) {
	t.Setenv("TEST_KEY", "old")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TEST_KEY=new\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv("TEST_KEY"); got != "new" {
		t.Errorf("TEST_KEY = %q, want new", got)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "nonexistent")); err != nil {
		t.Errorf("LoadEnvFile() error = %v, want nil", err)
	}
}
