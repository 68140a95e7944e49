package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSecret(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	return path
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("CAMPUS_TEST_SECRET", "  from-env \n")

	tests := []struct {
		name   string
		src    Source
		expect string
	}{
		{name: "inline", src: Source{Value: " inline "}, expect: "inline"},
		{name: "env over inline", src: Source{Value: "inline", Env: "CAMPUS_TEST_SECRET"}, expect: "from-env"},
		{name: "file over env", src: Source{Value: "inline", Env: "CAMPUS_TEST_SECRET", File: writeSecret(t, "from-file\n")}, expect: "from-file"},
		{name: "unset env falls back to inline", src: Source{Value: "inline", Env: "CAMPUS_TEST_UNSET"}, expect: "inline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      Source
		contains string
	}{
		{name: "nothing configured", src: Source{Name: "redis password"}, contains: "redis password is not configured"},
		{name: "empty file", src: Source{File: writeSecret(t, "  \n")}, contains: "is empty"},
		{name: "missing file", src: Source{File: filepath.Join(t.TempDir(), "absent")}, contains: "reading secret from file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Fatalf("expected error to contain %q, got %q", tt.contains, err.Error())
			}
		})
	}
}

func TestLoadOptional(t *testing.T) {
	got, err := LoadOptional(Source{Name: "redis password", Env: "CAMPUS_TEST_UNSET"})
	if err != nil || got != "" {
		t.Fatalf("expected empty secret without error, got %q, %v", got, err)
	}

	if _, err := LoadOptional(Source{File: filepath.Join(t.TempDir(), "absent")}); err == nil {
		t.Fatalf("expected error for a missing file")
	}

	got, err = LoadOptional(Source{File: writeSecret(t, "s3cret")})
	if err != nil || got != "s3cret" {
		t.Fatalf("expected file secret, got %q, %v", got, err)
	}
}
