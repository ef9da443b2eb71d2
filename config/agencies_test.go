package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agencies.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAgencies(t *testing.T) {
	path := writeTempYAML(t, `
agencies:
  - name: Pararius
    type: pararius
    url: https://www.pararius.nl/huurwoningen/leusden/
  - name: VBT Verhuurmakelaars
    type: vbt
    url: https://vbtverhuurmakelaars.nl/woningen
`)

	agencies, err := LoadAgencies(path)
	if err != nil {
		t.Fatalf("LoadAgencies: %v", err)
	}
	if len(agencies) != 2 {
		t.Fatalf("got %d agencies, want 2", len(agencies))
	}
	if agencies[0].Name != "Pararius" || agencies[0].Type != "pararius" {
		t.Errorf("unexpected first agency: %+v", agencies[0])
	}
	if agencies[1].URL != "https://vbtverhuurmakelaars.nl/woningen" {
		t.Errorf("unexpected URL: %s", agencies[1].URL)
	}
}

func TestLoadAgenciesMissingFields(t *testing.T) {
	path := writeTempYAML(t, `
agencies:
  - name: Nameless
`)

	if _, err := LoadAgencies(path); err == nil {
		t.Error("expected error for entry without type")
	}
}

func TestLoadAgenciesMissingFile(t *testing.T) {
	if _, err := LoadAgencies("/nonexistent/agencies.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
