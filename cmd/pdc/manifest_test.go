package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindPdTomlWalksParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := filepath.Join(root, "pd.toml")
	if err := os.WriteFile(manifest, []byte("[package]\nname = \"demo\"\n[build]\nmain = \"main.pd\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, ok, err := findPdToml(nested)
	if err != nil {
		t.Fatalf("findPdToml: %v", err)
	}
	if !ok || found != manifest {
		t.Fatalf("found = %q ok = %v, want %q", found, ok, manifest)
	}
}

func TestLoadProjectConfigValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pd.toml")

	cases := []struct {
		name string
		body string
		ok   bool
	}{
		{"complete", "[package]\nname = \"demo\"\n[build]\nmain = \"main.pd\"\noutput = \"out.c\"\n", true},
		{"missing package", "[build]\nmain = \"main.pd\"\n", false},
		{"missing main", "[package]\nname = \"demo\"\n", false},
		{"empty name", "[package]\nname = \"\"\n[build]\nmain = \"main.pd\"\n", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatal(err)
			}
			cfg, err := loadProjectConfig(path)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("want error, got config %+v", cfg)
			}
		})
	}
}
