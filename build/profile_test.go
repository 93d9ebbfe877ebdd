package build

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skein.toml")
	src := "rows = 4\ncols = 6\nram_top = 47\n"

	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatal(err)
	}

	if p.Rows != 4 || p.Cols != 6 || p.RAMTop != 47 {
		t.Errorf("loaded %+v; want rows=4 cols=6 ram_top=47", *p)
	}

	// Unset keys keep their stock values.
	if p.FieldBase != 0x20 {
		t.Errorf("field_base = %#x; want stock %#x", p.FieldBase, 0x20)
	}
}

func TestLoadProfileRejectsBadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skein.toml")
	if err := os.WriteFile(path, []byte("ram_top = 10\nfield_base = 20\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadProfile(path); err == nil {
		t.Error("a field base above RAM top should be rejected")
	}
}
