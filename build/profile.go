package build

import (
	"fmt"

	"github.com/pelletier/go-toml"
)

// Profile describes the target machine: the grid dimensions and the RAM
// layout of each node.  Profiles are loaded from a `skein.toml` next to the
// source; absent a file the stock machine is assumed.
type Profile struct {
	// Rows and Cols are the grid dimensions.  Node coordinates encode
	// row*100+col.
	Rows int `toml:"rows"`
	Cols int `toml:"cols"`

	// RAMTop is the highest RAM cell of a node; variables pack downward from
	// it.
	RAMTop int `toml:"ram_top"`

	// FieldBase is the lowest cell of the constructor field-block region,
	// which grows upward toward the variables.
	FieldBase int `toml:"field_base"`
}

// DefaultProfile returns the stock machine: an 8x18 grid of nodes with 64
// words of RAM each, split evenly between code-visible variables and field
// blocks.
func DefaultProfile() *Profile {
	return &Profile{Rows: 8, Cols: 18, RAMTop: 0x3F, FieldBase: 0x20}
}

// LoadProfile reads a machine profile from a TOML file.  Keys not present
// keep their stock values.
func LoadProfile(path string) (*Profile, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, err
	}

	p := DefaultProfile()
	if err := tree.Unmarshal(p); err != nil {
		return nil, err
	}

	return p, p.validate()
}

func (p *Profile) validate() error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return fmt.Errorf("invalid grid size %dx%d", p.Rows, p.Cols)
	}

	if p.Cols > 100 {
		return fmt.Errorf("grid cannot be wider than 100 columns: coordinates encode row*100+col")
	}

	if p.FieldBase < 0 || p.FieldBase > p.RAMTop {
		return fmt.Errorf("field base %#x is not below RAM top %#x", p.FieldBase, p.RAMTop)
	}

	return nil
}
