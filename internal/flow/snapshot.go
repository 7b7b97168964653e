package flow

import (
	"encoding/gob"
	"fmt"
	"os"
)

// SaveGrid writes g to path in gob encoding.
func SaveGrid(path string, g *Grid) error {
	if err := g.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(g); err != nil {
		f.Close()
		return fmt.Errorf("encoding flow grid: %w", err)
	}
	return f.Close()
}

// LoadGrid reads a grid written by SaveGrid and validates it.
func LoadGrid(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var g Grid
	if err := gob.NewDecoder(f).Decode(&g); err != nil {
		return nil, fmt.Errorf("decoding flow grid %s: %w", path, err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("flow grid %s: %w", path, err)
	}
	return &g, nil
}
