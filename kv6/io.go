package kv6

import (
	"io"
	"os"
)

// Load reads and decodes a .kv6 file.
func Load(filename string) (*Grid, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Save encodes the grid with zero padding and writes it to filename.
func Save(g *Grid, filename string) error {
	return SaveWithPadding(g, filename, 0)
}

// SaveWithPadding is Save with an explicit reserved-byte value.
func SaveWithPadding(g *Grid, filename string, padding uint8) error {
	return os.WriteFile(filename, EncodeWithPadding(g, padding), 0o644)
}

// Read consumes r to EOF and decodes the result.
func Read(r io.Reader) (*Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Write encodes the grid into w.
func Write(w io.Writer, g *Grid) error {
	_, err := w.Write(Encode(g))
	return err
}
