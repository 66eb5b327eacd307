package dataset

import (
	"encoding/binary"
	"fmt"
	"os"
)

// ReadRaw loads a volume from a headerless little-endian float64 file. The
// caller supplies the extent; the file length must match it exactly.
func ReadRaw(path string, dims [3]int, spacing [3]float64) (*Volume, error) {
	if err := CheckDims(dims); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raw volume: %w", err)
	}
	defer f.Close()

	v := NewVolume(dims)
	v.Spacing = spacing
	if err := binary.Read(f, binary.LittleEndian, v.Scalars); err != nil {
		return nil, fmt.Errorf("read raw volume %s: %w", path, err)
	}

	// Trailing data means the declared dims are wrong for this file.
	var extra [1]byte
	if n, _ := f.Read(extra[:]); n != 0 {
		return nil, fmt.Errorf("raw volume %s is larger than dims %v", path, dims)
	}
	return v, nil
}

// WriteRaw stores a volume's scalars as little-endian float64 with no header.
func WriteRaw(path string, v *Volume) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create raw volume: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, v.Scalars); err != nil {
		return fmt.Errorf("write raw volume %s: %w", path, err)
	}
	return f.Close()
}
