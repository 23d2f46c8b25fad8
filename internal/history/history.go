// Package history remembers the most recent pick across invocations.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/1broseidon/loupe/internal/pixel"
	"github.com/1broseidon/loupe/internal/runtimepath"
)

// ErrNoPick is returned when nothing has been picked yet.
var ErrNoPick = errors.New("no color has been picked yet")

// Record is one completed pick.
type Record struct {
	Hex      string    `json:"hex"`
	X        int       `json:"x"`
	Y        int       `json:"y"`
	PickedAt time.Time `json:"picked_at"`
}

// NewRecord builds a record for color picked at (x, y).
func NewRecord(color pixel.Pixel, x, y int, at time.Time) Record {
	return Record{Hex: color.Hex(), X: x, Y: y, PickedAt: at.UTC()}
}

// Color parses the stored hex value.
func (r Record) Color() (pixel.Pixel, error) {
	return pixel.ParseHex(r.Hex)
}

// Save writes rec to path, replacing any previous record.
func Save(path string, rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode last pick: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write last pick: %w", err)
	}
	return nil
}

// Load reads the record at path. A missing file yields ErrNoPick.
func Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, ErrNoPick
		}
		return Record{}, fmt.Errorf("failed to read last pick: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to parse last pick: %w", err)
	}
	if _, err := rec.Color(); err != nil {
		return Record{}, fmt.Errorf("failed to parse last pick: %w", err)
	}
	return rec, nil
}

// SaveLast stores rec in the runtime directory.
func SaveLast(rec Record) error {
	path, err := runtimepath.LastPickPath()
	if err != nil {
		return err
	}
	return Save(path, rec)
}

// LoadLast reads the record from the runtime directory.
func LoadLast() (Record, error) {
	path, err := runtimepath.LastPickPath()
	if err != nil {
		return Record{}, err
	}
	return Load(path)
}
