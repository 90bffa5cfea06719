// Package anchors isolates every positional and textual assumption made about
// Mod Archive pages: the anchor line offsets of a module detail page and the
// markers used to recognise page types and badges.
package anchors

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/billmal071/trackermeta/internal/logger"
)

// NominationShift is how many lines the nomination badge pushes every anchor down
const NominationShift = 6

// Compiled-in anchor lines of a module detail page, 1-based.
const (
	DefaultFilenameLine = 156
	DefaultInfoLine     = 171
	DefaultDownloadLine = 186
)

var (
	// ErrOverrideMissing means no override file exists at the given path
	ErrOverrideMissing = errors.New("line override file not found")
	// ErrOverrideMalformed means the override file exists but could not be used
	ErrOverrideMalformed = errors.New("malformed line override file")
)

// Offsets holds the 1-based line numbers of the three anchors in a detail page
type Offsets struct {
	Filename int
	Info     int
	Download int
}

// Default returns the compiled-in offsets
func Default() Offsets {
	return Offsets{
		Filename: DefaultFilenameLine,
		Info:     DefaultInfoLine,
		Download: DefaultDownloadLine,
	}
}

// Shift returns a copy with every offset moved down by n lines
func (o Offsets) Shift(n int) Offsets {
	return Offsets{
		Filename: o.Filename + n,
		Info:     o.Info + n,
		Download: o.Download + n,
	}
}

// Validate checks that every offset is a positive line number
func (o Offsets) Validate() error {
	if o.Filename < 1 || o.Info < 1 || o.Download < 1 {
		return fmt.Errorf("offsets must be positive, got %s", o)
	}
	return nil
}

func (o Offsets) String() string {
	return fmt.Sprintf("%d,%d,%d", o.Filename, o.Info, o.Download)
}

// ParseOffsets parses one header-less CSV record of three line numbers
func ParseOffsets(r io.Reader) (Offsets, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	records, err := reader.ReadAll()
	if err != nil {
		return Offsets{}, fmt.Errorf("%w: %v", ErrOverrideMalformed, err)
	}
	if len(records) != 1 {
		return Offsets{}, fmt.Errorf("%w: expected exactly one record, found %d", ErrOverrideMalformed, len(records))
	}

	var values [3]int
	for i, field := range records[0] {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return Offsets{}, fmt.Errorf("%w: field %d: %v", ErrOverrideMalformed, i+1, err)
		}
		values[i] = n
	}

	o := Offsets{Filename: values[0], Info: values[1], Download: values[2]}
	if err := o.Validate(); err != nil {
		return Offsets{}, fmt.Errorf("%w: %v", ErrOverrideMalformed, err)
	}
	return o, nil
}

// LoadOverride reads the override file at path
func LoadOverride(path string) (Offsets, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Offsets{}, fmt.Errorf("%w: %s", ErrOverrideMissing, path)
	}
	if err != nil {
		return Offsets{}, fmt.Errorf("%w: %v", ErrOverrideMalformed, err)
	}
	defer f.Close()

	return ParseOffsets(f)
}

// LoadOrDefault returns the override at path, or the compiled-in offsets when
// the file is absent, unreadable or malformed. It never fails.
func LoadOrDefault(path string, log logger.Logger) Offsets {
	if log == nil {
		log = logger.NewNop()
	}
	if path == "" {
		return Default()
	}

	o, err := LoadOverride(path)
	switch {
	case err == nil:
		log.Debug("Using line override", logger.String("path", path), logger.String("offsets", o.String()))
		return o
	case errors.Is(err, ErrOverrideMissing):
		log.Debug("No line override, using defaults", logger.String("path", path))
	default:
		log.Warn("Ignoring line override", logger.String("path", path), logger.Error(err))
	}
	return Default()
}

// SaveOverride writes o as the override file at path
func SaveOverride(path string, o Offsets) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{strconv.Itoa(o.Filename), strconv.Itoa(o.Info), strconv.Itoa(o.Download)}); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// RemoveOverride deletes the override file, reverting to the defaults
func RemoveOverride(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
