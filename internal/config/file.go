package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// On-disk configuration document.
//
// Every field is optional. Empty strings and a nil creation mode mean the
// value is absent and a lower-priority source should be consulted.
//
//	[directories]
//	create_directories = "recursive"
//	runtime = "/run/melia"
//
//	[listen]
//	addresses = ["http://127.0.0.1:8080", "unix:control?mode=0660"]
type File struct {
	Directories FileDirectories `toml:"directories"`
	Listen      FileListen      `toml:"listen"`
}

type FileDirectories struct {
	CreateDirectories *DirectoryCreation `toml:"create_directories"`
	Runtime           string             `toml:"runtime"`
	State             string             `toml:"state"`
	Cache             string             `toml:"cache"`
	Logs              string             `toml:"logs"`
	Configuration     string             `toml:"configuration"`
}

type FileListen struct {
	Addresses []string `toml:"addresses"`
}

// Reads and decodes the configuration file at path.
//
// Unknown keys are rejected so that typos surface at startup instead of being
// silently ignored.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(path, ErrAccess, err)
	}
	f, err := decodeFile(data)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return f, nil
}

func decodeFile(data []byte) (*File, error) {
	var f File
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%w: line %d, column %d: %w", ErrMalformedDocument, row, col, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return &f, nil
}
