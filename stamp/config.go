/*
	Timelinize
	Copyright (c) 2013 Matthew Holt

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU Affero General Public License as published
	by the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU Affero General Public License for more details.

	You should have received a copy of the GNU Affero General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package stamp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/timelinize/takeoutstamp/media"
)

// Config describes a run.
type Config struct {
	// The extracted Takeout directory, or a Takeout archive file.
	InputDir string `json:"input_dir,omitempty"`

	// Where processed media files are written. Must be absent or empty.
	OutputDir string `json:"output_dir,omitempty"`

	// Where files that could not be fully processed are placed for
	// manual inspection. Must be absent or empty.
	ErrorDir string `json:"error_dir,omitempty"`

	// The supported media types. If empty, media.DefaultTypes() is used.
	MediaTypes []media.Type `json:"media_types,omitempty"`

	// How many files to reconcile at once. 1 processes strictly in
	// order. Output names are always assigned in order regardless.
	Workers int `json:"workers,omitempty"`

	// Also write the sidecar's location into GPS tags when writing
	// the embedded timestamp.
	WriteGeo bool `json:"write_geo,omitempty"`

	// Hash every copy and compare it to its source.
	VerifyCopies bool `json:"verify_copies,omitempty"`

	// Path to the exiftool executable; found in PATH if empty.
	ExiftoolPath string `json:"exiftool_path,omitempty"`

	// Enable debug logging.
	Verbose bool `json:"verbose,omitempty"`
}

// LoadConfig loads the JSON config file at filename. If filename is
// empty, the default config file is used, and it is not an error if
// the default file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		filename = DefaultConfigFilePath()
	}
	cfgBytes, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && filename == DefaultConfigFilePath() {
			return new(Config), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := new(Config)
	if err := json.Unmarshal(cfgBytes, cfg); err != nil {
		return nil, fmt.Errorf("decoding config file %s: %w", filename, err)
	}
	return cfg, nil
}

// DefaultConfigFilePath returns the path of the config file
// that is used if none is specified.
func DefaultConfigFilePath() string {
	cfgDir, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(cfgDir, "takeoutstamp", "config.json")
	}
	cfgDir, err = os.UserHomeDir()
	if err == nil {
		return filepath.Join(cfgDir, ".takeoutstamp", "config.json")
	}
	return filepath.Join(".takeoutstamp", "config.json")
}

func (cfg *Config) fillDefaults() {
	if len(cfg.MediaTypes) == 0 {
		cfg.MediaTypes = media.DefaultTypes()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if maxWorkers := runtime.NumCPU() * 4; cfg.Workers > maxWorkers {
		cfg.Workers = maxWorkers
	}
}

// validate checks the directory settings. It does not touch the file system.
func (cfg *Config) validate() error {
	if cfg.InputDir == "" {
		return fmt.Errorf("%w: an input directory is required", ErrPrecondition)
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("%w: an output directory is required", ErrPrecondition)
	}
	if cfg.ErrorDir == "" {
		return fmt.Errorf("%w: an error directory is required", ErrPrecondition)
	}
	outAbs, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrecondition, err)
	}
	errAbs, err := filepath.Abs(cfg.ErrorDir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrecondition, err)
	}
	if outAbs == errAbs {
		return fmt.Errorf("%w: output and error directories must be different", ErrPrecondition)
	}
	return nil
}
