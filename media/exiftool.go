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

package media

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/barasher/go-exiftool"
	"go.uber.org/zap"
)

// WriteError is returned when a timestamp could not be written into a file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing embedded metadata to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// GPS is a location to write into the EXIF GPS tags. Latitude and
// Longitude are magnitudes; the refs carry the hemisphere.
type GPS struct {
	Latitude     float64
	LatitudeRef  string
	Longitude    float64
	LongitudeRef string
	Altitude     float64
}

// ExifTool reads and writes embedded metadata. Reads are attempted natively
// first; exiftool is only consulted when that finds nothing, and for writes.
// The exiftool process is started on first use and reused after that. An
// ExifTool is safe for concurrent use, but calls into the exiftool process
// are serialized.
type ExifTool struct {
	BinaryPath string // optional; otherwise exiftool is found in PATH

	log *zap.Logger

	mu sync.Mutex
	et *exiftool.Exiftool
}

// NewExifTool returns a new ExifTool that logs to logger.
func NewExifTool(logger *zap.Logger, binaryPath string) *ExifTool {
	return &ExifTool{
		BinaryPath: binaryPath,
		log:        logger,
	}
}

// Start launches the exiftool process if it is not already running. It is
// not necessary to call Start, but doing so reports a missing exiftool early.
func (e *ExifTool) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.ensureExifTool()
	return err
}

// ensureExifTool must be called with the lock held.
func (e *ExifTool) ensureExifTool() (*exiftool.Exiftool, error) {
	if e.et != nil {
		return e.et, nil
	}
	var opts []func(*exiftool.Exiftool) error
	if e.BinaryPath != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(e.BinaryPath))
	}
	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		return nil, fmt.Errorf("starting exiftool: %w", err)
	}
	e.et = et
	return et, nil
}

// Close stops the exiftool process if it was started.
func (e *ExifTool) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.et == nil {
		return nil
	}
	err := e.et.Close()
	e.et = nil
	return err
}

// HasEmbeddedTimestamp returns true if the file at path already has a
// DateTimeOriginal value, in EXIF or XMP. Other dates in the file, like a
// QuickTime creation time, don't count.
func (e *ExifTool) HasEmbeddedTimestamp(path string) (bool, error) {
	emb, err := EmbeddedTimestamp(e.log, path)
	if err != nil {
		return false, err
	}
	if emb.Found {
		e.log.Debug("found embedded timestamp",
			zap.String("filepath", path),
			zap.String("source", emb.Source),
			zap.Time("timestamp", emb.Time))
		return true, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	et, err := e.ensureExifTool()
	if err != nil {
		return false, err
	}
	fileInfos := et.ExtractMetadata(path)
	if len(fileInfos) == 0 {
		return false, fmt.Errorf("exiftool returned no metadata for %s", path)
	}
	if fileInfos[0].Err != nil {
		return false, fmt.Errorf("reading metadata of %s: %w", path, fileInfos[0].Err)
	}
	val, err := fileInfos[0].GetString(tagDateTimeOriginal)
	if err != nil {
		if errors.Is(err, exiftool.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s of %s: %w", tagDateTimeOriginal, path, err)
	}
	return validExifDate(val), nil
}

// WriteEmbeddedTimestamp writes ts as the capture timestamp of the file at
// path, and the location if gps is not nil. The file is modified in place.
// Any failure is a *WriteError.
func (e *ExifTool) WriteEmbeddedTimestamp(path string, ts time.Time, gps *GPS) error {
	fm := exiftool.EmptyFileMetadata()
	fm.File = path
	fm.SetString(tagDateTimeOriginal, ts.UTC().Format(exifDateLayout))
	if gps != nil {
		fm.SetFloat("GPSLatitude", gps.Latitude)
		fm.SetString("GPSLatitudeRef", gps.LatitudeRef)
		fm.SetFloat("GPSLongitude", gps.Longitude)
		fm.SetString("GPSLongitudeRef", gps.LongitudeRef)
		if gps.Altitude != 0 {
			fm.SetFloat("GPSAltitude", math.Abs(gps.Altitude))
			if gps.Altitude < 0 {
				fm.SetString("GPSAltitudeRef", "Below Sea Level")
			} else {
				fm.SetString("GPSAltitudeRef", "Above Sea Level")
			}
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	et, err := e.ensureExifTool()
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	fms := []exiftool.FileMetadata{fm}
	et.WriteMetadata(fms)
	if fms[0].Err != nil {
		return &WriteError{Path: path, Err: fms[0].Err}
	}
	return nil
}

const tagDateTimeOriginal = "DateTimeOriginal"
