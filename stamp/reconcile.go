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
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/timelinize/takeoutstamp/googlephotos"
	"github.com/timelinize/takeoutstamp/media"
	"go.uber.org/zap"
)

// MetadataCodec reads and writes the capture timestamp embedded in a
// media file. Implementations need not be safe for concurrent use by
// more than one Reconciler worker unless they say so; media.ExifTool is.
type MetadataCodec interface {
	// HasEmbeddedTimestamp returns true if the file already has a
	// capture timestamp. An error means the file could not be read.
	HasEmbeddedTimestamp(path string) (bool, error)

	// WriteEmbeddedTimestamp writes ts (and gps, if not nil) into the
	// file, in place.
	WriteEmbeddedTimestamp(path string, ts time.Time, gps *media.GPS) error
}

// Outcome is how reconciling one record ended.
type Outcome int

const (
	// No timestamp was found for the file; only the copy was made.
	OutcomeNoTimestamp Outcome = iota

	// The timestamp was written into the file.
	OutcomeExifUpdated

	// The file already had a timestamp, or its type cannot hold one;
	// only the modification time was set.
	OutcomeExifSkipped

	// Writing the timestamp failed, so the file and its sidecar were
	// moved to the error area.
	OutcomeExifFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoTimestamp:
		return "no_timestamp"
	case OutcomeExifUpdated:
		return "exif_updated"
	case OutcomeExifSkipped:
		return "exif_skipped"
	case OutcomeExifFailed:
		return "exif_failed"
	}
	return "unknown"
}

// Result is the result of reconciling one record.
type Result struct {
	Record    *MediaRecord
	Outcome   Outcome
	Timestamp time.Time // zero if OutcomeNoTimestamp
	Sidecar   googlephotos.Sidecar

	// Where the file went in the error area, for OutcomeExifFailed.
	ErrorFileName string

	// Why the outcome is not what one would hope for: the write
	// error for OutcomeExifFailed, or a sidecar that could not be
	// read for OutcomeNoTimestamp. Never fatal to the run.
	Err error
}

// Reconciler copies media records into the output directory and
// brings their timestamps in line with their sidecars.
type Reconciler struct {
	// The input file system that records' FSPath and SidecarPath refer to.
	FS fs.FS

	// Where records whose timestamp could not be written go.
	ErrorDir string

	Codec        MetadataCodec
	WriteGeo     bool
	VerifyCopies bool

	Logger *zap.Logger

	// names in ErrorDir; set up on first use if nil
	errorArea *errorArea
	once      sync.Once
}

// Reconcile processes one record all the way through. A non-nil error
// means a copy, move, or modification time update failed, and the run
// should not continue; everything else, including a failed metadata
// write, is reported in the Result. The context is only checked before
// starting; a record is never abandoned halfway.
func (r *Reconciler) Reconcile(ctx context.Context, rec *MediaRecord) (Result, error) {
	result := Result{Record: rec}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	logger := r.Logger.With(
		zap.String("source", rec.SourcePath),
		zap.String("output", rec.OutputFileName))

	// copy
	if err := copyFromFS(r.FS, rec.FSPath, rec.OutputPath, r.VerifyCopies); err != nil {
		return result, err
	}

	// resolve timestamp
	if !rec.SidecarExists {
		logger.Debug("no sidecar; leaving timestamps alone")
		return result, nil
	}
	sc, err := googlephotos.ReadSidecar(r.FS, rec.SidecarPath)
	if err != nil {
		var perr *googlephotos.ParseError
		if errors.As(err, &perr) {
			logger.Warn("malformed sidecar; treating as no timestamp", zap.Error(err))
		} else {
			logger.Error("could not read sidecar; treating as no timestamp", zap.Error(err))
		}
		result.Err = err
		return result, nil
	}
	result.Sidecar = sc
	if !sc.HasTimestamp() {
		logger.Debug("sidecar has no photo taken time", zap.String("sidecar", rec.SidecarPath))
		return result, nil
	}
	result.Timestamp = sc.Timestamp

	// conditional embedded metadata write
	result.Outcome = OutcomeExifSkipped
	if rec.IsSupportedMedia && rec.SupportsEmbeddedMetadata {
		outcome, err := r.writeEmbedded(logger, rec, sc)
		result.Outcome = outcome
		if outcome == OutcomeExifFailed {
			result.Err = err
			errorFile, qErr := r.quarantine(rec)
			result.ErrorFileName = errorFile
			logger.Error("could not write embedded timestamp; moved file to error area",
				zap.String("error_file", errorFile),
				zap.Error(err))
			return result, qErr
		}
	}

	// modification time
	if err := setModTime(rec.OutputPath, sc.Timestamp); err != nil {
		return result, err
	}

	logger.Debug("reconciled",
		zap.Stringer("outcome", result.Outcome),
		zap.Time("timestamp", sc.Timestamp))

	return result, nil
}

// writeEmbedded writes the timestamp into the output file unless it
// already has one. The returned error is only set with OutcomeExifFailed.
func (r *Reconciler) writeEmbedded(logger *zap.Logger, rec *MediaRecord, sc googlephotos.Sidecar) (Outcome, error) {
	has, err := r.Codec.HasEmbeddedTimestamp(rec.OutputPath)
	if err != nil {
		return OutcomeExifFailed, &media.WriteError{Path: rec.OutputPath, Err: err}
	}
	if has {
		logger.Debug("file already has an embedded timestamp; not overwriting")
		return OutcomeExifSkipped, nil
	}

	var gps *media.GPS
	if r.WriteGeo && sc.Geo != nil {
		gps = &media.GPS{
			Latitude:     sc.Geo.Latitude,
			LatitudeRef:  sc.Geo.LatitudeRef,
			Longitude:    sc.Geo.Longitude,
			LongitudeRef: sc.Geo.LongitudeRef,
			Altitude:     sc.Geo.Altitude,
		}
	}
	if err := r.Codec.WriteEmbeddedTimestamp(rec.OutputPath, sc.Timestamp, gps); err != nil {
		return OutcomeExifFailed, err
	}
	logger.Info("wrote embedded timestamp", zap.Time("timestamp", sc.Timestamp), zap.Bool("gps", gps != nil))
	return OutcomeExifUpdated, nil
}

// quarantine moves the output copy of rec into the error area, and copies
// its sidecar there next to it, named so that the two still pair up. It
// returns the name the file got there.
func (r *Reconciler) quarantine(rec *MediaRecord) (string, error) {
	r.once.Do(func() {
		if r.errorArea == nil {
			r.errorArea = new(errorArea)
		}
	})
	fileName, sidecarName := r.errorArea.claimWithSidecar(rec.FileName)
	if err := moveFile(rec.OutputPath, filepath.Join(r.ErrorDir, fileName)); err != nil {
		return fileName, err
	}
	if rec.SidecarExists {
		return fileName, copyFromFS(r.FS, rec.SidecarPath, filepath.Join(r.ErrorDir, sidecarName), r.VerifyCopies)
	}
	return fileName, nil
}
