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
	"fmt"
	"io"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Summary is the tally of a run. Its counters are updated concurrently
// while records are reconciled; read them only after the run returns.
type Summary struct {
	mu sync.Mutex

	RunID string

	// Every file found in the input, sidecars included.
	TotalFiles int

	// How many files were found with each extension, in the order the
	// extensions were first seen; sidecars are counted under ".json".
	Extensions []ExtensionCount

	MediaFiles       int // supported media files
	Sidecars         int // JSON files
	MissingSidecars  int // supported media files without a sidecar
	Unsupported      int // non-JSON files of unsupported types
	OrphanSidecars   int // item sidecars that no file claimed
	MotionCompanions int // videos that belong to a still photo

	Processed       int // records reconciled
	NoTimestamp     int
	EmbeddedUpdated int
	EmbeddedSkipped int
	EmbeddedFailed  int
	PartnerShared   int
	RoutedToError   int // files placed in the error area, not counting sidecars that went along

	// Output names of files whose embedded timestamp was written,
	// in record order.
	EditedFiles []string

	edited []editedFile
}

// ExtensionCount is one line of the per-extension report.
type ExtensionCount struct {
	Extension string // normalized
	Count     int
	Supported bool
}

type editedFile struct {
	index int
	name  string
}

// addResult tallies the result of reconciling one record.
func (s *Summary) addResult(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Processed++
	switch res.Outcome {
	case OutcomeNoTimestamp:
		s.NoTimestamp++
	case OutcomeExifUpdated:
		s.EmbeddedUpdated++
		s.edited = append(s.edited, editedFile{res.Record.Index, res.Record.OutputFileName})
	case OutcomeExifSkipped:
		s.EmbeddedSkipped++
	case OutcomeExifFailed:
		s.EmbeddedFailed++
		s.RoutedToError++
	}
	if res.Sidecar.FromPartnerSharing {
		s.PartnerShared++
	}
}

func (s *Summary) addRouted() {
	s.mu.Lock()
	s.RoutedToError++
	s.mu.Unlock()
}

// finish puts the list of edited files in record order.
func (s *Summary) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.Slice(s.edited, func(i, j int) bool { return s.edited[i].index < s.edited[j].index })
	s.EditedFiles = make([]string, len(s.edited))
	for i, e := range s.edited {
		s.EditedFiles[i] = e.name
	}
}

// Log emits the summary as a structured log entry.
func (s *Summary) Log(logger *zap.Logger) {
	logger.Info("finished processing media files",
		zap.String("run_id", s.RunID),
		zap.Int("total_files", s.TotalFiles),
		zap.Int("media_files", s.MediaFiles),
		zap.Int("sidecars", s.Sidecars),
		zap.Int("missing_sidecars", s.MissingSidecars),
		zap.Int("unsupported", s.Unsupported),
		zap.Int("orphan_sidecars", s.OrphanSidecars),
		zap.Int("motion_companions", s.MotionCompanions),
		zap.Int("processed", s.Processed),
		zap.Int("no_timestamp", s.NoTimestamp),
		zap.Int("embedded_updated", s.EmbeddedUpdated),
		zap.Int("embedded_skipped", s.EmbeddedSkipped),
		zap.Int("embedded_failed", s.EmbeddedFailed),
		zap.Int("partner_shared", s.PartnerShared),
		zap.Int("routed_to_error", s.RoutedToError))
}

// WriteReport writes a human-readable report of the run to w.
func (s *Summary) WriteReport(w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("--- Finished processing media files (run %s) ---\n", s.RunID)
	for _, ec := range s.Extensions {
		note := ""
		if !ec.Supported && ec.Extension != ".json" {
			note = " (unsupported)"
		}
		ext := ec.Extension
		if ext == "" {
			ext = "(none)"
		}
		ew.printf("%d files with extension %s%s\n", ec.Count, ext, note)
	}
	ew.printf("%d files total, %d media files, %d sidecars\n", s.TotalFiles, s.MediaFiles, s.Sidecars)
	ew.printf("%d media files had no sidecar\n", s.MissingSidecars)
	if s.MotionCompanions > 0 {
		ew.printf("%d videos are motion photo companions\n", s.MotionCompanions)
	}
	if s.PartnerShared > 0 {
		ew.printf("%d items came from partner sharing\n", s.PartnerShared)
	}
	ew.printf("%d files processed: %d timestamps written, %d already had one or cannot hold one, %d without a timestamp, %d failed\n",
		s.Processed, s.EmbeddedUpdated, s.EmbeddedSkipped, s.NoTimestamp, s.EmbeddedFailed)
	ew.printf("%d files were placed in the error directory (%d unsupported, %d orphaned sidecars)\n",
		s.RoutedToError, s.Unsupported, s.OrphanSidecars)

	if len(s.EditedFiles) > 0 {
		ew.printf("--- Found %d files which support embedded metadata, but had no DateTimeOriginal field. The field has been set from the sidecar for each of these files: ---\n", len(s.EditedFiles))
		for _, name := range s.EditedFiles {
			ew.printf("%s\n", name)
		}
	} else {
		ew.printf("--- No embedded metadata was edited. Every file either already had a DateTimeOriginal value, cannot hold one, or had no sidecar. ---\n")
	}

	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
