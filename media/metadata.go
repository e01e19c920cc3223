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
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abema/go-mp4"
	"github.com/cozy/goexif2/exif"
	"github.com/mholt/go-xmp/xmp"
	"go.uber.org/zap"
)

// Embedded describes a capture timestamp found inside a media file.
type Embedded struct {
	Found  bool
	Time   time.Time // may be zero even if Found, when the value could not be parsed
	Source string    // where it was found, e.g. "EXIF DateTimeOriginal"
}

// EmbeddedTimestamp looks for a DateTimeOriginal value inside the file at
// filename without any external tools: the EXIF tag, or its XMP equivalent
// exif:DateTimeOriginal. Other dates, such as the creation time in a
// QuickTime movie header or xmp:CreateDate, do not count, since they are
// not what gets written.
//
// A format this cannot parse is not an error; the result is simply not Found,
// and the caller may want to ask a more capable reader. Errors are only
// returned if the file could not be read.
func EmbeddedTimestamp(logger *zap.Logger, filename string) (Embedded, error) {
	logger = logger.With(zap.String("filepath", filename))

	file, err := os.Open(filename)
	if err != nil {
		return Embedded{}, err
	}
	defer file.Close()

	if isQuickTime(filepath.Ext(filename)) {
		// informational only; QuickTime files have no EXIF block
		if created, err := readMP4CreationTime(file); err != nil {
			logger.Debug("reading MP4 boxes", zap.Error(err))
		} else if !created.IsZero() {
			logger.Debug("movie header has creation time", zap.Time("creation_time", created))
		}
	} else {
		emb, err := readEXIFTimestamp(file)
		if err != nil {
			logger.Debug("decoding EXIF", zap.Error(err))
		}
		if emb.Found {
			return emb, nil
		}
	}
	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return Embedded{}, fmt.Errorf("could not rewind file: %w", err)
	}

	// XMP
	emb, err := readXMPTimestamp(file)
	if err != nil {
		logger.Debug("scanning XMP", zap.Error(err))
		return Embedded{}, nil
	}
	return emb, nil
}

func readEXIFTimestamp(r io.Reader) (Embedded, error) {
	ex, err := exif.Decode(r)
	if err != nil && (ex == nil || exif.IsCriticalError(err)) {
		return Embedded{}, err
	}
	tag, err := ex.Get(exif.DateTimeOriginal)
	if err != nil {
		// absent tag is the common case, not a failure
		return Embedded{}, nil
	}
	val, err := tag.StringVal()
	if err != nil {
		return Embedded{}, fmt.Errorf("reading DateTimeOriginal: %w", err)
	}
	val = strings.TrimSpace(strings.TrimRight(val, "\x00"))
	if !validExifDate(val) {
		return Embedded{}, nil
	}
	ts, _ := time.Parse(exifDateLayout, val)
	return Embedded{Found: true, Time: ts, Source: "EXIF DateTimeOriginal"}, nil
}

func readXMPTimestamp(r io.Reader) (Embedded, error) {
	packets, err := xmp.ScanPackets(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Embedded{}, nil
		}
		return Embedded{}, err
	}
	for _, packet := range packets {
		var doc xmp.Document
		if err := xmp.Unmarshal(packet, &doc); err != nil {
			return Embedded{}, fmt.Errorf("unmarshaling XMP document: %w", err)
		}
		paths, err := doc.ListPaths()
		if err != nil {
			return Embedded{}, fmt.Errorf("listing XMP paths: %w", err)
		}
		for _, p := range paths {
			switch p.Path {
			case "exif:DateTimeOriginal":
				if strings.TrimSpace(p.Value) == "" {
					continue
				}
				return Embedded{
					Found:  true,
					Time:   parseXMPDate(p.Value),
					Source: "XMP " + string(p.Path),
				}, nil
			}
		}
	}
	return Embedded{}, nil
}

// readMP4CreationTime reads the creation time from the movie header (mvhd),
// or a track header (tkhd) if the movie header has none.
func readMP4CreationTime(r io.ReadSeeker) (time.Time, error) {
	var created time.Time
	_, err := mp4.ReadBoxStructure(r, func(h *mp4.ReadHandle) (any, error) {
		if !created.IsZero() {
			return nil, nil
		}
		if !h.BoxInfo.IsSupportedType() || h.BoxInfo.Type == mp4.BoxTypeMdat() {
			return nil, nil
		}
		box, _, err := h.ReadPayload()
		if err != nil {
			return nil, fmt.Errorf("reading payload from handle: %w", err)
		}
		switch b := box.(type) {
		case *mp4.Mvhd:
			created = isoIEC14496Timestamp(b.GetCreationTime())
		case *mp4.Tkhd:
			created = isoIEC14496Timestamp(b.GetCreationTime())
		}
		return h.Expand()
	})
	return created, err
}

// validExifDate returns false for empty values and the all-zero
// placeholder some cameras write when the clock was never set.
func validExifDate(val string) bool {
	val = strings.TrimSpace(val)
	return val != "" && !strings.HasPrefix(val, "0000:00:00")
}

func parseXMPDate(val string) time.Time {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
		exifDateLayout,
	} {
		if ts, err := time.Parse(layout, strings.TrimSpace(val)); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func isQuickTime(ext string) bool {
	switch NormalizeExt(ext) {
	case ".mp4", ".mov", ".m4v", ".3gp", ".3g2":
		return true
	}
	return false
}

// isoIEC14496Timestamp converts the number of seconds since January 1, 1904 (as
// defined by ISO/IEC 14496-12) to a time.Time.
func isoIEC14496Timestamp(ts uint64) time.Time {
	if ts <= quickTimeEpochOffset {
		return time.Time{}
	}
	return time.Unix(int64(ts-quickTimeEpochOffset), 0).UTC() //nolint:gosec
}

// Seconds between January 1, 1904 (the MP4 epoch) and the Unix epoch.
const quickTimeEpochOffset uint64 = 2082844800

const exifDateLayout = "2006:01:02 15:04:05"
