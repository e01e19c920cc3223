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

// Package googlephotos understands the JSON sidecar files that accompany
// media files in a Google Photos Takeout export: how to find the sidecar
// of a media file, and how to read the timestamp and location from it.
package googlephotos

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"strconv"
	"time"
)

// ParseError is returned when a sidecar file is not valid JSON.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed sidecar: %v", e.Err)
	}
	return fmt.Sprintf("malformed sidecar %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Sidecar is the information extracted from a sidecar file.
type Sidecar struct {
	// Original filename of the media item, as uploaded.
	Title string

	// When the photo was taken, in UTC. Zero if the sidecar has
	// no usable photoTakenTime.
	Timestamp time.Time

	// When the item was uploaded to Google Photos; informational only.
	CreationTime time.Time

	// Location, or nil if the sidecar has none.
	Geo *Geo

	// True if the item came into the library through partner sharing.
	FromPartnerSharing bool
}

// HasTimestamp returns true if a photo-taken time was found.
func (s Sidecar) HasTimestamp() bool { return !s.Timestamp.IsZero() }

// Geo is a location in the form EXIF GPS tags want it: latitude and
// longitude as magnitudes with a hemisphere reference.
type Geo struct {
	Latitude     float64
	LatitudeRef  string // "N" or "S"
	Longitude    float64
	LongitudeRef string  // "E" or "W"
	Altitude     float64 // meters; negative is below sea level
}

// Extract parses the contents of a sidecar file. A missing or unparseable
// timestamp is not an error; the returned Sidecar simply has no timestamp.
// Only malformed JSON is an error, and it is always a *ParseError.
func Extract(data []byte) (Sidecar, error) {
	var meta itemMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Sidecar{}, &ParseError{Err: err}
	}
	return Sidecar{
		Title:              meta.Title,
		Timestamp:          meta.PhotoTakenTime.time(),
		CreationTime:       meta.CreationTime.time(),
		Geo:                meta.geo(),
		FromPartnerSharing: meta.GooglePhotosOrigin.fromPartnerSharing(),
	}, nil
}

// ReadSidecar reads and extracts the sidecar file at name in fsys.
func ReadSidecar(fsys fs.FS, name string) (Sidecar, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Sidecar{}, fmt.Errorf("reading sidecar %s: %w", name, err)
	}
	sc, err := Extract(data)
	if err != nil {
		if perr, ok := err.(*ParseError); ok {
			perr.Path = name
		}
		return Sidecar{}, err
	}
	return sc, nil
}

// IsItemSidecar returns true if data looks like the sidecar of a media item,
// as opposed to album metadata or some other JSON file in the export.
func IsItemSidecar(data []byte) bool {
	var meta itemMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return false
	}
	return meta.Title != "" && meta.PhotoTakenTime.Timestamp != ""
}

// itemMetadata is the subset of a media item's sidecar that we consume.
type itemMetadata struct {
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	CreationTime   googleTime    `json:"creationTime"`
	PhotoTakenTime googleTime    `json:"photoTakenTime"`
	GeoData        googleGeoData `json:"geoData"`
	GeoDataExif    googleGeoData `json:"geoDataExif"`
	URL            string        `json:"url"`

	GooglePhotosOrigin googlePhotosOrigin `json:"googlePhotosOrigin"`
}

type googleTime struct {
	Timestamp epochSeconds `json:"timestamp"`
	Formatted string       `json:"formatted"`
}

// time returns the timestamp in UTC, or the zero time if it is absent or
// not an integer.
func (t googleTime) time() time.Time {
	if t.Timestamp == "" {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(string(t.Timestamp), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// epochSeconds is a Unix timestamp that Google encodes as a JSON
// string; a bare JSON number is tolerated too.
type epochSeconds string

func (e *epochSeconds) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*e = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = epochSeconds(s)
		return nil
	}
	*e = epochSeconds(b)
	return nil
}

type googleGeoData struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Altitude      float64 `json:"altitude"`
	LatitudeSpan  float64 `json:"latitudeSpan"`
	LongitudeSpan float64 `json:"longitudeSpan"`
}

// zero returns true for 0,0,0, which is how Google writes "no location";
// a real location exactly on the equator, prime meridian and at sea level
// is indistinguishable from it.
func (g googleGeoData) zero() bool {
	return g.Latitude == 0 && g.Longitude == 0 && g.Altitude == 0
}

// geo returns the location from geoData, falling back to geoDataExif,
// or nil if neither has one.
func (m itemMetadata) geo() *Geo {
	src := m.GeoData
	if src.zero() {
		src = m.GeoDataExif
	}
	if src.zero() {
		return nil
	}
	geo := &Geo{
		Latitude:     math.Abs(src.Latitude),
		LatitudeRef:  "N",
		Longitude:    math.Abs(src.Longitude),
		LongitudeRef: "E",
		Altitude:     src.Altitude,
	}
	if src.Latitude < 0 {
		geo.LatitudeRef = "S"
	}
	if src.Longitude < 0 {
		geo.LongitudeRef = "W"
	}
	return geo
}

type googlePhotosOrigin struct {
	MobileUpload       json.RawMessage `json:"mobileUpload"`
	FromPartnerSharing json.RawMessage `json:"fromPartnerSharing"`
	DriveSync          json.RawMessage `json:"driveSync"`
}

// fromPartnerSharing returns true if the flag is present at all; Google
// writes it as an empty object.
func (o googlePhotosOrigin) fromPartnerSharing() bool {
	v := bytes.TrimSpace(o.FromPartnerSharing)
	return len(v) > 0 && !bytes.Equal(v, []byte("null"))
}
