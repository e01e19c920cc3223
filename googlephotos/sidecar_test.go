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

package googlephotos

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"
)

func TestExtractTimestamp(t *testing.T) {
	for i, test := range []struct {
		input  string
		expect time.Time
	}{
		{
			input:  `{"title": "a.jpg", "photoTakenTime": {"timestamp": "1577836800", "formatted": "Jan 1, 2020, 12:00:00 AM UTC"}}`,
			expect: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			input:  `{"photoTakenTime": {"timestamp": 1577836800}}`,
			expect: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			input: `{"photoTakenTime": {"timestamp": "yesterday"}}`,
		},
		{
			input: `{"photoTakenTime": {"timestamp": null}}`,
		},
		{
			input: `{"creationTime": {"timestamp": "1577836800"}}`,
		},
		{
			input: `{}`,
		},
	} {
		sc, err := Extract([]byte(test.input))
		if err != nil {
			t.Errorf("Test %d: unexpected error: %v", i, err)
			continue
		}
		if !sc.Timestamp.Equal(test.expect) {
			t.Errorf("Test %d: expected timestamp %s but got %s", i, test.expect, sc.Timestamp)
		}
		if sc.HasTimestamp() != !test.expect.IsZero() {
			t.Errorf("Test %d: HasTimestamp()=%t but expected timestamp is %s", i, sc.HasTimestamp(), test.expect)
		}
		if !sc.Timestamp.IsZero() && sc.Timestamp.Location() != time.UTC {
			t.Errorf("Test %d: expected UTC timestamp, got location %s", i, sc.Timestamp.Location())
		}
	}
}

func TestExtractGeo(t *testing.T) {
	for i, test := range []struct {
		input  string
		expect *Geo
	}{
		{
			input: `{"geoData": {"latitude": -33.8, "longitude": 151.2, "altitude": 0}}`,
			expect: &Geo{
				Latitude:     33.8,
				LatitudeRef:  "S",
				Longitude:    151.2,
				LongitudeRef: "E",
			},
		},
		{
			input: `{"geoData": {"latitude": 40.7, "longitude": -74.0, "altitude": 12.5}}`,
			expect: &Geo{
				Latitude:     40.7,
				LatitudeRef:  "N",
				Longitude:    74.0,
				LongitudeRef: "W",
				Altitude:     12.5,
			},
		},
		{
			input: `{"geoData": {"latitude": 0, "longitude": 0, "altitude": 0}}`,
		},
		{
			input: `{"geoData": {"latitude": 0.0, "longitude": 0.0, "altitude": 0.0}, "geoDataExif": {"latitude": 51.5, "longitude": -0.1, "altitude": 0}}`,
			expect: &Geo{
				Latitude:     51.5,
				LatitudeRef:  "N",
				Longitude:    0.1,
				LongitudeRef: "W",
			},
		},
		{
			input: `{"title": "no-geo.jpg"}`,
		},
	} {
		sc, err := Extract([]byte(test.input))
		if err != nil {
			t.Errorf("Test %d: unexpected error: %v", i, err)
			continue
		}
		if test.expect == nil {
			if sc.Geo != nil {
				t.Errorf("Test %d: expected no geo data but got %+v", i, *sc.Geo)
			}
			continue
		}
		if sc.Geo == nil {
			t.Errorf("Test %d: expected geo data %+v but got none", i, *test.expect)
			continue
		}
		if *sc.Geo != *test.expect {
			t.Errorf("Test %d: expected %+v but got %+v", i, *test.expect, *sc.Geo)
		}
	}
}

func TestExtractPartnerSharing(t *testing.T) {
	for i, test := range []struct {
		input  string
		expect bool
	}{
		{input: `{"googlePhotosOrigin": {"fromPartnerSharing": {}}}`, expect: true},
		{input: `{"googlePhotosOrigin": {"mobileUpload": {"deviceType": "ANDROID_PHONE"}}}`, expect: false},
		{input: `{"googlePhotosOrigin": {"fromPartnerSharing": null}}`, expect: false},
		{input: `{}`, expect: false},
	} {
		sc, err := Extract([]byte(test.input))
		if err != nil {
			t.Errorf("Test %d: unexpected error: %v", i, err)
			continue
		}
		if sc.FromPartnerSharing != test.expect {
			t.Errorf("Test %d: expected %t but got %t", i, test.expect, sc.FromPartnerSharing)
		}
	}
}

func TestReadSidecarMalformed(t *testing.T) {
	fsys := fstest.MapFS{
		"album/broken.jpg.json": &fstest.MapFile{Data: []byte(`{"photoTakenTime": {"timestamp": "15778`)},
	}
	_, err := ReadSidecar(fsys, "album/broken.jpg.json")
	if err == nil {
		t.Fatal("expected an error")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected a *ParseError, got %T: %v", err, err)
	}
	if perr.Path != "album/broken.jpg.json" {
		t.Errorf("expected path on parse error, got '%s'", perr.Path)
	}
}

func TestIsItemSidecar(t *testing.T) {
	for i, test := range []struct {
		input  string
		expect bool
	}{
		{input: `{"title": "IMG_1.jpg", "photoTakenTime": {"timestamp": "1577836800"}}`, expect: true},
		{input: `{"title": "Trip to the lake", "date": {"timestamp": "1577836800"}}`, expect: false},
		{input: `not json`, expect: false},
	} {
		if actual := IsItemSidecar([]byte(test.input)); actual != test.expect {
			t.Errorf("Test %d: expected %t but got %t", i, test.expect, actual)
		}
	}
}
