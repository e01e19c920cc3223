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
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/timelinize/takeoutstamp/internal/testhelpers"
	"go.uber.org/zap"
)

func TestValidExifDate(t *testing.T) {
	for input, expect := range map[string]bool{
		"2020:01:01 00:00:00": true,
		"0000:00:00 00:00:00": false,
		"":                    false,
		"   ":                 false,
	} {
		if actual := validExifDate(input); actual != expect {
			t.Errorf("Input '%s': expected %t but got %t", input, expect, actual)
		}
	}
}

func TestParseXMPDate(t *testing.T) {
	for i, test := range []struct {
		input  string
		expect time.Time
	}{
		{input: "2019-05-04T10:11:12Z", expect: time.Date(2019, 5, 4, 10, 11, 12, 0, time.UTC)},
		{input: "2019-05-04T10:11:12", expect: time.Date(2019, 5, 4, 10, 11, 12, 0, time.UTC)},
		{input: "2019-05-04", expect: time.Date(2019, 5, 4, 0, 0, 0, 0, time.UTC)},
		{input: "2019:05:04 10:11:12", expect: time.Date(2019, 5, 4, 10, 11, 12, 0, time.UTC)},
		{input: "sometime in May"},
	} {
		if actual := parseXMPDate(test.input); !actual.Equal(test.expect) {
			t.Errorf("Test %d: expected %s but got %s", i, test.expect, actual)
		}
	}
}

func TestIsoIEC14496Timestamp(t *testing.T) {
	expect := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	if actual := isoIEC14496Timestamp(uint64(expect.Unix()) + quickTimeEpochOffset); !actual.Equal(expect) {
		t.Errorf("expected %s but got %s", expect, actual)
	}
	if actual := isoIEC14496Timestamp(0); !actual.IsZero() {
		t.Errorf("expected zero time for 0 but got %s", actual)
	}
}

func TestReadMP4CreationTime(t *testing.T) {
	expect := time.Date(2021, time.March, 14, 15, 9, 26, 0, time.UTC)
	movie := testhelpers.MinimalMovie(uint32(uint64(expect.Unix()) + quickTimeEpochOffset))

	created, err := readMP4CreationTime(bytes.NewReader(movie))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created.Equal(expect) {
		t.Errorf("expected creation time %s but got %s", expect, created)
	}

	created, err = readMP4CreationTime(bytes.NewReader(testhelpers.MinimalMovie(0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created.IsZero() {
		t.Errorf("expected no creation time but got %s", created)
	}
}

func TestEmbeddedTimestampIgnoresMovieHeader(t *testing.T) {
	dir := t.TempDir()
	created := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"IMG_0001.MOV", "VID_0001.mp4"} {
		fpath := filepath.Join(dir, name)
		if err := os.WriteFile(fpath, testhelpers.MinimalMovie(uint32(uint64(created.Unix())+quickTimeEpochOffset)), 0600); err != nil {
			t.Fatal(err)
		}
		emb, err := EmbeddedTimestamp(zap.NewNop(), fpath)
		if err != nil {
			t.Fatalf("Test %d: unexpected error: %v", i, err)
		}
		if emb.Found {
			t.Errorf("Test %d: a movie header creation time is not a DateTimeOriginal, but got %+v", i, emb)
		}
	}
}

func TestReadXMPTimestamp(t *testing.T) {
	const packet = `<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:xmp="http://ns.adobe.com/xap/1.0/" xmp:CreateDate="2019-05-04T10:11:12Z"/>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`

	emb, _ := readXMPTimestamp(bytes.NewReader([]byte("junk" + packet + "junk")))
	if emb.Found {
		t.Errorf("xmp:CreateDate alone is not a DateTimeOriginal, but got %+v", emb)
	}
}

func TestEmbeddedTimestampUnparseable(t *testing.T) {
	dir := t.TempDir()
	for i, name := range []string{"not-really.jpg", "not-really.mov"} {
		fpath := filepath.Join(dir, name)
		if err := os.WriteFile(fpath, []byte("this is not a media file"), 0600); err != nil {
			t.Fatal(err)
		}
		emb, err := EmbeddedTimestamp(zap.NewNop(), fpath)
		if err != nil {
			t.Errorf("Test %d: unexpected error: %v", i, err)
		}
		if emb.Found {
			t.Errorf("Test %d: expected nothing found but got %+v", i, emb)
		}
	}

	if _, err := EmbeddedTimestamp(zap.NewNop(), filepath.Join(dir, "missing.jpg")); err == nil {
		t.Error("expected error for missing file")
	}
}
