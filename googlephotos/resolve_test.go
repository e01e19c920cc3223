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
	"testing"
	"testing/fstest"
)

func TestResolveSidecar(t *testing.T) {
	for i, test := range []struct {
		files     []string
		media     string
		expect    string
		expectOK  bool
		expectVia string
	}{
		{
			files:     []string{"album/IMG_0001.jpg", "album/IMG_0001.json"},
			media:     "album/IMG_0001.jpg",
			expect:    "album/IMG_0001.json",
			expectOK:  true,
			expectVia: "name",
		},
		{
			files:     []string{"album/IMG_0001.jpg", "album/IMG_0001.jpg.json"},
			media:     "album/IMG_0001.jpg",
			expect:    "album/IMG_0001.jpg.json",
			expectOK:  true,
			expectVia: "name_with_ext",
		},
		{
			// both exist: the earlier rule wins
			files:     []string{"IMG_0001.jpg", "IMG_0001.jpg.json", "IMG_0001.json"},
			media:     "IMG_0001.jpg",
			expect:    "IMG_0001.json",
			expectOK:  true,
			expectVia: "name",
		},
		{
			files:     []string{"IMG_0001(1).jpg", "IMG_0001.jpg(1).json"},
			media:     "IMG_0001(1).jpg",
			expect:    "IMG_0001.jpg(1).json",
			expectOK:  true,
			expectVia: "counter_after_ext",
		},
		{
			files:     []string{"IMG_0002-edited.jpg", "IMG_0002.json"},
			media:     "IMG_0002-edited.jpg",
			expect:    "IMG_0002.json",
			expectOK:  true,
			expectVia: "name",
		},
		{
			files:     []string{"IMG_0002-EDITED.JPG", "IMG_0002.JPG.json"},
			media:     "IMG_0002-EDITED.JPG",
			expect:    "IMG_0002.JPG.json",
			expectOK:  true,
			expectVia: "name_with_ext",
		},
		{
			files:     []string{"PXL_20210101_120000.mp4", "PXL_20210101_120000.jpg.json"},
			media:     "PXL_20210101_120000.mp4",
			expect:    "PXL_20210101_120000.jpg.json",
			expectOK:  true,
			expectVia: "motion_photo_jpg",
		},
		{
			files:     []string{"IMG_5000.MOV", "IMG_5000.HEIC.json"},
			media:     "IMG_5000.MOV",
			expect:    "IMG_5000.HEIC.json",
			expectOK:  true,
			expectVia: "motion_photo_heic",
		},
		{
			files:     []string{"15250796_1015812561957515_n-.jpg", "15250796_1015812561957515.json"},
			media:     "15250796_1015812561957515_n-.jpg",
			expect:    "15250796_1015812561957515.json",
			expectOK:  true,
			expectVia: "trailing_artifact",
		},
		{
			files:     []string{"abc_n.jpg", "abc.json"},
			media:     "abc_n.jpg",
			expect:    "abc.json",
			expectOK:  true,
			expectVia: "trailing_artifact",
		},
		{
			files:     []string{"abc_.png", "abc.json"},
			media:     "abc_.png",
			expect:    "abc.json",
			expectOK:  true,
			expectVia: "trailing_artifact",
		},
		{
			files:     []string{"IMG_20161204_194948.jpg", "IMG_20161204_194948.jpg.supplemental-metadata.json"},
			media:     "IMG_20161204_194948.jpg",
			expect:    "IMG_20161204_194948.jpg.supplemental-metadata.json",
			expectOK:  true,
			expectVia: "supplemental_metadata",
		},
		{
			files:     []string{"IMG_20160819_201122-01.jpeg", "IMG_20160819_201122-01.jpeg.supplemental-metad.json"},
			media:     "IMG_20160819_201122-01.jpeg",
			expect:    "IMG_20160819_201122-01.jpeg.supplemental-metad.json",
			expectOK:  true,
			expectVia: "supplemental_metadata",
		},
		{
			// sidecar in another directory does not count
			files:    []string{"a/IMG_0003.jpg", "b/IMG_0003.jpg.json"},
			media:    "a/IMG_0003.jpg",
			expectOK: false,
		},
		{
			// a directory named like a sidecar does not count
			files:    []string{"IMG_0004.jpg", "IMG_0004.json/x"},
			media:    "IMG_0004.jpg",
			expectOK: false,
		},
		{
			files:    []string{"IMG_0005.jpg"},
			media:    "IMG_0005.jpg",
			expectOK: false,
		},
	} {
		fsys := make(fstest.MapFS)
		for _, f := range test.files {
			fsys[f] = &fstest.MapFile{Data: []byte("{}")}
		}

		match, ok := MatchSidecar(fsys, test.media)
		if ok != test.expectOK {
			t.Errorf("Test %d (%s): expected ok=%t but got %t (match=%+v)", i, test.media, test.expectOK, ok, match)
			continue
		}
		if match.Path != test.expect {
			t.Errorf("Test %d (%s): expected sidecar '%s' but got '%s'", i, test.media, test.expect, match.Path)
		}
		if match.Rule != test.expectVia {
			t.Errorf("Test %d (%s): expected rule '%s' but got '%s'", i, test.media, test.expectVia, match.Rule)
		}

		// same file system state, same answer
		again, againOK := ResolveSidecar(fsys, test.media)
		if again != match.Path || againOK != ok {
			t.Errorf("Test %d (%s): second resolution differs: '%s' (%t) vs '%s' (%t)",
				i, test.media, again, againOK, match.Path, ok)
		}
	}
}

func TestSidecarCandidatesOrder(t *testing.T) {
	got := SidecarCandidates("IMG_0001(2)-edited.jpg")
	expect := []string{
		"IMG_0001(2).json",
		"IMG_0001(2).jpg.json",
		"IMG_0001(2).jpg.json",
		"IMG_0001(2).HEIC.json",
		"IMG_0001.jpg(2).json",
		"IMG_0001(2).jpg.supplemental-metadata.json",
		"IMG_0001.jpg.supplemental-metadata(2).json",
		"IMG_0001(2).supplemental-metadata.json",
	}
	if len(got) != len(expect) {
		t.Fatalf("expected %d candidates but got %d: %q", len(expect), len(got), got)
	}
	for i := range expect {
		if got[i] != expect[i] {
			t.Errorf("Candidate %d: expected '%s' but got '%s'", i, expect[i], got[i])
		}
	}
}

func TestTruncateSidecarName(t *testing.T) {
	for i, test := range []struct {
		stem   string
		expect string
	}{
		{
			stem:   "IMG_20161204_194948.jpg.supplemental-metadata",
			expect: "IMG_20161204_194948.jpg.supplemental-metadata.json",
		},
		{
			stem:   "IMG_20160819_201122-01.jpeg.supplemental-metadata",
			expect: "IMG_20160819_201122-01.jpeg.supplemental-metad.json",
		},
		{
			stem:   "short",
			expect: "short.json",
		},
	} {
		if actual := truncateSidecarName(test.stem); actual != test.expect {
			t.Errorf("Test %d: expected '%s' but got '%s'", i, test.expect, actual)
		}
	}
}
