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
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/timelinize/takeoutstamp/media"
)

/*
	Google does not document how it names the JSON sidecar of a media file in a
	Takeout export, and the convention has changed between export batches. What
	we know from real archives:

	- IMG_1234.jpg usually has IMG_1234.jpg.json, sometimes IMG_1234.json
	- IMG_1234-edited.jpg has no sidecar of its own; it shares IMG_1234's
	- a motion photo video (PXL_1234.mp4) may share the still's sidecar, which
	  is named after the still (PXL_1234.jpg.json or PXL_1234.HEIC.json)
	- duplicate names get a uniqueness counter, but on the sidecar the counter
	  goes after the extension: IMG_1234(1).jpg -> IMG_1234.jpg(1).json
	- long names are truncated, leaving artifacts like a dangling "_n-" or "_"
	- newer exports use IMG_1234.jpg.supplemental-metadata.json, with the whole
	  sidecar filename truncated to 51 characters

	Each observed convention is one entry in sidecarRules. The rules are tried in
	order and the first candidate that exists wins, so a new convention can be
	appended at the end without changing which sidecar an existing file gets.
*/

// sidecarRule generates candidate sidecar filenames from the media file's
// name (without extension and without any "-edited" suffix) and its extension.
type sidecarRule struct {
	name     string
	generate func(name, ext string) []string
}

var sidecarRules = []sidecarRule{
	{
		name: "name",
		generate: func(name, _ string) []string {
			return []string{name + ".json"}
		},
	},
	{
		name: "name_with_ext",
		generate: func(name, ext string) []string {
			return []string{name + ext + ".json"}
		},
	},
	{
		name: "motion_photo_jpg",
		generate: func(name, _ string) []string {
			return []string{name + ".jpg.json"}
		},
	},
	{
		name: "motion_photo_heic",
		generate: func(name, _ string) []string {
			return []string{name + ".HEIC.json"}
		},
	},
	{
		name: "counter_after_ext",
		generate: func(name, ext string) []string {
			base, counter, ok := splitCounter(name)
			if !ok {
				return nil
			}
			return []string{base + ext + "(" + counter + ").json"}
		},
	},
	{
		name: "trailing_artifact",
		generate: func(name, _ string) []string {
			for _, artifact := range []string{"_n-", "_n", "_"} {
				if strings.HasSuffix(name, artifact) {
					return []string{strings.TrimSuffix(name, artifact) + ".json"}
				}
			}
			return nil
		},
	},
	{
		name: "supplemental_metadata",
		generate: func(name, ext string) []string {
			candidates := []string{name + ext + supplementalSuffix + ".json"}
			if truncated := truncateSidecarName(name + ext + supplementalSuffix); truncated != candidates[0] {
				candidates = append(candidates, truncated)
			}
			if base, counter, ok := splitCounter(name); ok {
				candidates = append(candidates, base+ext+supplementalSuffix+"("+counter+").json")
			}
			return append(candidates, name+supplementalSuffix+".json")
		},
	},
}

// SidecarMatch is a sidecar file found for a media file.
type SidecarMatch struct {
	Path string // path of the sidecar in the same file system as the media file
	Rule string // name of the naming convention that matched
}

// SidecarCandidates returns, in priority order, the filenames that are
// searched for when looking for the sidecar of the media file mediaFilename.
// The list may contain duplicates; only the first existing one matters.
func SidecarCandidates(mediaFilename string) []string {
	name, ext := splitMediaFilename(mediaFilename)
	var candidates []string
	for _, rule := range sidecarRules {
		candidates = append(candidates, rule.generate(name, ext)...)
	}
	return candidates
}

// MatchSidecar finds the JSON sidecar describing the media file at mediaPath
// in fsys. Only the media file's own directory is searched, and the result
// depends only on mediaPath and the contents of fsys.
func MatchSidecar(fsys fs.FS, mediaPath string) (SidecarMatch, bool) {
	dir := path.Dir(mediaPath)
	name, ext := splitMediaFilename(path.Base(mediaPath))
	for _, rule := range sidecarRules {
		for _, candidate := range rule.generate(name, ext) {
			candidatePath := path.Join(dir, candidate)
			if candidatePath == mediaPath {
				continue
			}
			if media.FileExistsFS(fsys, candidatePath) {
				return SidecarMatch{Path: candidatePath, Rule: rule.name}, true
			}
		}
	}
	return SidecarMatch{}, false
}

// ResolveSidecar returns the path of the sidecar for the media file at
// mediaPath, and true if one exists.
func ResolveSidecar(fsys fs.FS, mediaPath string) (string, bool) {
	m, ok := MatchSidecar(fsys, mediaPath)
	return m.Path, ok
}

// splitMediaFilename returns the name, without extension and without any
// "-edited" suffix, and the extension of a media filename.
func splitMediaFilename(filename string) (name, ext string) {
	ext = path.Ext(filename)
	return stripEditedSuffix(strings.TrimSuffix(filename, ext)), ext
}

// stripEditedSuffix removes a trailing "-edited" (or a localized equivalent),
// compared case-insensitively, since edited copies share the original's sidecar.
func stripEditedSuffix(name string) string {
	for _, suffix := range editedSuffixes {
		if cut := len(name) - len(suffix); cut >= 0 && strings.EqualFold(name[cut:], suffix) {
			return name[:cut]
		}
	}
	return name
}

// splitCounter splits a name like "IMG_1234(2)" into "IMG_1234" and "2".
func splitCounter(name string) (base, counter string, ok bool) {
	m := counterSuffixRegex.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// truncateSidecarName appends ".json" to stem, truncating stem first so
// the result is no longer than Google allows a sidecar filename to be.
func truncateSidecarName(stem string) string {
	const jsonExt = ".json"
	runes := []rune(stem)
	if maxStem := maxSidecarFilenameLen - len(jsonExt); len(runes) > maxStem {
		runes = runes[:maxStem]
	}
	return string(runes) + jsonExt
}

const (
	supplementalSuffix    = ".supplemental-metadata"
	maxSidecarFilenameLen = 51
)

var editedSuffixes = []string{"-edited", "-bearbeitet", "-modifié"}

var counterSuffixRegex = regexp.MustCompile(`^(.*)\((\d+)\)$`)
