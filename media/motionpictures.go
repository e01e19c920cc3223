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
	"io/fs"
	"path"
	"strings"
)

/*
	Motion pictures ("live photos" and similar) are short videos that some cameras take along with a still capture.

	iPhone: IMG_1234.HEIC has a companion video, IMG_1234.MOV
	Google:
		Older: MVIMG_*.jpg may come with a companion MVIMG_*.mp4.
		Newer: *.MP.jpg may come with a companion *.MP.

	In a Takeout export the companion video usually has no sidecar of its own; it
	shares the picture's sidecar, which is why the resolver tries the picture's
	sidecar names for videos too.
*/

// IsSidecarVideo returns true if the given filePath is a video file that accompanies a separate but related
// picture file as its "motion picture" or "live photo".
func IsSidecarVideo(fsys fs.FS, filePath string) bool {
	vidExt := path.Ext(filePath)
	vidExtLower := strings.ToLower(vidExt)

	switch vidExtLower {
	case ".mov", ".mp4":
		// IMG_1234.MOV is a companion of IMG_1234.[HEIC|JPG|JPEG|HEIF]
		for _, imgExt := range []string{".HEIC", ".JPG", ".JPEG", ".HEIF"} {
			// iPhone uses uppercase by default (but just in case, try lower...)
			if vidExt == vidExtLower {
				imgExt = strings.ToLower(imgExt)
			}
			if FileExistsFS(fsys, strings.TrimSuffix(filePath, vidExt)+imgExt) {
				return true
			}
		}
	case ".mp":
		// "PXL_1234.MP" is a companion of "PXL_1234.MP.jpg"
		for _, imgExt := range []string{".jpg", ".JPG", ".jpeg", ".JPEG"} {
			if FileExistsFS(fsys, filePath+imgExt) {
				return true
			}
		}
	}

	return false
}

// FileExistsFS returns true if name exists in fsys and is not a directory.
// A file that exists but can't be looked at counts as existing.
func FileExistsFS(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return errors.Is(err, fs.ErrPermission)
	}
	return !info.IsDir()
}
