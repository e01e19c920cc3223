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

// MediaRecord is one supported media file of the input, with everything
// decided about it before any file is touched. Records are built in
// enumeration order and not modified afterward.
type MediaRecord struct {
	// Position in enumeration order, starting at 0.
	Index int

	// Path of the file for display: the input directory
	// (or archive) joined with FSPath.
	SourcePath string

	// Path of the file within the input file system.
	FSPath string

	FileName  string
	Extension string // as found; compare with media.NormalizeExt

	IsSupportedMedia         bool
	SupportsEmbeddedMetadata bool

	// The sidecar, if one was found. Resolved once, while planning.
	SidecarPath   string
	SidecarExists bool
	SidecarRule   string // name of the naming rule that matched

	// Unique (case-insensitively) across the run.
	OutputFileName string
	OutputPath     string

	// The file is the video half of a motion photo.
	MotionCompanion bool
}

// routedFile is a file that goes straight to the error area
// instead of being reconciled.
type routedFile struct {
	FSPath        string
	ErrorFileName string
	Reason        routeReason

	// a sidecar that goes with it, if any
	SidecarPath      string
	ErrorSidecarName string
}

type routeReason string

const (
	routeUnsupported    routeReason = "unsupported media type"
	routeMissingSidecar routeReason = "no sidecar found"
	routeOrphanSidecar  routeReason = "sidecar without media file"
)
