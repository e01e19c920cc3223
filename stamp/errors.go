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

import "errors"

// Errors that abort a run. They are wrapped with details, so
// check for them with errors.Is.
var (
	// The run cannot start: a directory is missing, not empty,
	// or the configuration is invalid. No file has been touched.
	ErrPrecondition = errors.New("precondition failed")

	// The input could not be fully listed.
	ErrEnumeration = errors.New("enumerating input")

	// A file could not be copied.
	ErrCopy = errors.New("copying file")

	// A file could not be moved into the error area.
	ErrRename = errors.New("moving file")

	// A file's modification time could not be set.
	ErrModTime = errors.New("setting modification time")
)
