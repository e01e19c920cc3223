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
	"path"
	"strconv"
	"strings"
	"sync"
)

// UsedNames is a set of file names that compares names case-insensitively.
// It only ever grows. It is not safe for concurrent use.
type UsedNames map[string]struct{}

// Contains returns true if name, ignoring case, is in the set.
func (u UsedNames) Contains(name string) bool {
	_, ok := u[strings.ToLower(name)]
	return ok
}

// Claim returns a name for the file that is not yet in the set, as
// computed by Dedupe, and adds it to the set.
func (u UsedNames) Claim(name string) string {
	name = Dedupe(name, u)
	u[strings.ToLower(name)] = struct{}{}
	return name
}

// ClaimWithSidecar claims a name for a file and the name of its sidecar,
// which is always the file name plus ".json" so that the two still pair up.
// The first name for which both are free is chosen: name itself, then
// name with "_<n>" inserted before the extension.
func (u UsedNames) ClaimWithSidecar(name string) (string, string) {
	base, ext := splitExt(name)
	candidate := name
	for n := 1; u.Contains(candidate) || u.Contains(candidate+".json"); n++ {
		candidate = base + "_" + strconv.Itoa(n) + ext
	}
	u[strings.ToLower(candidate)] = struct{}{}
	u[strings.ToLower(candidate+".json")] = struct{}{}
	return candidate, candidate + ".json"
}

// Dedupe returns name if it is not in used. Otherwise it inserts "_<n>"
// before the extension, counting up from 1 until the result is not in
// used. For example, if used has "picture.jpg" and "picture_1.jpg", it
// returns "picture_2.jpg". Dedupe does not modify used.
func Dedupe(name string, used UsedNames) string {
	if !used.Contains(name) {
		return name
	}
	base, ext := splitExt(name)
	for n := 1; ; n++ {
		candidate := base + "_" + strconv.Itoa(n) + ext
		if !used.Contains(candidate) {
			return candidate
		}
	}
}

// splitExt splits name into base and extension. A leading dot
// does not start an extension, so ".hidden" has none.
func splitExt(name string) (string, string) {
	ext := path.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

// errorArea hands out names in the error directory. Files routed there
// while planning have claimed theirs already; records whose metadata write
// fails claim theirs when it fails, so a file keeps its original name
// unless that name is really taken.
type errorArea struct {
	mu    sync.Mutex
	names UsedNames
}

func (e *errorArea) claimWithSidecar(name string) (string, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.names == nil {
		e.names = make(UsedNames)
	}
	return e.names.ClaimWithSidecar(name)
}
