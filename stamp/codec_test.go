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
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/timelinize/takeoutstamp/media"
)

// fakeCodec pretends to read and write embedded timestamps. Files are
// identified by base name.
type fakeCodec struct {
	mu sync.Mutex

	existing map[string]bool // already have a timestamp
	failing  map[string]bool // writes fail
	broken   map[string]bool // reads fail

	checked []string
	written map[string]time.Time
	gps     map[string]*media.GPS

	// called after each successful write, with the lock held
	afterWrite func(name string)
}

func newFakeCodec() *fakeCodec {
	return &fakeCodec{
		existing: make(map[string]bool),
		failing:  make(map[string]bool),
		broken:   make(map[string]bool),
		written:  make(map[string]time.Time),
		gps:      make(map[string]*media.GPS),
	}
}

func (c *fakeCodec) HasEmbeddedTimestamp(path string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := filepath.Base(path)
	c.checked = append(c.checked, name)
	if c.broken[name] {
		return false, errors.New("corrupt file")
	}
	_, written := c.written[name]
	return c.existing[name] || written, nil
}

func (c *fakeCodec) WriteEmbeddedTimestamp(path string, ts time.Time, gps *media.GPS) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := filepath.Base(path)
	if c.failing[name] {
		return &media.WriteError{Path: path, Err: errors.New("codec rejected file")}
	}
	c.written[name] = ts
	c.gps[name] = gps
	if c.afterWrite != nil {
		c.afterWrite(name)
	}
	return nil
}
