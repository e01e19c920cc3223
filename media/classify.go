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

// Package media knows about media files themselves: which kinds are supported,
// how to tell whether one already carries a capture timestamp, and how to write
// one into it.
package media

import (
	"errors"
	"fmt"
	"strings"
)

// Type is one entry of the supported media type table.
type Type struct {
	// File extension including the leading dot, e.g. ".jpg".
	// Matching is case-insensitive.
	Extension string `json:"extension"`

	// Whether a capture timestamp can be written into files of this type.
	SupportsEmbeddedMetadata bool `json:"supports_embedded_metadata"`
}

// DefaultTypes returns the built-in media type table.
func DefaultTypes() []Type {
	return []Type{
		{Extension: ".avi", SupportsEmbeddedMetadata: false},
		{Extension: ".dng", SupportsEmbeddedMetadata: false},
		{Extension: ".gif", SupportsEmbeddedMetadata: false},
		{Extension: ".heic", SupportsEmbeddedMetadata: true},
		{Extension: ".jpeg", SupportsEmbeddedMetadata: true},
		{Extension: ".jpg", SupportsEmbeddedMetadata: true},
		{Extension: ".m4v", SupportsEmbeddedMetadata: false},
		{Extension: ".mov", SupportsEmbeddedMetadata: true},
		{Extension: ".mp4", SupportsEmbeddedMetadata: false},
		{Extension: ".png", SupportsEmbeddedMetadata: false},
		{Extension: ".webp", SupportsEmbeddedMetadata: false},
	}
}

// Class is the classification of a file extension.
type Class struct {
	Supported        bool
	EmbeddedMetadata bool // only meaningful if Supported
}

// Classifier classifies file extensions against a fixed table. It is
// immutable after construction and safe for concurrent use.
type Classifier struct {
	types []Type
	index map[string]Type
}

// NewClassifier returns a classifier for the given table. The table must not
// be empty, and every extension must start with a dot and appear only once.
func NewClassifier(types []Type) (*Classifier, error) {
	if len(types) == 0 {
		return nil, errors.New("media type table is empty")
	}
	c := &Classifier{
		types: make([]Type, 0, len(types)),
		index: make(map[string]Type, len(types)),
	}
	for i, t := range types {
		ext := NormalizeExt(t.Extension)
		if len(ext) < 2 || ext[0] != '.' {
			return nil, fmt.Errorf("media type %d: invalid extension %q", i, t.Extension)
		}
		if _, dup := c.index[ext]; dup {
			return nil, fmt.Errorf("media type %d: duplicate extension %q", i, t.Extension)
		}
		t.Extension = ext
		c.index[ext] = t
		c.types = append(c.types, t)
	}
	return c, nil
}

// Classify returns the class of the file extension ext (with leading dot).
// Unknown extensions are unsupported.
func (c *Classifier) Classify(ext string) Class {
	t, ok := c.index[NormalizeExt(ext)]
	if !ok {
		return Class{}
	}
	return Class{Supported: true, EmbeddedMetadata: t.SupportsEmbeddedMetadata}
}

// Types returns the table in its original order, with normalized extensions.
func (c *Classifier) Types() []Type {
	return append([]Type(nil), c.types...)
}

// NormalizeExt returns the form of ext used for matching.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimSpace(ext))
}
