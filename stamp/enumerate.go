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
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"
)

// enumerate returns the paths of all regular files under the root of fsys.
// Directories in skip are not entered. The order is deterministic: each
// directory's entries are sorted the way Google sorts album contents, and
// subdirectories are listed where they sort.
func enumerate(ctx context.Context, logger *zap.Logger, fsys fs.FS, skip map[string]bool) ([]string, error) {
	var files []string
	if err := enumerateDir(ctx, logger, fsys, ".", skip, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func enumerateDir(ctx context.Context, logger *zap.Logger, fsys fs.FS, dir string, skip map[string]bool, files *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("%w: reading directory %s: %w", ErrEnumeration, dir, err)
	}
	sortEntries(entries)

	for _, d := range entries {
		fpath := path.Join(dir, d.Name())
		switch {
		case d.IsDir():
			if skip[fpath] {
				logger.Info("skipping directory", zap.String("dir", fpath))
				continue
			}
			if err := enumerateDir(ctx, logger, fsys, fpath, skip, files); err != nil {
				return err
			}
		case d.Type().IsRegular():
			*files = append(*files, fpath)
		default:
			logger.Debug("skipping non-regular file",
				zap.String("filepath", fpath),
				zap.Stringer("type", d.Type()))
		}
	}
	return nil
}

// sortEntries sorts directory entries in what I think is the same way
// Google does before truncating long filenames: first by length of the
// name without extension, then naturally; i.e. [a1, a20, a10] => [a1, a10, a20].
func sortEntries(entries []fs.DirEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		iName, jName := entries[i].Name(), entries[j].Name()
		iNameNoExt, jNameNoExt := strings.TrimSuffix(iName, path.Ext(iName)), strings.TrimSuffix(jName, path.Ext(jName))
		if len(iNameNoExt) != len(jNameNoExt) {
			return len(iNameNoExt) < len(jNameNoExt)
		}
		if natural.Less(iName, jName) {
			return true
		}
		if natural.Less(jName, iName) {
			return false
		}
		return iName < jName
	})
}
