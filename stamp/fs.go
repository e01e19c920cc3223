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
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/zeebo/blake3"
)

// prepareDirectories checks that the input exists and that the output
// and error directories are each absent or empty, then creates the
// ones that are absent. Nothing is created unless all checks pass.
func prepareDirectories(input, output, errorDir string) error {
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("%w: the input directory must exist: %w", ErrPrecondition, err)
	}
	for _, dir := range []string{output, errorDir} {
		if err := checkDirIsEmpty(dir); err != nil {
			return err
		}
	}
	for _, dir := range []string{output, errorDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: creating directory: %w", ErrPrecondition, err)
		}
	}
	return nil
}

// checkDirIsEmpty returns nil if dir does not exist or has nothing in it
// other than a .DS_Store file.
func checkDirIsEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrecondition, err)
	}
	for _, e := range entries {
		if e.Name() != ".DS_Store" {
			return fmt.Errorf("%w: if the directory %s already exists, it must be empty", ErrPrecondition, dir)
		}
	}
	return nil
}

// copyFromFS copies the file name in fsys to dst on disk. It never
// overwrites dst, and does not leave a partial dst behind if the copy fails. If verify is true, the written file is read back and
// its hash compared to the hash of what was read from the source.
func copyFromFS(fsys fs.FS, name, dst string, verify bool) error {
	src, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", ErrCopy, name, err)
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrCopy, dst, err)
	}

	var r io.Reader = src
	var srcHash *blake3.Hasher
	if verify {
		srcHash = blake3.New()
		r = io.TeeReader(src, srcHash)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("%w: %s to %s: %w", ErrCopy, name, dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("%w: closing %s: %w", ErrCopy, dst, err)
	}

	if verify {
		dstSum, err := hashFile(dst)
		if err != nil {
			return fmt.Errorf("%w: verifying %s: %w", ErrCopy, dst, err)
		}
		if !bytes.Equal(srcHash.Sum(nil), dstSum) {
			os.Remove(dst)
			return fmt.Errorf("%w: %s differs from its source %s", ErrCopy, dst, name)
		}
	}

	return nil
}

func hashFile(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// renameFunc is replaceable so tests can simulate a cross-device move.
var renameFunc = os.Rename

// moveFile moves src to dst. If they are on different devices, it
// copies then removes src. It never overwrites dst.
func moveFile(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%w: %s to %s: %w", ErrRename, src, dst, fs.ErrExist)
	}
	err := renameFunc(src, dst)
	if err == nil {
		return nil
	}
	if !isEXDEV(err) {
		return fmt.Errorf("%w: %w", ErrRename, err)
	}
	if err := copyFromFS(os.DirFS(filepath.Dir(src)), filepath.Base(src), dst, false); err != nil {
		return fmt.Errorf("%w: across devices: %w", ErrRename, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("%w: removing %s after copy: %w", ErrRename, src, err)
	}
	return nil
}

func isEXDEV(err error) bool {
	if errors.Is(err, syscall.EXDEV) {
		return true
	}
	var le *os.LinkError
	return errors.As(err, &le) && errors.Is(le.Err, syscall.EXDEV)
}

// setModTime sets both the access and modification times of the file.
func setModTime(filename string, ts time.Time) error {
	if err := os.Chtimes(filename, ts, ts); err != nil {
		return fmt.Errorf("%w: %w", ErrModTime, err)
	}
	return nil
}
