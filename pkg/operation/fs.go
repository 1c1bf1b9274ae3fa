// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// copyFilePreserving copies src to dst, carrying over permissions and the
// modification time.
func copyFilePreserving(src, dst string, srcInfo os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening %q: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating %q: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Errorf("copying %q to %q: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return errors.Errorf("closing %q: %w", dst, err)
	}

	// The open mode is masked by umask; restore the exact permissions.
	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return errors.Errorf("preserving mode of %q: %w", dst, err)
	}
	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return errors.Errorf("preserving times of %q: %w", dst, err)
	}
	return nil
}

// copyTreePreserving copies the directory src to the not-yet-existing dst,
// preserving structure, permissions and modification times. Symlinks are
// recreated as links.
func copyTreePreserving(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("walking %q: %w", path, err)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return errors.Errorf("relativizing %q: %w", path, err)
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return errors.Errorf("stat %q: %w", path, err)
		}

		switch {
		case d.IsDir():
			if err := os.MkdirAll(target, info.Mode().Perm()); err != nil {
				return errors.Errorf("creating directory %q: %w", target, err)
			}
			return nil
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return errors.Errorf("reading link %q: %w", path, err)
			}
			if err := os.Symlink(link, target); err != nil {
				return errors.Errorf("recreating link %q: %w", target, err)
			}
			return nil
		default:
			return copyFilePreserving(path, target, info)
		}
	})
}

const compareChunkSize = 64 * 1024

// sameBytes reports whether the two files have identical content. Sizes
// are compared first as a fast path.
func sameBytes(a, b string) (bool, error) {
	fia, err := os.Stat(a)
	if err != nil {
		return false, errors.Errorf("stat %q: %w", a, err)
	}
	fib, err := os.Stat(b)
	if err != nil {
		return false, errors.Errorf("stat %q: %w", b, err)
	}
	if fia.Size() != fib.Size() {
		return false, nil
	}

	fa, err := os.Open(a)
	if err != nil {
		return false, errors.Errorf("opening %q: %w", a, err)
	}
	defer fa.Close()
	fb, err := os.Open(b)
	if err != nil {
		return false, errors.Errorf("opening %q: %w", b, err)
	}
	defer fb.Close()

	bufA := make([]byte, compareChunkSize)
	bufB := make([]byte, compareChunkSize)
	for {
		na, errA := io.ReadFull(fa, bufA)
		nb, errB := io.ReadFull(fb, bufB)
		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}

		doneA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		doneB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		switch {
		case doneA && doneB:
			return true, nil
		case doneA != doneB:
			return false, nil
		case errA != nil:
			return false, errors.Errorf("reading %q: %w", a, errA)
		case errB != nil:
			return false, errors.Errorf("reading %q: %w", b, errB)
		}
	}
}
