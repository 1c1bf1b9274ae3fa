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

// Package pathset reduces a raw list of backup candidates to the minimal
// set of resolved paths worth copying: filtering out unusable entries,
// collapsing duplicates by filesystem identity, and dropping every path
// already covered by an ancestor in the same set.
package pathset

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"gitlab.com/tozd/go/errors"
)

// 🧭 Resolve returns the canonical form of path: absolute, cleaned, with
// every symlink component evaluated. Two calls that return the same string
// name the same filesystem object (modulo hard links, which SameFile covers).
func Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Errorf("making %q absolute: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Errorf("resolving %q: %w", path, err)
	}
	return resolved, nil
}

// 🔍 SameFile reports whether a and b denote the same filesystem object.
// Identity is device+inode, never string equality.
func SameFile(a, b string) (bool, error) {
	fa, err := os.Stat(a)
	if err != nil {
		return false, errors.Errorf("stat %q: %w", a, err)
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false, errors.Errorf("stat %q: %w", b, err)
	}
	return os.SameFile(fa, fb), nil
}

// identity is the device+inode pair used for deduplication.
type identity struct {
	dev uint64
	ino uint64
}

func identityOf(path string) (identity, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return identity{}, errors.Errorf("stat %q: %w", path, err)
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return identity{}, errors.Errorf("no stat identity available for %q", path)
	}
	return identity{dev: uint64(st.Dev), ino: st.Ino}, nil
}

// 🌲 isAncestor reports whether dir is a proper filesystem ancestor of path.
// Both arguments must already be canonical; on resolved paths a component
// prefix check is exact.
func isAncestor(dir, path string) bool {
	if dir == path {
		return false
	}
	if dir == string(filepath.Separator) {
		return filepath.IsAbs(path)
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
