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

// Package archive packs a staged backup tree into a single compressed
// archive and derives default archive filenames.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🗜️ Algorithm selects the archive container and compression.
type Algorithm string

const (
	Zip    Algorithm = "zip"
	Tar    Algorithm = "tar"
	TarGz  Algorithm = "tar.gz"
	TarBz2 Algorithm = "tar.bz2"
	TarXz  Algorithm = "tar.xz"
)

// Algorithms lists the supported algorithm tags.
func Algorithms() []string {
	return []string{string(Zip), string(Tar), string(TarGz), string(TarBz2), string(TarXz)}
}

// ParseAlgorithm converts a tag into an Algorithm.
func ParseAlgorithm(tag string) (Algorithm, error) {
	switch Algorithm(tag) {
	case Zip, Tar, TarGz, TarBz2, TarXz:
		return Algorithm(tag), nil
	default:
		return "", errors.Errorf("unknown compression algorithm %q (supported: %s)",
			tag, strings.Join(Algorithms(), ", "))
	}
}

// Extension returns the file extension for the algorithm, dot included.
func (a Algorithm) Extension() string {
	return "." + string(a)
}

const (
	defaultBaseName = "backup.sbu"
	maxNameIndex    = 100
)

var (
	// ErrNoDefaultName means every default archive filename up to the
	// bounded attempt count was already taken.
	ErrNoDefaultName = errors.Base("could not generate a default file name for compressed archive")
	// ErrParentNotFound means the directory that should hold the archive
	// does not exist.
	ErrParentNotFound = errors.Base("archive parent directory does not exist")
)

// 📛 ResolveTarget turns the user-supplied destination into the archive
// file path. A directory destination gets a derived default name
// (backup.sbu<ext>, then backup.sbu-1<ext> … up to a bounded attempt
// count); a file destination gets the algorithm extension appended when
// missing.
func ResolveTarget(dest string, algo Algorithm) (string, error) {
	parent := filepath.Dir(dest)
	if fi, err := os.Stat(parent); err != nil || !fi.IsDir() {
		return "", errors.Errorf("%w: %q", ErrParentNotFound, parent)
	}

	ext := algo.Extension()
	if fi, err := os.Stat(dest); err == nil && fi.IsDir() {
		candidate := filepath.Join(dest, defaultBaseName+ext)
		for i := 1; ; i++ {
			if _, err := os.Stat(candidate); err != nil {
				return candidate, nil
			}
			if i > maxNameIndex {
				return "", errors.WithStack(ErrNoDefaultName)
			}
			candidate = filepath.Join(dest, fmt.Sprintf("%s-%d%s", defaultBaseName, i, ext))
		}
	}

	if !strings.HasSuffix(dest, ext) {
		dest += ext
	}
	return dest, nil
}
