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

// Package backuplist reads the list of backup candidates: a UTF-8 text
// file with one path per line, # comments, blank lines, optional leading
// ~ expansion, and glob patterns.
package backuplist

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNotFound means the backup list path does not exist.
	ErrNotFound = errors.Base("backup list does not exist")
	// ErrNotFile means the backup list path is not a regular file.
	ErrNotFile = errors.Base("backup list is not a regular file")
)

// 📖 Parse reads the backup list at path and returns the candidate paths in
// file order. A line is dropped after trimming when it is empty or starts
// with '#'. A leading "~" is expanded to the invoking user's home
// directory; expansion failure skips the single line with a warning. A line
// containing glob metacharacters is expanded with doublestar and
// contributes every match; a pattern matching nothing is skipped with a
// warning. Per-line problems are never fatal.
func Parse(ctx context.Context, path string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	fi, err := os.Stat(path)
	if err != nil {
		return nil, errors.Errorf("%w: %q", ErrNotFound, path)
	}
	if !fi.Mode().IsRegular() {
		return nil, errors.Errorf("%w: %q", ErrNotFile, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening backup list %q: %w", path, err)
	}
	defer f.Close()

	logger.Info().Str("list", path).Msg("reading files to back up")

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		expanded, ok := expandHome(line)
		if !ok {
			logger.Warn().Str("path", line).Msg("cannot expand path, ignoring")
			continue
		}

		if isGlobPattern(expanded) {
			matches, err := doublestar.FilepathGlob(expanded)
			if err != nil {
				logger.Warn().Str("pattern", expanded).Err(err).Msg("bad glob pattern, ignoring")
				continue
			}
			if len(matches) == 0 {
				logger.Warn().Str("pattern", expanded).Msg("glob pattern matched nothing, ignoring")
				continue
			}
			paths = append(paths, matches...)
			continue
		}

		paths = append(paths, expanded)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("reading backup list %q: %w", path, err)
	}

	logger.Debug().Strs("paths", paths).Msg("found candidate paths")
	return paths, nil
}

// expandHome replaces a leading ~ with the user's home directory. Only the
// bare "~" and "~/..." forms are supported; "~user" is not.
func expandHome(path string) (string, bool) {
	if !strings.HasPrefix(path, "~") {
		return path, true
	}
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return "", false
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	if path == "~" {
		return home, true
	}
	return filepath.Join(home, path[2:]), true
}

func isGlobPattern(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
