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

package pathset

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// 🛡️ Predicate is a single keep/drop decision over a candidate path. Keep
// returns false together with a human-readable reason when the path must be
// dropped. Predicates are independent; the chain order only fixes which
// reason gets logged first.
type Predicate struct {
	Name string
	Keep func(path string) (bool, string)
}

// intrinsicPredicates run against the raw path as written, before resolution.
func intrinsicPredicates() []Predicate {
	return []Predicate{
		{
			Name: "absolute",
			Keep: func(path string) (bool, string) {
				if !filepath.IsAbs(path) {
					return false, "path is not absolute"
				}
				return true, ""
			},
		},
		{
			Name: "exists",
			Keep: func(path string) (bool, string) {
				if _, err := os.Stat(path); err != nil {
					return false, "path does not exist"
				}
				return true, ""
			},
		},
	}
}

// destPredicates run against the resolved path, with dest already resolved.
func destPredicates(dest string) []Predicate {
	return []Predicate{
		{
			Name: "destination-not-inside-source",
			Keep: func(path string) (bool, string) {
				if isAncestor(path, dest) {
					return false, "path contains the backup destination"
				}
				return true, ""
			},
		},
		{
			Name: "source-not-destination",
			Keep: func(path string) (bool, string) {
				same, err := SameFile(path, dest)
				if err != nil {
					return false, "path identity could not be checked"
				}
				if same {
					return false, "path is the backup destination"
				}
				return true, ""
			},
		},
		{
			Name: "source-not-inside-destination",
			Keep: func(path string) (bool, string) {
				if isAncestor(dest, path) {
					return false, "path is inside the backup destination"
				}
				return true, ""
			},
		},
	}
}

// 🚿 Filter applies the predicate chain to paths and returns the surviving
// entries in resolved form, preserving input order. dest must already be
// resolved. Rejections are logged at warn level and are never fatal; an
// empty result is a valid outcome.
func Filter(ctx context.Context, paths []string, dest string) []string {
	logger := zerolog.Ctx(ctx)
	logger.Info().Msg("filtering paths")

	pre := intrinsicPredicates()
	post := destPredicates(dest)

	kept := make([]string, 0, len(paths))
candidates:
	for _, path := range paths {
		for _, pred := range pre {
			if ok, reason := pred.Keep(path); !ok {
				logger.Warn().Str("path", path).Str("filter", pred.Name).Msgf("%s, ignoring", reason)
				continue candidates
			}
		}

		resolved, err := Resolve(path)
		if err != nil {
			logger.Warn().Str("path", path).Err(err).Msg("path cannot be resolved, ignoring")
			continue
		}

		for _, pred := range post {
			if ok, reason := pred.Keep(resolved); !ok {
				logger.Warn().Str("path", path).Str("filter", pred.Name).Msgf("%s, ignoring", reason)
				continue candidates
			}
		}

		kept = append(kept, resolved)
	}

	logger.Debug().Strs("paths", kept).Msg("paths passing filters")
	return kept
}
