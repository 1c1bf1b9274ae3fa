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

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📐 Minimize computes the minimal covering subset of paths: the maximal
// elements under the containment partial order (a < b iff b is an ancestor
// directory of a). Copying the result reaches exactly the same files as
// copying the full input.
//
// Entries are first deduplicated by filesystem identity, so textually
// distinct paths naming the same object (hard links, paths through
// symlinks) collapse to one. The pairwise scan is O(n²); when no two
// elements are comparable every pair has to be inspected to prove it, so
// there is nothing cheaper in the worst case.
//
// Output has set semantics: no duplicates, no ordering guarantee, and for
// all a ≠ b in the result neither is an ancestor of the other.
func Minimize(ctx context.Context, paths []string) ([]string, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Msg("minimizing paths to copy")

	// Collapse duplicates by device+inode.
	seen := make(map[identity]bool, len(paths))
	uniq := make([]string, 0, len(paths))
	for _, path := range paths {
		id, err := identityOf(path)
		if err != nil {
			return nil, errors.Errorf("deduplicating %q: %w", path, err)
		}
		if seen[id] {
			logger.Debug().Str("path", path).Msg("duplicate filesystem object, collapsed")
			continue
		}
		seen[id] = true
		uniq = append(uniq, path)
	}

	// Mark every element properly contained in another element. Equality
	// cannot survive deduplication; seeing it means the filesystem changed
	// under us, which we refuse to paper over.
	contained := make([]bool, len(uniq))
	for i, p1 := range uniq {
		for j := i + 1; j < len(uniq); j++ {
			p2 := uniq[j]
			same, err := SameFile(p1, p2)
			if err != nil {
				return nil, errors.Errorf("comparing %q and %q: %w", p1, p2, err)
			}
			switch {
			case same:
				return nil, errors.Errorf("deduplicated paths %q and %q still name the same object", p1, p2)
			case isAncestor(p1, p2):
				contained[j] = true
			case isAncestor(p2, p1):
				contained[i] = true
			}
		}
	}

	result := make([]string, 0, len(uniq))
	for i, path := range uniq {
		if !contained[i] {
			result = append(result, path)
		}
	}

	logger.Debug().Strs("paths", result).Msg("paths left after minimizing")
	return result, nil
}
