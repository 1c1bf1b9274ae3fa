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

package pathset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/sbu/pkg/pathset"
)

// 🧪 filterEnv builds a source tree and a destination directory.
func filterEnv(t *testing.T) (src string, dest string) {
	t.Helper()
	src = mkTree(t, map[string]string{
		"docs/a.txt": "a",
		"b.txt":      "b",
	})
	destRoot := t.TempDir()
	resolved, err := pathset.Resolve(destRoot)
	require.NoError(t, err)
	return src, resolved
}

// 🧪 TestFilterDropsUnusableEntries exercises every predicate in one pass.
func TestFilterDropsUnusableEntries(t *testing.T) {
	src, dest := filterEnv(t)

	// A path inside the destination, to be dropped.
	insideDest := filepath.Join(dest, "held.txt")
	require.NoError(t, os.WriteFile(insideDest, []byte("x"), 0o644))

	input := []string{
		"relative/path.txt",              // not absolute
		filepath.Join(src, "missing"),    // does not exist
		filepath.Dir(dest),               // contains the destination
		dest,                             // is the destination
		insideDest,                       // inside the destination
		filepath.Join(src, "docs"),       // survives
		filepath.Join(src, "b.txt"),      // survives
	}

	got := pathset.Filter(testContext(t), input, dest)
	assert.Equal(t, []string{
		filepath.Join(src, "docs"),
		filepath.Join(src, "b.txt"),
	}, got)
}

// 🧪 TestFilterIdempotent: filtering twice equals filtering once.
func TestFilterIdempotent(t *testing.T) {
	src, dest := filterEnv(t)
	ctx := testContext(t)

	input := []string{
		"nope",
		filepath.Join(src, "docs"),
		filepath.Join(src, "b.txt"),
		dest,
	}
	once := pathset.Filter(ctx, input, dest)
	twice := pathset.Filter(ctx, once, dest)
	assert.Equal(t, once, twice)
}

// 🧪 TestFilterResolvesSymlinks: survivors come back in resolved form.
func TestFilterResolvesSymlinks(t *testing.T) {
	src, dest := filterEnv(t)

	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(filepath.Join(src, "b.txt"), link))

	got := pathset.Filter(testContext(t), []string{link}, dest)
	assert.Equal(t, []string{filepath.Join(src, "b.txt")}, got)
}

// 🧪 TestFilterEmptyResultIsSuccess: a fully rejected list is not an error.
func TestFilterEmptyResultIsSuccess(t *testing.T) {
	_, dest := filterEnv(t)
	got := pathset.Filter(testContext(t), []string{"relative", "/definitely/not/there"}, dest)
	assert.Empty(t, got)
}
