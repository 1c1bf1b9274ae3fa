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

package operation_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/sbu/pkg/archive"
	"github.com/walteh/sbu/pkg/operation"
)

// 🧪 TestArchiveOperationPacksStagedTree: the archive holds the staged
// destination-tree layout (full source paths below the root).
func TestArchiveOperationPacksStagedTree(t *testing.T) {
	env := newTestEnv(t, map[string]string{"notes/today.txt": "hello"})
	dir := filepath.Join(env.src, "notes")
	target := filepath.Join(t.TempDir(), "backup.zip")

	op, err := operation.NewArchiveOperation(env.options(dir), archive.Zip, target)
	require.NoError(t, err)
	require.NoError(t, op.Execute(env.ctx))

	r, err := zip.OpenReader(target)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	want := strings.TrimPrefix(filepath.Join(dir, "today.txt"), "/")
	assert.Contains(t, names, want)
}

// 🧪 TestArchiveOperationPretendWritesNothing
func TestArchiveOperationPretendWritesNothing(t *testing.T) {
	env := newTestEnv(t, map[string]string{"a.txt": "a"})
	target := filepath.Join(t.TempDir(), "backup.zip")

	opts := env.options(filepath.Join(env.src, "a.txt"))
	opts.Pretend = true
	op, err := operation.NewArchiveOperation(opts, archive.Zip, target)
	require.NoError(t, err)
	require.NoError(t, op.Execute(env.ctx))

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

// 🧪 TestArchiveOperationExistingTargetNoOverwrite: an existing archive is
// kept under the default conflict mode.
func TestArchiveOperationExistingTargetNoOverwrite(t *testing.T) {
	env := newTestEnv(t, map[string]string{"a.txt": "a"})
	target := filepath.Join(t.TempDir(), "backup.zip")
	require.NoError(t, os.WriteFile(target, []byte("existing"), 0o644))

	op, err := operation.NewArchiveOperation(env.options(filepath.Join(env.src, "a.txt")), archive.Zip, target)
	require.NoError(t, err)
	require.NoError(t, op.Execute(env.ctx))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(got))
}
