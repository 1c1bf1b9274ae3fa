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
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/sbu/pkg/log"
	"github.com/walteh/sbu/pkg/operation"
	"github.com/walteh/sbu/pkg/pathset"
	"github.com/walteh/sbu/pkg/status"
)

// 🧪 testEnv is everything a copy test needs.
type testEnv struct {
	ctx     context.Context
	src     string // resolved source root
	dest    string // resolved destination root
	tracker *status.Tracker
}

func newTestEnv(t *testing.T, files map[string]string) *testEnv {
	t.Helper()

	srcRoot := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(srcRoot, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	src, err := pathset.Resolve(srcRoot)
	require.NoError(t, err)
	dest, err := pathset.Resolve(t.TempDir())
	require.NoError(t, err)

	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())

	return &testEnv{
		ctx:     ctx,
		src:     src,
		dest:    dest,
		tracker: status.NewTracker(),
	}
}

func (e *testEnv) options(sources ...string) operation.Options {
	return operation.Options{
		Sources:     sources,
		Destination: e.dest,
		Mode:        operation.NoOverwrite,
		Tracker:     e.tracker,
		Logger:      log.New(io.Discard, zerolog.WarnLevel),
	}
}

// target mirrors the engine's full-source-path layout.
func (e *testEnv) target(src string) string {
	return filepath.Join(e.dest, src)
}

func (e *testEnv) run(t *testing.T, opts operation.Options) error {
	t.Helper()
	op, err := operation.NewCopyOperation(opts)
	require.NoError(t, err)
	return op.Execute(e.ctx)
}

func mutations(tr *status.Tracker) []status.FileEntry {
	var out []status.FileEntry
	for _, e := range tr.Entries() {
		if e.Mutating() {
			out = append(out, e)
		}
	}
	return out
}

// 🧪 TestCopyMirrorsFullSourcePath: the destination tree reconstructs the
// absolute source location, so unrelated sources never collide.
func TestCopyMirrorsFullSourcePath(t *testing.T) {
	env := newTestEnv(t, map[string]string{"photo.jpg": "pixels"})
	file := filepath.Join(env.src, "photo.jpg")

	require.NoError(t, env.run(t, env.options(file)))

	got, err := os.ReadFile(env.target(file))
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(got))
}

// 🧪 TestCopyPreservesMetadata: permissions and mtime survive the copy.
func TestCopyPreservesMetadata(t *testing.T) {
	env := newTestEnv(t, map[string]string{"script.sh": "#!/bin/sh\n"})
	file := filepath.Join(env.src, "script.sh")
	require.NoError(t, os.Chmod(file, 0o750))
	stamp := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(file, stamp, stamp))

	require.NoError(t, env.run(t, env.options(file)))

	fi, err := os.Stat(env.target(file))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), fi.Mode().Perm())
	assert.True(t, fi.ModTime().Equal(stamp))
}

// 🧪 TestMergeAugmentsExistingBackup: a destination holding a previous
// partial backup gains the new file and keeps the old one.
func TestMergeAugmentsExistingBackup(t *testing.T) {
	env := newTestEnv(t, map[string]string{"b/new.txt": "new"})
	dir := filepath.Join(env.src, "b")

	old := filepath.Join(env.target(dir), "old.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(old), 0o755))
	require.NoError(t, os.WriteFile(old, []byte("old"), 0o644))

	require.NoError(t, env.run(t, env.options(dir)))

	oldContent, err := os.ReadFile(old)
	require.NoError(t, err)
	assert.Equal(t, "old", string(oldContent))
	newContent, err := os.ReadFile(filepath.Join(env.target(dir), "new.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(newContent))
}

// 🧪 TestMergeIsNonDestructive: destination content unrelated to any
// source is untouched.
func TestMergeIsNonDestructive(t *testing.T) {
	env := newTestEnv(t, map[string]string{"data/a.txt": "a"})
	unrelated := filepath.Join(env.dest, "unrelated.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep me"), 0o644))

	require.NoError(t, env.run(t, env.options(filepath.Join(env.src, "data"))))

	got, err := os.ReadFile(unrelated)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(got))
}

// 🧪 TestIdenticalTargetIsNoOp: byte-identical files are not a conflict;
// dry run and real run produce the same empty mutation log.
func TestIdenticalTargetIsNoOp(t *testing.T) {
	env := newTestEnv(t, map[string]string{"same.txt": "identical"})
	file := filepath.Join(env.src, "same.txt")

	target := env.target(file)
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte("identical"), 0o644))

	pretendOpts := env.options(file)
	pretendOpts.Pretend = true
	require.NoError(t, env.run(t, pretendOpts))
	assert.Empty(t, mutations(env.tracker))

	realTracker := status.NewTracker()
	realOpts := env.options(file)
	realOpts.Tracker = realTracker
	require.NoError(t, env.run(t, realOpts))
	assert.Empty(t, mutations(realTracker))

	entries := realTracker.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, status.StatusUnchanged, entries[0].Status)
}

// 🧪 TestConflictModes drives a differing target through each policy.
func TestConflictModes(t *testing.T) {
	tests := []struct {
		name       string
		mode       operation.ConflictMode
		answer     bool
		wantBytes  string
		wantStatus status.FileStatus
	}{
		{name: "no_overwrite_keeps_target", mode: operation.NoOverwrite, wantBytes: "old", wantStatus: status.StatusSkipped},
		{name: "overwrite_replaces_target", mode: operation.Overwrite, wantBytes: "new", wantStatus: status.StatusOverwritten},
		{name: "ask_confirmed_replaces", mode: operation.Ask, answer: true, wantBytes: "new", wantStatus: status.StatusOverwritten},
		{name: "ask_declined_keeps", mode: operation.Ask, answer: false, wantBytes: "old", wantStatus: status.StatusSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, map[string]string{"c.txt": "new"})
			file := filepath.Join(env.src, "c.txt")
			target := env.target(file)
			require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
			require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))

			var asked []string
			opts := env.options(file)
			opts.Mode = tt.mode
			opts.Confirmer = operation.ConfirmerFunc(func(ctx context.Context, path string) (bool, error) {
				asked = append(asked, path)
				return tt.answer, nil
			})

			require.NoError(t, env.run(t, opts))

			got, err := os.ReadFile(target)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBytes, string(got))

			entries := env.tracker.Entries()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantStatus, entries[0].Status)

			if tt.mode == operation.Ask {
				assert.Equal(t, []string{file}, asked)
			} else {
				assert.Empty(t, asked)
			}
		})
	}
}

// 🧪 TestPretendNeverMutates: every decision runs, nothing is written.
func TestPretendNeverMutates(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"tree/a.txt":     "a",
		"tree/sub/b.txt": "b",
		"solo.txt":       "solo",
	})

	opts := env.options(filepath.Join(env.src, "tree"), filepath.Join(env.src, "solo.txt"))
	opts.Pretend = true
	require.NoError(t, env.run(t, opts))

	entries, err := os.ReadDir(env.dest)
	require.NoError(t, err)
	assert.Empty(t, entries, "pretend run must not create anything")

	for _, e := range env.tracker.Entries() {
		assert.True(t, e.Pretend)
		assert.Equal(t, status.StatusNew, e.Status)
	}
	assert.Len(t, env.tracker.Entries(), 2)
}

// 🧪 TestPerFileFailureContinues: a broken source is reported and counted,
// the rest of the run still happens, and the aggregate error reflects it.
func TestPerFileFailureContinues(t *testing.T) {
	env := newTestEnv(t, map[string]string{"good.txt": "ok"})
	broken := filepath.Join(env.src, "dangling")
	require.NoError(t, os.Symlink(filepath.Join(env.src, "nowhere"), broken))
	good := filepath.Join(env.src, "good.txt")

	err := env.run(t, env.options(broken, good))
	require.Error(t, err)

	_, statErr := os.Stat(env.target(good))
	assert.NoError(t, statErr, "good file must still be copied")

	sum := env.tracker.Summarize()
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Copied)
}

// 🧪 TestPerFileFailureAborts: with AbortOnError the first failure stops
// the run before later sources are processed.
func TestPerFileFailureAborts(t *testing.T) {
	env := newTestEnv(t, map[string]string{"good.txt": "ok"})
	broken := filepath.Join(env.src, "dangling")
	require.NoError(t, os.Symlink(filepath.Join(env.src, "nowhere"), broken))
	good := filepath.Join(env.src, "good.txt")

	opts := env.options(broken, good)
	opts.AbortOnError = true
	err := env.run(t, opts)
	require.Error(t, err)

	_, statErr := os.Stat(env.target(good))
	assert.True(t, os.IsNotExist(statErr), "run must stop before the second source")
}

// 🧪 TestNewCopyOperationValidation
func TestNewCopyOperationValidation(t *testing.T) {
	_, err := operation.NewCopyOperation(operation.Options{})
	require.Error(t, err)

	_, err = operation.NewCopyOperation(operation.Options{
		Destination: "/tmp",
		Mode:        operation.Ask,
		Tracker:     status.NewTracker(),
		Logger:      log.New(io.Discard, zerolog.WarnLevel),
	})
	require.Error(t, err, "ask mode without a confirmer must be rejected")
}
