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
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/sbu/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 📦 NewCopyOperation creates the merge-copy operation.
func NewCopyOperation(opts Options) (Operation, error) {
	if err := opts.validate(); err != nil {
		return nil, errors.Errorf("invalid copy options: %w", err)
	}
	return &copyOperation{opts: opts}, nil
}

// 📦 copyOperation realizes a minimized path set onto the destination tree.
type copyOperation struct {
	opts     Options
	failures int
}

func (op *copyOperation) Name() string { return "copy" }

// 🏃 Execute copies every source. The target for a source is the
// destination root with the source's full absolute path appended, so
// unrelated sources can never collide and every file reconstructs its
// original location under the root.
func (op *copyOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("destination", op.opts.Destination).Msg("copying to backup directory")

	op.failures = 0
	for _, src := range op.opts.Sources {
		if err := op.copyPath(ctx, src); err != nil {
			return errors.Errorf("copying %q: %w", src, err)
		}
	}

	if op.failures > 0 {
		return errors.Errorf("%d file(s) could not be copied", op.failures)
	}
	return nil
}

// copyPath dispatches one source path, file or directory.
func (op *copyOperation) copyPath(ctx context.Context, src string) error {
	logger := zerolog.Ctx(ctx)
	target := filepath.Join(op.opts.Destination, src)
	logger.Debug().Str("source", src).Str("target", target).Msg("dispatching")

	fi, err := os.Stat(src)
	if err != nil {
		return op.fail(ctx, src, target, errors.Errorf("stat: %w", err))
	}
	if fi.IsDir() {
		return op.copyDir(ctx, src, target)
	}
	return op.copyFile(ctx, src, target, fi)
}

// copyFile applies the per-file conflict logic.
func (op *copyOperation) copyFile(ctx context.Context, src, target string, srcInfo os.FileInfo) error {
	_, err := os.Lstat(target)
	switch {
	case err == nil:
	case os.IsNotExist(err):
		return op.place(ctx, src, target, srcInfo, status.StatusNew, "")
	default:
		return op.fail(ctx, src, target, errors.Errorf("stat target: %w", err))
	}

	same, err := sameBytes(src, target)
	if err != nil {
		return op.fail(ctx, src, target, errors.Errorf("comparing with target: %w", err))
	}
	if same {
		// Not a conflict: there is nothing to do.
		op.report(ctx, status.FileEntry{Path: src, Target: target, Status: status.StatusUnchanged})
		return nil
	}

	switch op.opts.Mode {
	case Overwrite:
		return op.place(ctx, src, target, srcInfo, status.StatusOverwritten, "")
	case Ask:
		ok, err := op.opts.Confirmer.Confirm(ctx, src)
		if err != nil {
			return op.fail(ctx, src, target, errors.Errorf("confirming overwrite: %w", err))
		}
		if !ok {
			op.report(ctx, status.FileEntry{Path: src, Target: target, Status: status.StatusSkipped, Reason: "overwrite declined"})
			return nil
		}
		return op.place(ctx, src, target, srcInfo, status.StatusOverwritten, "confirmed")
	default: // NoOverwrite
		op.report(ctx, status.FileEntry{Path: src, Target: target, Status: status.StatusSkipped, Reason: "target exists and differs"})
		return nil
	}
}

// copyDir copies a whole subtree when the target is absent, and merges
// child by child when it already exists. Merging is what lets a backup
// into a destination holding a previous run augment it instead of
// clobbering or skipping the subtree.
func (op *copyOperation) copyDir(ctx context.Context, src, target string) error {
	logger := zerolog.Ctx(ctx)

	_, err := os.Lstat(target)
	if os.IsNotExist(err) {
		if !op.opts.Pretend {
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return op.fail(ctx, src, target, errors.Errorf("creating parent directories: %w", err))
			}
			if err := copyTreePreserving(src, target); err != nil {
				return op.fail(ctx, src, target, err)
			}
		}
		op.report(ctx, status.FileEntry{Path: src, Target: target, Status: status.StatusNew})
		return nil
	}
	if err != nil {
		return op.fail(ctx, src, target, errors.Errorf("stat target: %w", err))
	}

	logger.Debug().Str("source", src).Str("target", target).Msg("merging directories")
	entries, err := os.ReadDir(src)
	if err != nil {
		return op.fail(ctx, src, target, errors.Errorf("reading directory: %w", err))
	}
	for _, entry := range entries {
		if err := op.copyPath(ctx, filepath.Join(src, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// place performs (or pretends to perform) the actual copy of one file.
func (op *copyOperation) place(ctx context.Context, src, target string, srcInfo os.FileInfo, st status.FileStatus, reason string) error {
	if !op.opts.Pretend {
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return op.fail(ctx, src, target, errors.Errorf("creating parent directories: %w", err))
		}
		if err := copyFilePreserving(src, target, srcInfo); err != nil {
			return op.fail(ctx, src, target, err)
		}
	}
	op.report(ctx, status.FileEntry{Path: src, Target: target, Status: st, Reason: reason})
	return nil
}

// report records one decision with the tracker and the user logger.
func (op *copyOperation) report(ctx context.Context, e status.FileEntry) {
	e.Pretend = op.opts.Pretend
	op.opts.Tracker.Add(e)
	op.opts.Logger.LogFileEntry(ctx, e)
}

// fail records a per-file failure. It only propagates an error when the
// run is configured to abort on the first failure; otherwise the entry is
// logged, counted, and the run continues.
func (op *copyOperation) fail(ctx context.Context, src, target string, err error) error {
	op.failures++
	op.report(ctx, status.FileEntry{
		Path:   src,
		Target: target,
		Status: status.StatusFailed,
		Reason: "io failure",
		Err:    err,
	})
	if op.opts.AbortOnError {
		return err
	}
	return nil
}
