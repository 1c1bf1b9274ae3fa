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

	"github.com/rs/zerolog"
	"github.com/walteh/sbu/pkg/archive"
	"gitlab.com/tozd/go/errors"
)

// 🗜️ NewArchiveOperation creates the archive operation: it stages the
// merge-copy engine into a private scratch directory and packs the result
// into a single archive at target. target must already be resolved via
// archive.ResolveTarget. opts.Destination is ignored; the scratch
// directory takes its place.
func NewArchiveOperation(opts Options, algo archive.Algorithm, target string) (Operation, error) {
	opts.Destination = "-" // replaced by the scratch directory per run
	if err := opts.validate(); err != nil {
		return nil, errors.Errorf("invalid archive options: %w", err)
	}
	if target == "" {
		return nil, errors.New("archive target is required")
	}
	return &archiveOperation{opts: opts, algo: algo, target: target}, nil
}

type archiveOperation struct {
	opts   Options
	algo   archive.Algorithm
	target string
}

func (op *archiveOperation) Name() string { return "archive" }

// 🏃 Execute stages and packs. An existing archive at the target follows
// the run's conflict mode: kept under NoOverwrite, replaced under
// Overwrite, and delegated to the Confirmer under Ask.
func (op *archiveOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("archive", op.target).Msg("compressing files")

	if _, err := os.Lstat(op.target); err == nil {
		op.opts.Logger.Warning("archive destination already exists: " + op.target)
		proceed := op.opts.Mode == Overwrite
		if !proceed && op.opts.Mode == Ask {
			var err error
			proceed, err = op.opts.Confirmer.Confirm(ctx, op.target)
			if err != nil {
				return errors.Errorf("confirming archive overwrite: %w", err)
			}
		}
		if !proceed {
			op.opts.Logger.Info("no files are compressed")
			return nil
		}
	}

	scratch, err := os.MkdirTemp("", "sbu_")
	if err != nil {
		return errors.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)
	logger.Debug().Str("scratch", scratch).Msg("created scratch directory")

	// The scratch area starts empty, so NoOverwrite staging never
	// conflicts.
	stageOpts := op.opts
	stageOpts.Destination = scratch
	stageOpts.Mode = NoOverwrite
	stage, err := NewCopyOperation(stageOpts)
	if err != nil {
		return errors.Errorf("creating staging operation: %w", err)
	}
	if err := stage.Execute(ctx); err != nil {
		return errors.Errorf("staging files: %w", err)
	}

	if op.opts.Pretend {
		logger.Info().Str("archive", op.target).Msg("pretend mode, archive not written")
		return nil
	}
	return archive.Pack(ctx, op.algo, scratch, op.target)
}
