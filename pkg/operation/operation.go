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

	"github.com/walteh/sbu/pkg/log"
	"github.com/walteh/sbu/pkg/pathset"
	"github.com/walteh/sbu/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Operation is a single executable unit of a backup run.
type Operation interface {
	// Name identifies the operation in logs.
	Name() string
	// Execute runs the operation to completion.
	Execute(ctx context.Context) error
}

// ⚔️ ConflictMode governs what happens when a source file and an existing,
// differing destination file collide.
type ConflictMode int

const (
	NoOverwrite ConflictMode = iota // Keep the destination file
	Overwrite                       // Replace the destination file
	Ask                             // Delegate the decision to the Confirmer
)

// String returns a string representation of ConflictMode
func (m ConflictMode) String() string {
	switch m {
	case NoOverwrite:
		return "no-overwrite"
	case Overwrite:
		return "overwrite"
	case Ask:
		return "ask"
	default:
		return "unknown"
	}
}

var (
	// ErrDestinationNotFound means the backup destination does not exist.
	ErrDestinationNotFound = errors.Base("backup destination does not exist")
	// ErrDestinationNotADirectory means the backup destination is not a directory.
	ErrDestinationNotADirectory = errors.Base("backup destination is not a directory")
)

// 🧭 ResolveDestination validates that dest is an existing directory and
// returns its canonical form. The engine owns the destination for the whole
// run, so this happens exactly once, up front.
func ResolveDestination(dest string) (string, error) {
	fi, err := os.Stat(dest)
	if err != nil {
		return "", errors.Errorf("%w: %q", ErrDestinationNotFound, dest)
	}
	if !fi.IsDir() {
		return "", errors.Errorf("%w: %q", ErrDestinationNotADirectory, dest)
	}
	return pathset.Resolve(dest)
}

// 🔧 Options configures the merge-copy engine.
type Options struct {
	// Sources is the minimized set of resolved paths to copy.
	Sources []string
	// Destination is the resolved destination directory.
	Destination string
	// Mode is the conflict policy for differing target files.
	Mode ConflictMode
	// Pretend runs every decision without mutating the filesystem.
	Pretend bool
	// AbortOnError aborts the run on the first per-file I/O failure
	// instead of logging it and continuing.
	AbortOnError bool
	// Confirmer answers conflict prompts in Ask mode.
	Confirmer Confirmer
	// Tracker accumulates per-file outcomes.
	Tracker *status.Tracker
	// Logger is the user-facing logger.
	Logger *log.Logger
}

func (o *Options) validate() error {
	if o.Destination == "" {
		return errors.New("destination is required")
	}
	if o.Mode == Ask && o.Confirmer == nil {
		return errors.New("confirmer is required in ask mode")
	}
	if o.Tracker == nil {
		return errors.New("tracker is required")
	}
	if o.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}
