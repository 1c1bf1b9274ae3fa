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

package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/walteh/sbu/pkg/archive"
	"github.com/walteh/sbu/pkg/backuplist"
	"github.com/walteh/sbu/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// Stable exit codes; callers distinguish these programmatically.
const (
	exitGenericFailure       = 1
	exitBackupListInvalid    = 2 // backup list not found or not a file
	exitDestinationInvalid   = 3 // destination not found or not a directory
	exitArchiveNameExhausted = 4 // no free default archive filename
	exitUnsupportedPlatform  = 5
)

func main() {
	if runtime.GOOS != "linux" {
		fmt.Fprintln(os.Stderr, "for now, the only supported platform is Linux")
		os.Exit(exitUnsupportedPlatform)
	}

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s\n", color.New(color.FgRed).Sprint(err.Error()))
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps the error taxonomy onto the stable exit codes.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, backuplist.ErrNotFound),
		errors.Is(err, backuplist.ErrNotFile):
		return exitBackupListInvalid
	case errors.Is(err, operation.ErrDestinationNotFound),
		errors.Is(err, operation.ErrDestinationNotADirectory),
		errors.Is(err, archive.ErrParentNotFound):
		return exitDestinationInvalid
	case errors.Is(err, archive.ErrNoDefaultName):
		return exitArchiveNameExhausted
	default:
		return exitGenericFailure
	}
}
