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
	"fmt"

	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
)

// 💬 Confirmer answers the "overwrite this file?" question in Ask mode. It
// is injected so tests can script answers instead of driving a terminal.
// The prompt blocks the whole pipeline until answered; acceptable for an
// interactive CLI.
type Confirmer interface {
	Confirm(ctx context.Context, path string) (bool, error)
}

// 🖥️ promptConfirmer asks on the terminal via pterm.
type promptConfirmer struct{}

// NewPromptConfirmer returns the interactive terminal confirmer.
func NewPromptConfirmer() Confirmer {
	return promptConfirmer{}
}

func (promptConfirmer) Confirm(ctx context.Context, path string) (bool, error) {
	ok, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(true).
		Show(fmt.Sprintf("Overwrite file '%s'?", path))
	if err != nil {
		return false, errors.Errorf("reading confirmation for %q: %w", path, err)
	}
	return ok, nil
}

// 🤖 ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, path string) (bool, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, path string) (bool, error) {
	return f(ctx, path)
}
