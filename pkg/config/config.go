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

// Package config loads the optional sbu settings file. Everything in it is
// a default that command-line flags override; running without any config
// file is fully supported.
package config

import (
	"slices"

	"gitlab.com/tozd/go/errors"
)

// 🔧 Config holds the defaults a settings file may provide.
type Config struct {
	// Conflict is the default conflict policy: "no-overwrite", "overwrite"
	// or "ask".
	Conflict string `hcl:"conflict,optional" yaml:"conflict" json:"conflict,omitempty"`
	// Compress selects archive mode with the given algorithm tag; empty
	// means plain copy mode.
	Compress string `hcl:"compress,optional" yaml:"compress" json:"compress,omitempty"`
	// Pretend enables dry-run mode by default.
	Pretend bool `hcl:"pretend,optional" yaml:"pretend" json:"pretend,omitempty"`
	// AbortOnError makes the first per-file copy failure abort the run
	// instead of being logged and skipped.
	AbortOnError bool `hcl:"abort_on_error,optional" yaml:"abort_on_error" json:"abort_on_error,omitempty"`
	// Verbosity is the default log verbosity: "quiet", "default",
	// "verbose" or "debug".
	Verbosity string `hcl:"verbosity,optional" yaml:"verbosity" json:"verbosity,omitempty"`

	location string
}

// Location returns the path the config was loaded from, empty for defaults.
func (c *Config) Location() string {
	return c.location
}

var (
	conflictValues  = []string{"", "no-overwrite", "overwrite", "ask"}
	verbosityValues = []string{"", "quiet", "default", "verbose", "debug"}
)

// ✅ Validate checks enum fields. Compress is validated downstream by the
// archive package so the error lists the supported algorithms once.
func (c *Config) Validate() error {
	if !slices.Contains(conflictValues, c.Conflict) {
		return errors.Errorf("invalid conflict mode %q (want no-overwrite, overwrite or ask)", c.Conflict)
	}
	if !slices.Contains(verbosityValues, c.Verbosity) {
		return errors.Errorf("invalid verbosity %q (want quiet, default, verbose or debug)", c.Verbosity)
	}
	return nil
}
