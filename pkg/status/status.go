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

// Package status carries the per-file outcome taxonomy of a backup run and
// a small tracker used to build the end-of-run summary.
package status

import (
	"sync"
)

// 📊 FileStatus is the outcome of a single copy decision.
type FileStatus int

const (
	StatusUnknown     FileStatus = iota
	StatusNew                    // Target did not exist, file was copied
	StatusUnchanged              // Target exists and is byte-identical, nothing to do
	StatusOverwritten            // Target existed, differed, and was replaced
	StatusSkipped                // Target existed, differed, and was kept
	StatusFailed                 // The copy decision or the copy itself failed
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusNew:
		return "copied"
	case StatusUnchanged:
		return "unchanged"
	case StatusOverwritten:
		return "overwritten"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 FileEntry records one copy decision.
type FileEntry struct {
	Path    string     // Source path the decision was made for
	Target  string     // Computed target path under the destination root
	Status  FileStatus // Outcome
	Reason  string     // Short explanation for skips and failures
	Pretend bool       // True when the run was a dry run
	Err     error      // Underlying error for StatusFailed
}

// Mutating reports whether this entry represents (or would represent, under
// pretend) a filesystem write.
func (e FileEntry) Mutating() bool {
	return e.Status == StatusNew || e.Status == StatusOverwritten
}

// 🧮 Tracker accumulates entries over a run.
type Tracker struct {
	mu      sync.Mutex
	entries []FileEntry
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Add records one decision.
func (t *Tracker) Add(e FileEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, e)
}

// Entries returns a copy of everything recorded so far.
func (t *Tracker) Entries() []FileEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]FileEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// 📈 Summary is the aggregate view of a run.
type Summary struct {
	Copied    int // StatusNew + StatusOverwritten
	Unchanged int
	Skipped   int
	Failed    int
}

// Summarize folds the recorded entries into counts.
func (t *Tracker) Summarize() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	var s Summary
	for _, e := range t.entries {
		switch e.Status {
		case StatusNew, StatusOverwritten:
			s.Copied++
		case StatusUnchanged:
			s.Unchanged++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
