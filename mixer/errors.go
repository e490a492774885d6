// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
)

// Stage names a step of the mix pipeline.
type Stage string

const (
	StageDecode  Stage = "decode"
	StageMix     Stage = "mix"
	StageEncode  Stage = "encode"
	StagePersist Stage = "persist"
)

// StageError reports the pipeline step that failed. Source names the input
// involved, when the failure belongs to one of them. Err is the cause, left
// unchanged so errors.Is and errors.As reach it.
type StageError struct {
	Stage  Stage
	Source string
	Err    error
}

func (e *StageError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s %q: %v", e.Stage, e.Source, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
