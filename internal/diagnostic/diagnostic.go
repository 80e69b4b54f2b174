// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package diagnostic records degraded extraction stages without halting the
// import. Container corruption, unsupported stream filters and failed
// inflation all end up here instead of in an error return.
package diagnostic

import (
	"fmt"
	"strings"
)

// Stage identifies the pipeline stage that produced a diagnostic.
type Stage string

const (
	StageZip       Stage = "zip"
	StageInflate   Stage = "inflate"
	StagePDF       Stage = "pdf"
	StageDOCX      Stage = "docx"
	StageXLSX      Stage = "xlsx"
	StageText      Stage = "text"
	StageInterpret Stage = "interpret"
)

// Diagnostic is a single recoverable problem found while importing a file.
type Diagnostic struct {
	Stage   Stage  `json:"stage" yaml:"stage"`
	Message string `json:"message" yaml:"message"`
	Err     error  `json:"-" yaml:"-"`
}

func (d Diagnostic) String() string {
	if d.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", d.Stage, d.Message, d.Err)
	}
	return fmt.Sprintf("[%s] %s", d.Stage, d.Message)
}

// List aggregates diagnostics in the order they were recorded.
type List []Diagnostic

// Add appends a diagnostic with an optional cause.
func (l *List) Add(stage Stage, message string, err error) {
	*l = append(*l, Diagnostic{Stage: stage, Message: message, Err: err})
}

// Addf appends a formatted diagnostic.
func (l *List) Addf(stage Stage, format string, args ...any) {
	*l = append(*l, Diagnostic{Stage: stage, Message: fmt.Sprintf(format, args...)})
}

// Merge appends every diagnostic of other.
func (l *List) Merge(other List) {
	*l = append(*l, other...)
}

// HasStage reports whether any diagnostic was recorded for stage.
func (l List) HasStage(stage Stage) bool {
	for _, d := range l {
		if d.Stage == stage {
			return true
		}
	}
	return false
}

// Strings renders each diagnostic on its own line.
func (l List) Strings() []string {
	out := make([]string, 0, len(l))
	for _, d := range l {
		out = append(out, d.String())
	}
	return out
}

func (l List) String() string {
	return strings.Join(l.Strings(), "\n")
}
