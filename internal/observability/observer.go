// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"invoice-architect/internal/diagnostic"
)

// Level selects how much an observer writes.
type Level int

const (
	LevelOff Level = iota
	LevelDebug
)

// StandardObserver records one timing line per import stage. It is shared
// by every worker of a batch run, so writes are serialised.
type StandardObserver struct {
	level  Level
	writer io.Writer
	mu     *sync.Mutex
	runID  string

	// DebugObserver is set in debug mode and traces individual steps.
	DebugObserver *DebugObserver
}

// Record is the JSON line written when a timed operation finishes.
type Record struct {
	RunID       string                 `json:"run_id"`
	Component   string                 `json:"component"`
	Operation   string                 `json:"operation"`
	Source      string                 `json:"source,omitempty"`
	DurationMs  int64                  `json:"duration_ms"`
	Success     bool                   `json:"success"`
	Error       string                 `json:"error,omitempty"`
	Fields      int                    `json:"fields,omitempty"`
	Diagnostics int                    `json:"diagnostics,omitempty"`
	CharCount   int                    `json:"char_count,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

func newStandardObserver(level Level, writer io.Writer) *StandardObserver {
	return &StandardObserver{
		level:  level,
		writer: writer,
		mu:     &sync.Mutex{},
		runID:  uuid.NewString(),
	}
}

// NewObserver builds the observer for a run. In debug mode the returned
// observer carries a DebugObserver writing to the same writer.
func NewObserver(debug bool, writer io.Writer) *StandardObserver {
	if !debug {
		return newStandardObserver(LevelOff, writer)
	}
	o := newStandardObserver(LevelDebug, writer)
	o.DebugObserver = &DebugObserver{StandardObserver: o}
	return o
}

// RunID identifies every record written by this observer.
func (o *StandardObserver) RunID() string {
	return o.runID
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, source string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		if o.level == LevelOff {
			return
		}
		rec := Record{
			RunID:      o.runID,
			Component:  component,
			Operation:  operation,
			Source:     source,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
		}
		rest := make(map[string]interface{}, len(metadata))
		for k, v := range metadata {
			switch k {
			case "error":
				rec.Error, _ = v.(string)
			case "fields":
				rec.Fields, _ = v.(int)
			case "diagnostics":
				rec.Diagnostics, _ = v.(int)
			case "char_count":
				rec.CharCount, _ = v.(int)
			default:
				rest[k] = v
			}
		}
		if len(rest) > 0 {
			rec.Metadata = rest
		}
		o.write(rec)
	}
}

func (o *StandardObserver) write(rec Record) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_ = json.NewEncoder(o.writer).Encode(rec)
}

// LogDiagnostics reports recoverable extraction problems. They are written
// as details in debug mode and otherwise dropped.
func (o *StandardObserver) LogDiagnostics(component string, diags diagnostic.List) {
	if o == nil || o.DebugObserver == nil {
		return
	}
	for _, d := range diags {
		o.DebugObserver.LogDetail(component, "degraded: "+d.String())
	}
}
