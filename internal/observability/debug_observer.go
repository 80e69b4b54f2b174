// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"fmt"
	"strings"
	"time"
)

// DebugObserver traces nested import steps as an indented outline.
type DebugObserver struct {
	*StandardObserver
	depth int
}

func (d *DebugObserver) prefix() string {
	return strings.Repeat("  ", d.depth)
}

// StartStep opens a step and returns the function that closes it.
func (d *DebugObserver) StartStep(component, step, source string) func(success bool, details string) {
	start := time.Now()

	d.mu.Lock()
	fmt.Fprintf(d.writer, "%s[%s] %s %s\n", d.prefix(), component, step, source)
	d.depth++
	d.mu.Unlock()

	return func(success bool, details string) {
		elapsed := time.Since(start).Milliseconds()

		d.mu.Lock()
		defer d.mu.Unlock()
		if d.depth > 0 {
			d.depth--
		}
		status := "ok"
		if !success {
			status = "FAILED"
		}
		line := fmt.Sprintf("%s[%s] %s %s in %dms", d.prefix(), component, step, status, elapsed)
		if details != "" {
			line += ": " + details
		}
		fmt.Fprintln(d.writer, line)
	}
}

// LogDetail writes a note under the current step.
func (d *DebugObserver) LogDetail(component, detail string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.writer, "%s  %s: %s\n", d.prefix(), component, detail)
}

// LogMetric writes a named value under the current step.
func (d *DebugObserver) LogMetric(component, metric string, value interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.writer, "%s  %s: %s=%v\n", d.prefix(), component, metric, value)
}
