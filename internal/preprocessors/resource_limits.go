// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// DefaultMaxFileSize is the largest upload accepted for import.
const DefaultMaxFileSize = 25 * 1024 * 1024

// ResourceLimits defines limits for import processing
type ResourceLimits struct {
	MaxFileSize int64 // Maximum file size in bytes; zero or less disables the check
}

// DefaultResourceLimits returns the default resource limits
func DefaultResourceLimits() *ResourceLimits {
	return &ResourceLimits{
		MaxFileSize: DefaultMaxFileSize,
	}
}

// ValidateSize checks the source against the size limit.
func (rl *ResourceLimits) ValidateSize(src Source) error {
	if rl == nil || rl.MaxFileSize <= 0 {
		return nil
	}
	size := int64(len(src.Data))
	if size > rl.MaxFileSize {
		msg := fmt.Sprintf("file is %s; the limit is %s",
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(rl.MaxFileSize)))
		return NewExtractionError(src.Name, ErrorTypeFileSize, msg, ErrFileTooLarge)
	}
	return nil
}
