// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package invoice

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const defaultMIMEType = "application/octet-stream"

// ErrBadDataURL is returned when an attachment does not carry a base64
// data URL.
var ErrBadDataURL = errors.New("attachment is not a base64 data URL")

// Attachment is a file stored inline with a template.
type Attachment struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Size     int64  `json:"size" yaml:"size"`
	MIMEType string `json:"mimeType" yaml:"mimeType"`
	DataURL  string `json:"dataUrl" yaml:"dataUrl"`
}

// NewAttachment wraps data as a base64 data URL.
func NewAttachment(name, mimeType string, data []byte) Attachment {
	if mimeType == "" {
		mimeType = defaultMIMEType
	}
	return Attachment{
		ID:       uuid.NewString(),
		Name:     name,
		Size:     int64(len(data)),
		MIMEType: mimeType,
		DataURL:  "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}
}

// Bytes decodes the data URL payload.
func (a Attachment) Bytes() ([]byte, error) {
	rest, ok := strings.CutPrefix(a.DataURL, "data:")
	if !ok {
		return nil, ErrBadDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrBadDataURL
	}
	return base64.StdEncoding.DecodeString(payload)
}
