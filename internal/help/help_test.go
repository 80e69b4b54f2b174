// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneralHelp(t *testing.T) {
	var buf bytes.Buffer
	NewSystem(&buf, true).ShowGeneralHelp([]string{"csv", "json"})

	out := buf.String()
	assert.Contains(t, out, "invoice-import [options] <file>...")
	assert.Contains(t, out, "Output format: csv, json")
	assert.Contains(t, out, "INVOICE_IMPORT_CONFIG_DIR")
	assert.NotContains(t, out, "\x1b[")
}

func TestTopicsHelp(t *testing.T) {
	var buf bytes.Buffer
	NewSystem(&buf, true).ShowTopicsHelp()
	for _, topic := range []string{"pdf", "docx", "xlsx", "text", "gst"} {
		assert.Contains(t, buf.String(), topic)
	}
}

func TestTopicHelp(t *testing.T) {
	var buf bytes.Buffer
	h := NewSystem(&buf, true)

	assert.True(t, h.ShowTopicHelp(".PDF"))
	assert.Contains(t, buf.String(), "import.pdf_engine")

	buf.Reset()
	assert.False(t, h.ShowTopicHelp("sarif"))
	assert.Contains(t, buf.String(), "Available topics: docx, gst, pdf, text, xlsx")
}

type customTopic struct{}

func (customTopic) GetTopicInfo() TopicInfo {
	return TopicInfo{Name: "ODS", ShortDescription: "OpenDocument"}
}

func TestRegisterProvider(t *testing.T) {
	var buf bytes.Buffer
	h := NewSystem(&buf, true)
	h.RegisterProvider(customTopic{})
	assert.True(t, h.ShowTopicHelp("ods"))
}
