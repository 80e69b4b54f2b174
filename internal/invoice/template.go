// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package invoice

import (
	"encoding/json"
	"fmt"
	"io"
)

// TemplateVersion is written into every exported template.
const TemplateVersion = 1

// Template is the saved form of an invoice together with its logo and
// attachments.
type Template struct {
	Version     int          `json:"version"`
	Invoice     Invoice      `json:"invoice"`
	Logo        string       `json:"logo,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// TemplateData is a decoded template. Invoice keeps only the fields the
// document actually contained.
type TemplateData struct {
	Version     int
	Invoice     *ImportedInvoice
	Logo        string
	Attachments []Attachment
}

// ExportTemplate writes inv as an indented JSON template.
func ExportTemplate(w io.Writer, inv Invoice, logo string, attachments []Attachment) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Template{
		Version:     TemplateVersion,
		Invoice:     inv.Clone(),
		Logo:        logo,
		Attachments: attachments,
	})
}

// DecodeTemplate reads a template document. A bare invoice object without
// the template wrapper is accepted as well.
func DecodeTemplate(r io.Reader) (*TemplateData, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode template: %w", err)
	}

	data := &TemplateData{Invoice: &ImportedInvoice{}}
	body, wrapped := raw["invoice"]
	if !wrapped {
		encoded, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		body = encoded
	}
	if err := json.Unmarshal(body, data.Invoice); err != nil {
		return nil, fmt.Errorf("failed to decode template invoice: %w", err)
	}
	if !wrapped {
		return data, nil
	}

	if v, ok := raw["version"]; ok {
		if err := json.Unmarshal(v, &data.Version); err != nil {
			return nil, fmt.Errorf("invalid template version: %w", err)
		}
	}
	if v, ok := raw["logo"]; ok {
		if err := json.Unmarshal(v, &data.Logo); err != nil {
			return nil, fmt.Errorf("invalid template logo: %w", err)
		}
	}
	if v, ok := raw["attachments"]; ok {
		if err := json.Unmarshal(v, &data.Attachments); err != nil {
			return nil, fmt.Errorf("invalid template attachments: %w", err)
		}
	}
	if data.Version > TemplateVersion {
		return nil, fmt.Errorf("template version %d is newer than supported version %d", data.Version, TemplateVersion)
	}
	return data, nil
}

// RestoreTemplate merges a decoded template into current. Stored line item
// ids are kept; only items without one get a fresh id.
func RestoreTemplate(current Invoice, data *TemplateData, opts MergeOptions) Invoice {
	if data == nil {
		return current.Clone()
	}
	return Merge(current, data.Invoice, opts)
}
