// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// extractContentText validates the document with pdfcpu, lets it decode
// each page's content stream (any filter pdfcpu supports) and runs the text
// object tokenizer over the result.
func extractContentText(data []byte, maxPages int) (text string, pageCount int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", 0, fmt.Errorf("pdfcpu read: %w", err)
	}

	pageCount = ctx.PageCount
	pages := pageCount
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}

	var parts []string
	for pageNr := 1; pageNr <= pages; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil || len(content) == 0 {
			continue
		}
		if t := extractTextObjects(content); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n"), pageCount, nil
}
