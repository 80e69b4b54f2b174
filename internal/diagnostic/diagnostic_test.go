// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package diagnostic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAggregation(t *testing.T) {
	var list List
	list.Add(StageZip, "end of central directory not found", nil)
	list.Addf(StageInflate, "entry %q could not be inflated", "word/document.xml")

	var other List
	other.Add(StagePDF, "stream skipped", errors.New("unsupported filter"))
	list.Merge(other)

	require.Len(t, list, 3)
	assert.True(t, list.HasStage(StagePDF))
	assert.False(t, list.HasStage(StageXLSX))
	assert.Equal(t, `[inflate] entry "word/document.xml" could not be inflated`, list[1].String())
	assert.Equal(t, "[pdf] stream skipped: unsupported filter", list[2].String())
	assert.Len(t, list.Strings(), 3)
}

func TestEmptyListString(t *testing.T) {
	var list List
	assert.Empty(t, list.String())
	assert.Empty(t, list.Strings())
}
