// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ConfigDirEnv, dir)

	assert.Equal(t, dir, GetConfigDir())
	assert.Equal(t, filepath.Join(dir, "config.yaml"), GetConfigFile())
	assert.Equal(t, filepath.Join(dir, "templates"), GetTemplateDir())
}

func TestTemplatePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ConfigDirEnv, dir)

	got, err := TemplatePath("draft.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "templates", "draft.json"), got)

	explicit := filepath.Join(dir, "out", "merged.json")
	got, err = TemplatePath(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, got)

	got, err = TemplatePath(filepath.Join("sub", "x.json"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))

	_, err = TemplatePath("")
	assert.Error(t, err)
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath(""))
	assert.NoError(t, ValidatePath("report.json"))

	err := ValidatePath("bad\x00name")
	var pathErr *PathValidationError
	require.ErrorAs(t, err, &pathErr)
	assert.Contains(t, pathErr.Error(), "null byte")
}
