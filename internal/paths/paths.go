// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ConfigDirEnv overrides the configuration directory on every platform.
const ConfigDirEnv = "INVOICE_IMPORT_CONFIG_DIR"

// GetConfigDir returns the invoice-import configuration directory: the
// override from ConfigDirEnv, else the user config dir (APPDATA on Windows,
// XDG_CONFIG_HOME or ~/.config elsewhere).
func GetConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "invoice-import")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".invoice-import")
	}
	return ".invoice-import"
}

// GetConfigFile returns the path to the main config file
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetTemplateDir returns where exported templates are kept by default.
func GetTemplateDir() string {
	return filepath.Join(GetConfigDir(), "templates")
}

// TemplatePath resolves a template destination. A bare file name lands in
// GetTemplateDir; anything with a directory part is made absolute as given.
func TemplatePath(name string) (string, error) {
	if name == "" {
		return "", &PathValidationError{Path: name, Reason: "empty template name"}
	}
	if err := ValidatePath(name); err != nil {
		return "", err
	}
	if filepath.Base(name) == name && name != "." && name != ".." {
		return filepath.Join(GetTemplateDir(), name), nil
	}
	return filepath.Abs(filepath.Clean(name))
}

// ValidatePath validates a path for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return nil
	}
	if strings.ContainsRune(path, 0) {
		return &PathValidationError{Path: path, Reason: "contains null byte"}
	}
	if runtime.GOOS != "windows" {
		return nil
	}
	for i, char := range path {
		if !strings.ContainsRune(`<>:"|?*`, char) {
			continue
		}
		// Drive letter, as in C:
		if char == ':' && i == 1 {
			continue
		}
		return &PathValidationError{Path: path, Reason: "contains invalid character: " + string(char)}
	}
	return nil
}

// PathValidationError represents a path validation error
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Reason
}
