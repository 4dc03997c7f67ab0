package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"quill/internal/config"
)

// resolveDataPath joins a script-supplied path onto the data folder and
// enforces the configured path restriction. Scripts never address the host
// filesystem directly.
func resolveDataPath(raw string) (string, error) {
	full, err := filepath.Abs(filepath.Join(config.Core.DataPath, raw))
	if err != nil {
		return "", err
	}
	limit := config.Core.File.PathLimit
	if limit == "" || strings.EqualFold(limit, "none") {
		return full, nil
	}
	root, err := filepath.Abs(filepath.Join(config.Core.DataPath, limit))
	if err != nil {
		return "", err
	}
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path '%s' is not within the restricted data file path", raw)
	}
	return full, nil
}
