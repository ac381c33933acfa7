package initcmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// BackupConfig copies the config at path to path+".bak", keeping its file
// mode. It returns "" when there is no config to back up.
func BackupConfig(path string) (string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("stat config: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read config: %w", err)
	}

	dst := path + ".bak"
	if err := os.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return dst, nil
}

// ConfigExists reports whether a regular file exists at path.
func ConfigExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
