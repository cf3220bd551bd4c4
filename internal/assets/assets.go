// Package assets ships the host-side Blender scripts and materializes them to
// disk so a Blender subprocess can be pointed at them.
package assets

import (
	"embed"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

//go:embed scripts
var scripts embed.FS

// Materialize writes the named embedded script into the user cache directory
// and returns its path. The filename carries a content hash, so a matching
// file from a previous run is reused as-is and stale copies from older
// builds never shadow the current script.
func Materialize(name string) (string, error) {
	data, err := scripts.ReadFile("scripts/" + name)
	if err != nil {
		return "", fmt.Errorf("unknown script %q: %w", name, err)
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve cache dir: %w", err)
	}
	dir := filepath.Join(cacheDir, "blendctl")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}

	hash := blake3.Sum256(data)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	path := filepath.Join(dir, fmt.Sprintf("%s-%s%s", base, hex.EncodeToString(hash[:4]), filepath.Ext(name)))

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write script %q: %w", name, err)
	}
	return path, nil
}
