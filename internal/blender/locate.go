package blender

import (
	"fmt"
	"os"
)

// EnvPath is the environment variable overriding the executable location.
// It is probed before every other candidate.
const EnvPath = "BLENDER_PATH"

// conventionalPaths are the platform-conventional install locations, probed in
// order after any configured override.
var conventionalPaths = []string{
	"/usr/bin/blender",
	"/usr/local/bin/blender",
	"/Applications/Blender.app/Contents/MacOS/Blender",
	`C:\Program Files\Blender Foundation\Blender\blender.exe`,
}

// Candidates returns the full ordered probe list: $BLENDER_PATH, then any
// configured paths, then the conventional install locations.
func Candidates(configured ...string) []string {
	var paths []string
	if env := os.Getenv(EnvPath); env != "" {
		paths = append(paths, env)
	}
	paths = append(paths, configured...)
	paths = append(paths, conventionalPaths...)
	return paths
}

// Locate probes candidates in order and returns the first that exists on the
// filesystem. Resolution happens fresh on every call; nothing is cached.
func Locate(candidates []string) (string, error) {
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("Blender executable not found. Please install Blender or set %s environment variable", EnvPath)
}
