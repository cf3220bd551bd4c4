package blender

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshkit/blendctl/internal/log"
)

func TestMain(m *testing.M) {
	log.Setup("ERROR") // Suppress logs in tests
	os.Exit(m.Run())
}

// fakeBlender writes an executable shell script standing in for the Blender
// binary and returns its path.
func fakeBlender(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blender")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// stubScript is a Materialize replacement that skips the embedded assets.
func stubScript(t *testing.T) func(string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "automation.py")
	require.NoError(t, os.WriteFile(path, []byte("# test script\n"), 0644))
	return func(string) (string, error) {
		return path, nil
	}
}

func TestRunExecutableNotFound(t *testing.T) {
	r := &Runner{
		Candidates:  []string{filepath.Join(t.TempDir(), "missing-blender")},
		Materialize: stubScript(t),
	}

	res := r.Run(context.Background(), "automation.py", []string{"stats", "model.obj"})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "not found")
	assert.Contains(t, res.Error, EnvPath)
}

func TestRunStructuredOutput(t *testing.T) {
	exe := fakeBlender(t, "#!/bin/sh\nprintf '%s' '{\"mesh_count\": 2, \"total_vertices\": 10}'\n")
	r := &Runner{Candidates: []string{exe}, Materialize: stubScript(t)}

	res := r.Run(context.Background(), "automation.py", []string{"stats", "model.obj"})

	assert.True(t, res.Success)
	assert.Equal(t, map[string]any{"mesh_count": float64(2), "total_vertices": float64(10)}, res.Data)
	assert.Empty(t, res.Stdout)
}

func TestRunUnstructuredOutput(t *testing.T) {
	exe := fakeBlender(t, "#!/bin/sh\nprintf '%s' done\n")
	r := &Runner{Candidates: []string{exe}, Materialize: stubScript(t)}

	res := r.Run(context.Background(), "automation.py", []string{"stats", "model.obj"})

	assert.True(t, res.Success)
	assert.Equal(t, "done", res.Stdout)
	assert.Nil(t, res.Data)
}

func TestRunNonZeroExitPreservesStderr(t *testing.T) {
	exe := fakeBlender(t, "#!/bin/sh\nprintf '%s' boom >&2\nexit 1\n")
	r := &Runner{Candidates: []string{exe}, Materialize: stubScript(t)}

	res := r.Run(context.Background(), "automation.py", []string{"cleanup", "in.obj", "out.obj"})

	assert.False(t, res.Success)
	assert.Equal(t, "boom", res.Stderr)
}

func TestRunStderrKeptOnSuccess(t *testing.T) {
	exe := fakeBlender(t, "#!/bin/sh\nprintf '%s' '{\"ok\": true}'\nprintf '%s' 'Read prefs' >&2\n")
	r := &Runner{Candidates: []string{exe}, Materialize: stubScript(t)}

	res := r.Run(context.Background(), "automation.py", []string{"stats", "model.obj"})

	assert.True(t, res.Success)
	assert.Equal(t, "Read prefs", res.Stderr)
}

func TestRunLaunchFailure(t *testing.T) {
	// Present on disk but not executable: resolution succeeds, launch fails.
	exe := filepath.Join(t.TempDir(), "blender")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0644))
	r := &Runner{Candidates: []string{exe}, Materialize: stubScript(t)}

	res := r.Run(context.Background(), "automation.py", []string{"stats", "model.obj"})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "failed to start Blender")
}

func TestRunStderrTruncated(t *testing.T) {
	exe := fakeBlender(t, "#!/bin/sh\ndd if=/dev/zero bs=1024 count=100 2>/dev/null | tr '\\0' x >&2\nexit 1\n")
	r := &Runner{Candidates: []string{exe}, Materialize: stubScript(t)}

	res := r.Run(context.Background(), "automation.py", []string{"stats", "model.obj"})

	assert.False(t, res.Success)
	assert.Len(t, res.Stderr, maxStderrBytes)
}

func TestRunTimeout(t *testing.T) {
	exe := fakeBlender(t, "#!/bin/sh\nexec sleep 5\n")
	r := &Runner{
		Candidates:  []string{exe},
		Materialize: stubScript(t),
		Timeout:     100 * time.Millisecond,
		GracePeriod: 100 * time.Millisecond,
	}

	start := time.Now()
	res := r.Run(context.Background(), "automation.py", []string{"stats", "model.obj"})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "timed out")
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRunArgumentsAfterSeparator(t *testing.T) {
	exe := fakeBlender(t, "#!/bin/sh\nprintf '%s' \"$*\"\n")
	r := &Runner{Candidates: []string{exe}, Materialize: stubScript(t)}

	res := r.Run(context.Background(), "automation.py", []string{"import_export", "in.obj", "out", "obj,fbx"})

	require.True(t, res.Success)
	assert.Contains(t, res.Stdout, "--background --python ")
	assert.Contains(t, res.Stdout, " -- import_export in.obj out obj,fbx")
}

func TestFormatTimeout(t *testing.T) {
	assert.Equal(t, "5 minutes", formatTimeout(300*time.Second))
	assert.Equal(t, "1 minute", formatTimeout(time.Minute))
	assert.Equal(t, "1m30s", formatTimeout(90*time.Second))
	assert.Equal(t, "100ms", formatTimeout(100*time.Millisecond))
}

func TestLocateFirstMatchWins(t *testing.T) {
	existing := fakeBlender(t, "#!/bin/sh\n")
	missing := filepath.Join(t.TempDir(), "missing")

	path, err := Locate([]string{missing, existing})
	require.NoError(t, err)
	assert.Equal(t, existing, path)
}

func TestLocateNoneFound(t *testing.T) {
	_, err := Locate([]string{filepath.Join(t.TempDir(), "a"), filepath.Join(t.TempDir(), "b")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCandidatesOrder(t *testing.T) {
	t.Setenv(EnvPath, "/env/blender")

	paths := Candidates("/configured/blender")
	require.GreaterOrEqual(t, len(paths), 3)
	assert.Equal(t, "/env/blender", paths[0])
	assert.Equal(t, "/configured/blender", paths[1])
	assert.Equal(t, "/usr/bin/blender", paths[2])
}
