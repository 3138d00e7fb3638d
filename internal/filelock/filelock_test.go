package filelock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWrite(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		content  string
	}{
		{name: "new file", content: "slug: a\n"},
		{name: "overwrite", existing: "old", content: "new"},
		{name: "empty content", existing: "old", content: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "export.yaml")
			if tt.existing != "" {
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
				require.NoError(t, os.WriteFile(path, []byte(tt.existing), 0600))
			}

			require.NoError(t, AtomicWrite(path, []byte(tt.content)))

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(got))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
		})
	}
}

func TestWriteFileFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0644))

	err := WriteFile(context.Background(), path, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return errors.New("encoder failed")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoder failed")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "temp file %s left behind", e.Name())
	}
}

func TestAcquireTimesOutWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.yaml")

	release, err := Acquire(context.Background(), path)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err = WriteFile(ctx, path, func(w io.Writer) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocked))
}

func TestConcurrentWritesNeverInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.yaml")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			line := strings.Repeat(fmt.Sprintf("%d", n), 512)
			assert.NoError(t, AtomicWrite(path, []byte(line)))
		}(i)
	}
	wg.Wait()

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 512)
	assert.Equal(t, strings.Repeat(string(got[0]), 512), string(got))
}

func TestLockPath(t *testing.T) {
	assert.Equal(t, "out/a.yaml.lock", LockPath("out/a.yaml"))
}
