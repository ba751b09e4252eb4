package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindtree/local-app/internal/log"
)

func TestDBWatcherReportsDatabaseWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mindtree.db")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	var calls atomic.Int32
	w, err := NewDBWatcher(path, 20*time.Millisecond, func() { calls.Add(1) }, log.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path+"-wal", []byte{byte(i)}, 0o644))
	}
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestDBWatcherStopIsIdempotent(t *testing.T) {
	w, err := NewDBWatcher(filepath.Join(t.TempDir(), "a.db"), 0, func() {}, log.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, w.Start())
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestDBWatcherRelevance(t *testing.T) {
	w := &DBWatcher{base: "mindtree.db"}
	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"/x/mindtree.db", fsnotify.Write, true},
		{"/x/mindtree.db-wal", fsnotify.Write, true},
		{"/x/mindtree.db-journal", fsnotify.Remove, true},
		{"/x/mindtree.db", fsnotify.Chmod, false},
		{"/x/other.db", fsnotify.Write, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.relevant(fsnotify.Event{Name: tt.name, Op: tt.op}), tt.name)
	}
}
