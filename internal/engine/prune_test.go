package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherfs/gather/internal/event"
	"github.com/gatherfs/gather/internal/stats"
)

func TestPrune_BottomUp(t *testing.T) {
	root := t.TempDir()
	// A/B/C holds no files anywhere; A/D holds one file.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "A", "B", "C"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "A", "D"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "A", "D", "keep.txt"), []byte("k"), 0644))

	pruned, err := Prune(context.Background(), PruneConfig{Root: root})
	require.NoError(t, err)
	assert.Equal(t, 2, pruned) // A/B/C, then A/B

	_, err = os.Stat(filepath.Join(root, "A", "B"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "A", "D", "keep.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "A"))
	assert.NoError(t, err)
}

func TestPrune_ChainOfEmptyDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "x", "y", "z"), 0755))

	collector := stats.NewCollector()
	pruned, err := Prune(context.Background(), PruneConfig{Root: root, Stats: collector})
	require.NoError(t, err)
	assert.Equal(t, 3, pruned)
	assert.Equal(t, int64(3), collector.Snapshot().DirsPruned)

	_, err = os.Stat(filepath.Join(root, "x"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(root)
	assert.NoError(t, err) // root itself untouched by default
}

func TestPrune_IncludeRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "empty")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0755))

	pruned, err := Prune(context.Background(), PruneConfig{Root: root, IncludeRoot: true})
	require.NoError(t, err)
	assert.Equal(t, 2, pruned)

	_, err = os.Stat(root)
	assert.True(t, os.IsNotExist(err))
}

func TestPrune_KeepsFileBearingDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "full", "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "full", "nested", "f"), []byte("x"), 0644))

	pruned, err := Prune(context.Background(), PruneConfig{Root: root})
	require.NoError(t, err)
	assert.Zero(t, pruned)

	_, err = os.Stat(filepath.Join(root, "full", "nested", "f"))
	assert.NoError(t, err)
}

func TestPrune_MissingRoot(t *testing.T) {
	collector := stats.NewCollector()
	pruned, err := Prune(context.Background(), PruneConfig{
		Root:  filepath.Join(t.TempDir(), "nope"),
		Stats: collector,
	})
	assert.Error(t, err)
	assert.Zero(t, pruned)
	assert.Equal(t, int64(1), collector.Snapshot().Errors)
}

func TestPrune_DryRun(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty", "deeper"), 0755))

	pruned, err := Prune(context.Background(), PruneConfig{Root: root, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, pruned)

	// Nothing actually deleted.
	_, err = os.Stat(filepath.Join(root, "empty", "deeper"))
	assert.NoError(t, err)
}

func TestPrune_EmitsEvents(t *testing.T) {
	root := t.TempDir()
	empty := filepath.Join(root, "empty")
	require.NoError(t, os.Mkdir(empty, 0755))

	events := make(chan event.Event, 16)
	pruned, err := Prune(context.Background(), PruneConfig{Root: root, Events: events})
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	select {
	case ev := <-events:
		assert.Equal(t, event.DirPruned, ev.Type)
		assert.Equal(t, empty, ev.Path)
	default:
		t.Fatal("expected a DirPruned event")
	}
}

func TestPrune_ContextCancel(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "empty"), 0755))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Prune(ctx, PruneConfig{Root: root})
	assert.ErrorIs(t, err, context.Canceled)
}
