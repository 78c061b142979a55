package shard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nidxlabs/nidx/internal/ids"
)

func TestCreateSeedsDefaultVectorset(t *testing.T) {
	m := NewManager(t.TempDir())
	shardID := ids.NewShardID()
	kbID := ids.NewShardID()

	require.NoError(t, m.Create(context.Background(), shardID, kbID, "chan-0"))

	vs, err := m.Vectorsets(shardID)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	require.Equal(t, DefaultVectorset, vs[0].Name)
}

func TestDefaultVectorsetCannotBeRemoved(t *testing.T) {
	m := NewManager(t.TempDir())
	shardID := ids.NewShardID()
	require.NoError(t, m.Create(context.Background(), shardID, ids.NewShardID(), "chan-0"))

	err := m.RemoveVectorset(context.Background(), shardID, DefaultVectorset)
	require.Error(t, err)
}

func TestAddVectorsetRejectsDuplicate(t *testing.T) {
	m := NewManager(t.TempDir())
	shardID := ids.NewShardID()
	require.NoError(t, m.Create(context.Background(), shardID, ids.NewShardID(), "chan-0"))

	require.NoError(t, m.AddVectorset(context.Background(), shardID, "multilingual", "vs-multilingual"))
	err := m.AddVectorset(context.Background(), shardID, "multilingual", "vs-multilingual-2")
	require.Error(t, err)
}

func TestGenerationBumpsOnEveryWrite(t *testing.T) {
	m := NewManager(t.TempDir())
	shardID := ids.NewShardID()
	require.NoError(t, m.Create(context.Background(), shardID, ids.NewShardID(), "chan-0"))

	gen0, ok := m.Generation(shardID)
	require.True(t, ok)

	require.NoError(t, m.AddVectorset(context.Background(), shardID, "multilingual", "vs-multilingual"))
	gen1, ok := m.Generation(shardID)
	require.True(t, ok)
	require.Greater(t, gen1, gen0)
}

func TestOpenRoundTripsMetadataAndGeneration(t *testing.T) {
	dir := t.TempDir()
	shardID := ids.NewShardID()
	kbID := ids.NewShardID()

	writer := NewManager(dir)
	require.NoError(t, writer.Create(context.Background(), shardID, kbID, "chan-7"))
	require.NoError(t, writer.AddVectorset(context.Background(), shardID, "multilingual", "vs-multilingual"))
	wantGen, _ := writer.Generation(shardID)

	reader := NewManager(dir)
	meta, err := reader.Open(context.Background(), shardID)
	require.NoError(t, err)
	require.Equal(t, kbID, meta.KBID)
	require.Equal(t, "chan-7", meta.Channel)

	gotGen, ok := reader.Generation(shardID)
	require.True(t, ok)
	require.Equal(t, wantGen, gotGen)

	vs, err := reader.Vectorsets(shardID)
	require.NoError(t, err)
	require.Len(t, vs, 2)
}

func TestNeedsReloadDetectsStaleGeneration(t *testing.T) {
	dir := t.TempDir()
	shardID := ids.NewShardID()

	writer := NewManager(dir)
	require.NoError(t, writer.Create(context.Background(), shardID, ids.NewShardID(), "chan-0"))

	reader := NewManager(dir)
	_, err := reader.Open(context.Background(), shardID)
	require.NoError(t, err)
	cachedGen, _ := reader.Generation(shardID)

	require.NoError(t, writer.AddVectorset(context.Background(), shardID, "multilingual", "vs-multilingual"))
	newGen, _ := writer.Generation(shardID)

	require.True(t, reader.NeedsReload(shardID, newGen))
	require.False(t, reader.NeedsReload(shardID, cachedGen))
}

func TestOpenMissingShardReturnsNotFound(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Open(context.Background(), ids.NewShardID())
	require.Error(t, err)
}
