package directory

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medical-booking/internal/kv"
)

func TestCachedServesLastGoodAnswer(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := kv.NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	remote := &scripted{steps: []step{{accounts: doctors("a", "b")}, {err: errDown}}}
	dir := NewCached(remote, cache, "@MedicalApp:doctors", zerolog.Nop())
	ctx := context.Background()

	got, err := dir.GetAllDoctors(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.True(t, mr.Exists("@MedicalApp:doctors"))

	got, err = dir.GetAllDoctors(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, errDown)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
}

func TestCachedEmptyCache(t *testing.T) {
	remote := &scripted{steps: []step{{err: errDown}}}
	dir := NewCached(remote, kv.NewMemory(), "k", zerolog.Nop())

	got, err := dir.GetAllDoctors(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCachedCorruptEntry(t *testing.T) {
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(context.Background(), "k", "not-json"))
	dir := NewCached(&scripted{steps: []step{{err: errDown}}}, mem, "k", zerolog.Nop())

	got, err := dir.GetAllDoctors(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, got)
}

func TestLoaderWithCachedFallback(t *testing.T) {
	mem := kv.NewMemory()
	remote := &scripted{steps: []step{{accounts: doctors("a")}, {err: errDown}}}
	dir := NewCached(remote, mem, "k", zerolog.Nop())
	loader := newTestLoader(dir)

	first := loader.Load(context.Background(), nil)
	require.Equal(t, StatusOK, first.Status)

	var log noticeLog
	second := loader.Load(context.Background(), log.add)
	assert.Equal(t, StatusLocal, second.Status)
	require.Len(t, second.Accounts, 1)
	assert.Equal(t, "a", second.Accounts[0].ID)
	assert.Len(t, log.notices, 2)
}
