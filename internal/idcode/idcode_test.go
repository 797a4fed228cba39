package idcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-backend/internal/config"
	"tender-backend/internal/storage"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "CW-00001", Format("CW", 1))
	assert.Equal(t, "WD-12345", Format("WD", 12345))
	assert.Equal(t, "TND-123456", Format("TND", 123456))
	assert.Less(t, Format("WD", 9), Format("WD", 10))
}

// Runs against a real server only when TENDER_TEST_REDIS_ADDR is set.
func TestRedis_Sequence(t *testing.T) {
	addr := os.Getenv("TENDER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TENDER_TEST_REDIS_ADDR is not set")
	}

	ctx := context.Background()
	gen, err := NewRedis(ctx, config.Redis{Addr: addr, DB: 15})
	require.NoError(t, err)
	defer gen.Close()

	name := fmt.Sprintf("Test%d", time.Now().UnixNano())
	defer gen.rdb.HDel(ctx, prefixesKey, name)
	defer gen.rdb.Del(ctx, seqKeyBase+name)

	_, err = gen.NextCode(ctx, name)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, gen.RegisterType(ctx, name, "TS"))
	require.NoError(t, gen.RegisterType(ctx, name, "OTHER"))

	var (
		mu    sync.Mutex
		codes = map[string]bool{}
		wg    sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := gen.NextCode(ctx, name)
			assert.NoError(t, err)
			mu.Lock()
			codes[code] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, codes, 20)
	assert.True(t, codes["TS-00001"])
	assert.True(t, codes["TS-00020"])
}
