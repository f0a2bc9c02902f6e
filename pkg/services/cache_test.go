package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingCacheExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2021, 3, 15, 12, 0, 0, 0, time.UTC)
	c := NewListingCache(time.Minute)
	c.now = func() time.Time { return now }

	loads := 0
	load := func(context.Context) (Page, error) {
		loads++
		return Page{Items: summaries("A"), NextCursor: "p2"}, nil
	}

	page, hit, err := c.GetOrLoad(ctx, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "p2", page.NextCursor)

	now = now.Add(59 * time.Second)
	_, hit, err = c.GetOrLoad(ctx, load)
	require.NoError(t, err)
	assert.True(t, hit)

	now = now.Add(2 * time.Second)
	_, hit, err = c.GetOrLoad(ctx, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, loads)
}

func TestListingCacheInvalidateAndSet(t *testing.T) {
	ctx := context.Background()
	c := NewListingCache(0)
	c.Set(Page{Items: summaries("A")})

	page, hit, err := c.GetOrLoad(ctx, func(context.Context) (Page, error) {
		t.Fatal("fresh entry must not load")
		return Page{}, nil
	})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"A"}, ids(page.Items))

	c.Invalidate()
	page, hit, err = c.GetOrLoad(ctx, func(context.Context) (Page, error) {
		return Page{Items: summaries("B")}, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"B"}, ids(page.Items))
}

func TestListingCacheDoesNotStoreFailures(t *testing.T) {
	ctx := context.Background()
	c := NewListingCache(time.Minute)

	_, _, err := c.GetOrLoad(ctx, func(context.Context) (Page, error) { return Page{}, errors.New("down") })
	require.Error(t, err)

	page, hit, err := c.GetOrLoad(ctx, func(context.Context) (Page, error) { return Page{Items: summaries("A")}, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, page.Items, 1)
}

func TestListingCacheReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewListingCache(0)
	c.Set(Page{Items: summaries("A")})

	page, _, _ := c.GetOrLoad(ctx, nil)
	page.Items[0].ID = "mutated"

	again, _, _ := c.GetOrLoad(ctx, nil)
	assert.Equal(t, "A", again.Items[0].ID)
}

func TestListingCacheDoesNotBlockWhileLoading(t *testing.T) {
	ctx := context.Background()
	c := NewListingCache(time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan Page)
	go func() {
		page, _, err := c.GetOrLoad(ctx, func(context.Context) (Page, error) {
			close(started)
			<-release
			return Page{Items: summaries("slow")}, nil
		})
		assert.NoError(t, err)
		done <- page
	}()
	<-started

	// a revalidation lands while the first load is still in flight
	c.Set(Page{Items: summaries("fresh")})
	page, hit, err := c.GetOrLoad(ctx, func(context.Context) (Page, error) {
		t.Fatal("fresh entry must not load")
		return Page{}, nil
	})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"fresh"}, ids(page.Items))

	close(release)
	assert.Equal(t, []string{"slow"}, ids((<-done).Items))

	page, hit, err = c.GetOrLoad(ctx, nil)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"fresh"}, ids(page.Items), "a stale load must not replace a newer entry")
}

func TestListingCacheSharesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	c := NewListingCache(time.Minute)

	var loads atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (Page, error) {
		loads.Add(1)
		<-release
		return Page{Items: summaries("A")}, nil
	}

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, _, err := c.GetOrLoad(ctx, load)
			assert.NoError(t, err)
			assert.Equal(t, []string{"A"}, ids(page.Items))
		}()
	}
	// let every caller reach the shared load before it finishes
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
}
