package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"klema-chatbot/internal/catalog/mocks"
	"klema-chatbot/internal/rag"
)

type memoryShared struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
	sets    int
}

func newMemoryShared() *memoryShared {
	return &memoryShared{data: map[string][]byte{}}
}

func (m *memoryShared) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, errors.New("connection refused")
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (m *memoryShared) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *memoryShared) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryShared) Close() error { return nil }

func TestCachedProviderLoadsOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockProvider(ctrl)
	inner.EXPECT().
		Products(gomock.Any()).
		Return([]rag.ProductRecord{{ID: "1", Title: "Jahôdky"}}, nil).
		Times(1)

	p := NewCachedProvider(inner, NewCache(0, 0, nil))
	for range 3 {
		products, err := p.Products(context.Background())
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Jahôdky", products[0].Title)
	}
}

func TestCachedProviderErrorsAreNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockProvider(ctrl)
	gomock.InOrder(
		inner.EXPECT().Products(gomock.Any()).Return(nil, ErrUpstream),
		inner.EXPECT().Products(gomock.Any()).Return([]rag.ProductRecord{{ID: "1"}}, nil),
	)

	p := NewCachedProvider(inner, NewCache(0, 0, nil))
	_, err := p.Products(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)

	products, err := p.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestCachedProviderRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockProvider(ctrl)
	inner.EXPECT().Products(gomock.Any()).Return([]rag.ProductRecord{{ID: "1"}}, nil).Times(2)

	shared := newMemoryShared()
	p := NewCachedProvider(inner, NewCache(0, 0, shared))
	_, err := p.Products(context.Background())
	require.NoError(t, err)

	p.Refresh(context.Background())
	assert.Empty(t, shared.data)

	_, err = p.Products(context.Background())
	require.NoError(t, err)
}

func TestCachedSharedTier(t *testing.T) {
	shared := newMemoryShared()
	loads := 0
	load := func(context.Context) ([]string, error) {
		loads++
		return []string{"a", "b"}, nil
	}

	first := NewCache(0, time.Minute, shared)
	got, err := Cached(context.Background(), first, "k", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, shared.sets)

	// A second instance with a cold local tier is served by the shared one.
	second := NewCache(0, time.Minute, shared)
	got, err = Cached(context.Background(), second, "k", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, loads)
}

func TestCachedSharedFailureFallsBackToLoad(t *testing.T) {
	shared := newMemoryShared()
	shared.failGet = true

	c := NewCache(0, time.Minute, shared)
	got, err := Cached(context.Background(), c, "k", func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestCachedExpires(t *testing.T) {
	loads := 0
	load := func(context.Context) (int, error) {
		loads++
		return loads, nil
	}

	c := NewCache(0, 50*time.Millisecond, nil)
	v, err := Cached(context.Background(), c, "k", load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	assert.Eventually(t, func() bool {
		v, err := Cached(context.Background(), c, "k", load)
		return err == nil && v == 2
	}, 2*time.Second, 20*time.Millisecond)
}
