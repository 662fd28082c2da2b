package memory

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock — управляемое время для проверок TTL.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, maxSize int, ttl time.Duration) (*Store, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	s, err := NewStore(maxSize, ttl, WithClock(clock))
	require.NoError(t, err)
	return s, clock
}

func TestNewStore_InvalidConfig(t *testing.T) {
	_, err := NewStore(0, time.Minute)
	require.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = NewStore(10, 0)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSetGet_HitMiss(t *testing.T) {
	s, _ := newTestStore(t, 2, 5*time.Minute)

	_, ok := s.Get("product:1")
	require.False(t, ok, "expected miss before Set")

	s.Set("product:1", "widget", time.Minute)
	got, ok := s.Get("product:1")
	require.True(t, ok)
	require.Equal(t, "widget", got)
}

// Значение живёт ровно ttl: до границы — попадание, на границе и после — промах.
func TestTTL_Boundary(t *testing.T) {
	s, clock := newTestStore(t, 10, time.Hour)

	s.Set("k", 1, 100*time.Millisecond)
	clock.Advance(99 * time.Millisecond)
	_, ok := s.Get("k")
	require.True(t, ok, "expected hit before ttl elapsed")

	clock.Advance(time.Millisecond)
	_, ok = s.Get("k")
	require.False(t, ok, "expected miss at ttl boundary")
	require.Equal(t, 0, s.Size(), "expired entry must be removed on read")
}

func TestHas_LazyExpiration(t *testing.T) {
	s, clock := newTestStore(t, 10, time.Hour)

	s.Set("k", 1, time.Second)
	require.True(t, s.Has("k"))

	clock.Advance(2 * time.Second)
	require.Equal(t, 1, s.Size(), "expired entry stays until touched")
	require.False(t, s.Has("k"))
	require.Equal(t, 0, s.Size())
}

func TestSet_NonPositiveTTLExpiresImmediately(t *testing.T) {
	s, _ := newTestStore(t, 10, time.Hour)

	s.Set("zero", 1, 0)
	s.Set("negative", 1, -time.Second)

	require.Equal(t, 2, s.Size())
	require.False(t, s.Has("zero"))
	require.False(t, s.Has("negative"))
}

func TestSetDefault_UsesDefaultTTL(t *testing.T) {
	s, clock := newTestStore(t, 10, time.Minute)

	s.SetDefault("k", "v")
	clock.Advance(59 * time.Second)
	require.True(t, s.Has("k"))
	clock.Advance(time.Second)
	require.False(t, s.Has("k"))
}

func TestSet_EmptyKeyIgnored(t *testing.T) {
	s, _ := newTestStore(t, 10, time.Minute)
	s.Set("", "v", time.Minute)
	require.Equal(t, 0, s.Size())
}

// Переполнение вытесняет первую вставленную запись, размер не превышает maxSize.
func TestFIFOEviction_OldestInsertedGoesFirst(t *testing.T) {
	const maxSize = 3
	s, _ := newTestStore(t, maxSize, time.Hour)

	for i := 0; i <= maxSize; i++ {
		s.SetDefault(fmt.Sprintf("k%d", i), i)
		require.LessOrEqual(t, s.Size(), maxSize)
	}

	require.Equal(t, maxSize, s.Size())
	require.False(t, s.Has("k0"), "first inserted key must be evicted")
	require.Equal(t, []string{"k1", "k2", "k3"}, s.Keys())
}

// Чтение не спасает запись от вытеснения: порядок только по вставке.
func TestEviction_IsNotLRU(t *testing.T) {
	s, _ := newTestStore(t, 2, time.Hour)

	s.SetDefault("A", 1)
	s.SetDefault("B", 2)
	_, ok := s.Get("A")
	require.True(t, ok)

	s.SetDefault("C", 3)

	require.False(t, s.Has("A"), "A is oldest by insertion and must go despite the read")
	require.True(t, s.Has("B"))
	require.True(t, s.Has("C"))
}

func TestSet_OverwriteMovesToNewest(t *testing.T) {
	s, clock := newTestStore(t, 2, time.Hour)

	s.SetDefault("A", 1)
	s.SetDefault("B", 2)
	clock.Advance(time.Second)
	s.SetDefault("A", 10)

	require.Equal(t, []string{"B", "A"}, s.Keys())

	s.SetDefault("C", 3)
	require.False(t, s.Has("B"))
	v, ok := s.Get("A")
	require.True(t, ok)
	require.Equal(t, 10, v)
}

func TestSet_OverflowDropsExpiredBeforeLive(t *testing.T) {
	s, clock := newTestStore(t, 2, time.Hour)

	s.SetDefault("live", 1)
	s.Set("short", 2, time.Second)
	clock.Advance(2 * time.Second)

	s.SetDefault("new", 3)

	require.Equal(t, 2, s.Size())
	require.True(t, s.Has("live"), "live entry must survive while an expired one can be dropped")
	require.True(t, s.Has("new"))
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(t, 10, time.Hour)
	s.SetDefault("k", 1)

	require.True(t, s.Delete("k"))
	require.False(t, s.Delete("k"))
	require.False(t, s.Has("k"))
}

func TestClear(t *testing.T) {
	s, _ := newTestStore(t, 10, time.Hour)
	for i := 0; i < 5; i++ {
		s.SetDefault(fmt.Sprintf("k%d", i), i)
	}

	s.Clear()
	require.Equal(t, 0, s.Size())
	require.Empty(t, s.Keys())

	s.SetDefault("after", 1)
	require.True(t, s.Has("after"))
}

// Size и Keys учитывают истёкшие записи до Cleanup; Cleanup удаляет ровно их.
func TestCleanup_RemovesOnlyExpired(t *testing.T) {
	s, clock := newTestStore(t, 10, time.Hour)

	s.Set("a", 1, time.Second)
	s.Set("b", 2, time.Second)
	s.Set("c", 3, time.Hour)
	clock.Advance(5 * time.Second)

	require.Equal(t, 3, s.Size())
	require.Equal(t, []string{"a", "b", "c"}, s.Keys())

	require.Equal(t, 2, s.Cleanup())
	require.Equal(t, 1, s.Size())
	require.Equal(t, []string{"c"}, s.Keys())
	require.Equal(t, 0, s.Cleanup())
}

func TestStats(t *testing.T) {
	s, clock := newTestStore(t, 5, time.Hour)

	empty := s.Stats()
	require.Equal(t, 0, empty.Size)
	require.Equal(t, 5, empty.MaxSize)
	require.Equal(t, 0, empty.ExpiredCount)
	require.Equal(t, time.Duration(0), empty.AverageAge)

	s.Set("old", 1, time.Second)
	clock.Advance(4 * time.Second)
	s.SetDefault("fresh", 2)
	clock.Advance(2 * time.Second)

	st := s.Stats()
	require.Equal(t, 2, st.Size)
	require.Equal(t, 1, st.ExpiredCount)
	// ages: 6s и 2s
	require.Equal(t, 4*time.Second, st.AverageAge)
}

func TestGetAs_TypeMismatchIsMiss(t *testing.T) {
	s, _ := newTestStore(t, 10, time.Hour)
	s.SetDefault("n", 42)

	n, ok := GetAs[int](s, "n")
	require.True(t, ok)
	require.Equal(t, 42, n)

	_, ok = GetAs[string](s, "n")
	require.False(t, ok)
}

func TestStore_ConcurrentAccessKeepsBound(t *testing.T) {
	const maxSize = 50
	s, err := NewStore(maxSize, time.Minute)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("g%d:%d", g, i)
				s.SetDefault(key, i)
				s.Get(key)
				if i%10 == 0 {
					s.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()

	require.LessOrEqual(t, s.Size(), maxSize)
	require.Len(t, s.Keys(), s.Size())
}
