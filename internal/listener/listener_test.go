package listener

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListener_StartOrdersAreSequential(t *testing.T) {
	l := New()
	l.ComponentStarted("c1", DefaultStartOrder)
	l.ComponentStarted("c2", 50)
	l.ComponentStarted("c3", NoImplementationStartOrder)
	l.ComponentStarted("c1", DefaultStartOrder)

	for i, name := range []string{"c1", "c2", "c3"} {
		got, ok := l.StartOrder(name)
		require.True(t, ok, name)
		assert.Equal(t, int64(i), got, name)
	}
	_, ok := l.StartOrder("missing")
	assert.False(t, ok)
}

func TestListener_DeclaredStartOrderSkipsSentinels(t *testing.T) {
	l := New()
	l.ComponentStarted("default", DefaultStartOrder)
	l.ComponentStarted("noimpl", NoImplementationStartOrder)
	l.ComponentStarted("custom", -500)

	_, ok := l.DeclaredStartOrder("default")
	assert.False(t, ok)
	_, ok = l.DeclaredStartOrder("noimpl")
	assert.False(t, ok)
	v, ok := l.DeclaredStartOrder("custom")
	require.True(t, ok)
	assert.Equal(t, int64(-500), v)
}

func TestListener_RegistrationCounters(t *testing.T) {
	l := New()

	// Two contributions from c1 to target--xp, one from c2, one from c1 elsewhere.
	idx, ok := l.ExtensionRegistered("c1", "target", "xp")
	require.True(t, ok)
	assert.Equal(t, int64(0), idx)
	idx, _ = l.ExtensionRegistered("c2", "target", "xp")
	assert.Equal(t, int64(0), idx)
	idx, _ = l.ExtensionRegistered("c1", "target", "xp")
	assert.Equal(t, int64(1), idx)
	idx, _ = l.ExtensionRegistered("c1", "other", "types")
	assert.Equal(t, int64(0), idx)

	cases := []struct {
		contributor string
		point       string
		index       int64
		want        int64
	}{
		{"c1", "xp", 0, 0},
		{"c2", "xp", 0, 1},
		{"c1", "xp", 1, 2},
		{"c1", "types", 0, 0},
	}
	for _, tc := range cases {
		got, ok := l.RegistrationOrder(tc.contributor, tc.point, tc.index)
		require.True(t, ok, "%s/%s/%d", tc.contributor, tc.point, tc.index)
		assert.Equal(t, tc.want, got, "%s/%s/%d", tc.contributor, tc.point, tc.index)
	}

	orders := l.Orders()
	assert.Equal(t, int64(3), orders.ContributionCount("target--xp"))
	assert.Equal(t, int64(1), orders.ContributionCount("other--types"))
}

func TestListener_IgnoresEventsAfterStop(t *testing.T) {
	l := New()
	l.ComponentStarted("c1", DefaultStartOrder)
	_, _ = l.ExtensionRegistered("c1", "target", "xp")
	require.Equal(t, StateListening, l.State())

	l.RuntimeStarted()
	require.Equal(t, StateStopped, l.State())
	before := l.Orders()

	l.ComponentStarted("c1", 10)
	l.ComponentStarted("late", DefaultStartOrder)
	_, recorded := l.ExtensionRegistered("c1", "target", "xp")
	assert.False(t, recorded)
	l.RuntimeStarted()

	got, ok := l.StartOrder("c1")
	require.True(t, ok)
	assert.Equal(t, int64(0), got)
	_, ok = l.DeclaredStartOrder("c1")
	assert.False(t, ok)
	_, ok = l.StartOrder("late")
	assert.False(t, ok)
	_, ok = l.RegistrationOrder("c1", "xp", 1)
	assert.False(t, ok)
	assert.Same(t, before, l.Orders())
}

func TestListener_OrdersBeforeStopAreCopies(t *testing.T) {
	l := New()
	l.ComponentStarted("c1", DefaultStartOrder)
	snap := l.Orders()
	l.ComponentStarted("c2", DefaultStartOrder)

	_, ok := snap.StartOrder("c2")
	assert.False(t, ok)
	assert.Equal(t, 2, l.Orders().StartedCount())
}

func TestListener_ConcurrentReadsAfterStop(t *testing.T) {
	l := New()
	for _, name := range []string{"a", "b", "c", "d"} {
		l.ComponentStarted(name, DefaultStartOrder)
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 100; j++ {
				_, _ = l.StartOrder("c")
				l.ComponentStarted("noise", DefaultStartOrder)
			}
		}()
	}
	l.RuntimeStarted()
	close(start)
	wg.Wait()

	got, ok := l.StartOrder("c")
	require.True(t, ok)
	assert.Equal(t, int64(2), got)
	_, ok = l.StartOrder("noise")
	assert.False(t, ok)
}

func TestOrders_NilAndEmpty(t *testing.T) {
	var o *Orders
	_, ok := o.StartOrder("x")
	assert.False(t, ok)
	_, ok = Empty.RegistrationOrder("x", "y", 0)
	assert.False(t, ok)
	assert.Equal(t, 0, Empty.StartedCount())
}
