package waitqueue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gtidcore/gtidcore/gtid"
	"github.com/gtidcore/gtidcore/repl"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu     sync.Mutex
	id     uint64
	killed bool
}

func (s *fakeSession) Mutex() *sync.Mutex { return &s.mu }
func (s *fakeSession) Killed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.killed
}
func (s *fakeSession) ID() uint64                            { return s.id }
func (s *fakeSession) AutoIncrementOffset() (uint64, uint64) { return 0, 1 }

var _ repl.Session = (*fakeSession)(nil)

func TestRegister_AlreadySatisfiedReturnsWithoutEnqueue(t *testing.T) {
	r := NewRegistry(0)
	r.OnApply(1, 10)

	status, err := r.Register(context.Background(), &fakeSession{id: 1}, gtid.ID{Domain: 1, Seq: 5})
	require.NoError(t, err)
	require.Equal(t, Reached, status)

	r.mu.Lock()
	require.Empty(t, r.domains[1].waiters)
	r.mu.Unlock()
}

func TestRegister_SingleWaiterSatisfiedByOnApply(t *testing.T) {
	r := NewRegistry(0)
	done := make(chan Status, 1)

	go func() {
		status, _ := r.Register(context.Background(), &fakeSession{id: 1}, gtid.ID{Domain: 1, Seq: 5})
		done <- status
	}()

	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		ds, ok := r.domains[1]
		return ok && len(ds.waiters) == 1
	}, time.Second, time.Millisecond)

	r.OnApply(1, 5)

	select {
	case status := <-done:
		require.Equal(t, Reached, status)
	case <-time.After(time.Second):
		t.Fatal("waiter never woke")
	}
}

func TestRegister_TimeoutThenPromotesSuccessor(t *testing.T) {
	r := NewRegistry(0)

	ctx1, cancel1 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel1()

	done1 := make(chan Status, 1)
	go func() {
		status, _ := r.Register(ctx1, &fakeSession{id: 1}, gtid.ID{Domain: 1, Seq: 5})
		done1 <- status
	}()

	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		ds := r.domains[1]
		return ds != nil && len(ds.waiters) == 1 && ds.small == ds.waiters[0]
	}, time.Second, time.Millisecond)

	done2 := make(chan Status, 1)
	go func() {
		status, _ := r.Register(context.Background(), &fakeSession{id: 2}, gtid.ID{Domain: 1, Seq: 7})
		done2 <- status
	}()

	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return len(r.domains[1].waiters) == 2
	}, time.Second, time.Millisecond)

	select {
	case status := <-done1:
		require.Equal(t, Timeout, status)
	case <-time.After(time.Second):
		t.Fatal("first waiter never timed out")
	}

	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		ds := r.domains[1]
		return len(ds.waiters) == 1 && ds.small == ds.waiters[0] && ds.small.sessionID == 2
	}, time.Second, time.Millisecond)

	r.OnApply(1, 7)
	select {
	case status := <-done2:
		require.Equal(t, Reached, status)
	case <-time.After(time.Second):
		t.Fatal("second waiter never woke")
	}
}

func TestRegister_ManyWaitersExactlyOneSmall(t *testing.T) {
	r := NewRegistry(0)

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	done := make([]chan Status, n)
	for i := 0; i < n; i++ {
		done[i] = make(chan Status, 1)
		go func(i int) {
			defer wg.Done()
			status, _ := r.Register(context.Background(), &fakeSession{id: uint64(i)}, gtid.ID{Domain: 9, Seq: uint64(i + 1)})
			done[i] <- status
		}(i)
	}

	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		ds, ok := r.domains[9]
		return ok && len(ds.waiters) == n
	}, time.Second, time.Millisecond)

	r.mu.Lock()
	smallCount := 0
	for _, w := range r.domains[9].waiters {
		if w.small {
			smallCount++
		}
	}
	require.Equal(t, 1, smallCount)
	r.mu.Unlock()

	r.OnApply(9, uint64(n))
	wg.Wait()
	for i := 0; i < n; i++ {
		require.Equal(t, Reached, <-done[i])
	}
}

func TestWaitForPos_SatisfiedAcrossMultipleDomains(t *testing.T) {
	r := NewRegistry(0)
	r.OnApply(0, 3)
	r.OnApply(1, 8)

	status, err := r.WaitForPos(context.Background(), &fakeSession{id: 1}, "0-1-3,1-1-8")
	require.NoError(t, err)
	require.Equal(t, Reached, status)
}

func TestWaitForPos_ParseErrorPropagates(t *testing.T) {
	r := NewRegistry(0)
	_, err := r.WaitForPos(context.Background(), &fakeSession{id: 1}, "not-a-gtid")
	require.Error(t, err)
}
