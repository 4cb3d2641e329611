package slavestate

import (
	"sync"
	"testing"
	"time"

	"github.com/gtidcore/gtidcore/gtid"
	"github.com/gtidcore/gtidcore/repl"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu    sync.Mutex
	calls []gtid.ID
}

func (f *fakeNotifier) OnApply(domain uint32, seq uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, gtid.ID{Domain: domain, Seq: seq})
}

type fakeSession struct {
	mu     sync.Mutex
	killed bool
}

func (s *fakeSession) Mutex() *sync.Mutex { return &s.mu }
func (s *fakeSession) Killed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.killed
}
func (s *fakeSession) ID() uint64                               { return 1 }
func (s *fakeSession) AutoIncrementOffset() (uint64, uint64)    { return 0, 1 }

var _ repl.Session = (*fakeSession)(nil)

func TestRecord_AdvancesHighestSeqAndNotifies(t *testing.T) {
	n := &fakeNotifier{}
	s := NewState(n, 0)
	defer s.Close()

	subID := s.NextSubID()
	require.NoError(t, s.Record(gtid.ID{Domain: 1, Server: 2, Seq: 5}, subID, nil))

	n.mu.Lock()
	require.Len(t, n.calls, 1)
	require.Equal(t, uint64(5), n.calls[0].Seq)
	n.mu.Unlock()

	snap := s.Snapshot(nil, true)
	require.Len(t, snap, 1)
	require.Equal(t, gtid.ID{Domain: 1, Server: 2, Seq: 5}, snap[0])
}

func TestCheckDuplicate_FirstCallerBecomesOwner(t *testing.T) {
	s := NewState(nil, 0)
	defer s.Close()

	decision, err := s.CheckDuplicate(gtid.ID{Domain: 1, Seq: 1}, repl.Applier(1), nil)
	require.NoError(t, err)
	require.Equal(t, Apply, decision)

	decision, err = s.CheckDuplicate(gtid.ID{Domain: 1, Seq: 2}, repl.Applier(1), nil)
	require.NoError(t, err)
	require.Equal(t, Apply, decision)
}

func TestCheckDuplicate_SkipsAlreadyApplied(t *testing.T) {
	s := NewState(nil, 0)
	defer s.Close()

	// Applier 1 owns the domain, so applier 2 is not handed ownership.
	_, err := s.CheckDuplicate(gtid.ID{Domain: 1, Seq: 10}, repl.Applier(1), nil)
	require.NoError(t, err)
	require.NoError(t, s.Record(gtid.ID{Domain: 1, Server: 1, Seq: 10}, s.NextSubID(), nil))

	decision, err := s.CheckDuplicate(gtid.ID{Domain: 1, Seq: 5}, repl.Applier(2), nil)
	require.NoError(t, err)
	require.Equal(t, Skip, decision)
}

func TestCheckDuplicate_SecondApplierBlocksUntilRelease(t *testing.T) {
	s := NewState(nil, 0)
	defer s.Close()

	decision, err := s.CheckDuplicate(gtid.ID{Domain: 1, Seq: 1}, repl.Applier(1), nil)
	require.NoError(t, err)
	require.Equal(t, Apply, decision)

	done := make(chan Decision, 1)
	go func() {
		d, err := s.CheckDuplicate(gtid.ID{Domain: 1, Seq: 99}, repl.Applier(2), nil)
		require.NoError(t, err)
		done <- d
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.ReleaseDomainOwner(1, repl.Applier(1)))

	select {
	case d := <-done:
		require.Equal(t, Apply, d)
	case <-time.After(time.Second):
		t.Fatal("second applier never woke after release")
	}
}

func TestCheckDuplicate_CancelledBySessionKill(t *testing.T) {
	s := NewState(nil, 30*time.Millisecond)
	defer s.Close()

	_, err := s.CheckDuplicate(gtid.ID{Domain: 1, Seq: 1}, repl.Applier(1), nil)
	require.NoError(t, err)

	sess := &fakeSession{}
	go func() {
		time.Sleep(10 * time.Millisecond)
		sess.mu.Lock()
		sess.killed = true
		sess.mu.Unlock()
	}()

	_, err = s.CheckDuplicate(gtid.ID{Domain: 1, Seq: 99}, repl.Applier(2), sess)
	require.Error(t, err)
	var cancelled *CancelledError
	require.ErrorAs(t, err, &cancelled)
}

func TestGrabPendingDeleteList_DetachesAndResets(t *testing.T) {
	s := NewState(nil, 0)
	defer s.Close()

	require.NoError(t, s.Record(gtid.ID{Domain: 1, Server: 1, Seq: 1}, s.NextSubID(), nil))
	require.NoError(t, s.Record(gtid.ID{Domain: 2, Server: 1, Seq: 1}, s.NextSubID(), nil))

	list := s.GrabPendingDeleteList()
	require.Len(t, list, 2)

	require.Empty(t, s.GrabPendingDeleteList())
}

func TestPositionTableRegistry_SelectsAvailableThenDefault(t *testing.T) {
	s := NewState(nil, 0)
	defer s.Close()

	engineA := "engine-a"
	engineB := "engine-b"

	_, err := s.SelectPositionTable(engineA)
	require.Error(t, err)

	nodeA := s.RegisterPositionTable(engineA, nil, "pos_a", false)
	nodeB := s.RegisterPositionTable(engineB, nil, "pos_b", true)

	_, err = s.SelectPositionTable(engineA)
	require.Error(t, err, "AutoCreate is not yet Available")

	s.MarkTableState(nodeA, Available)
	got, err := s.SelectPositionTable(engineA)
	require.NoError(t, err)
	require.Same(t, nodeA, got)

	s.MarkTableState(nodeB, Available)
	got, err = s.SelectPositionTable("engine-c")
	require.NoError(t, err, "falls back to default")
	require.Same(t, nodeB, got)

	s.DropPositionTable(nodeA)
	_, err = s.SelectPositionTable(engineA)
	require.NoError(t, err, "falls back to default once engine-a's table is dropped")
}

func TestSnapshot_MergesWithExtraPreferringHigherSeq(t *testing.T) {
	s := NewState(nil, 0)
	defer s.Close()

	require.NoError(t, s.Record(gtid.ID{Domain: 1, Server: 1, Seq: 5}, s.NextSubID(), nil))

	extra := gtid.List{
		{Domain: 1, Server: 1, Seq: 3},
		{Domain: 9, Server: 1, Seq: 7},
	}

	out := s.Snapshot(extra, true)
	require.Len(t, out, 2)
	require.Equal(t, gtid.ID{Domain: 1, Server: 1, Seq: 5}, out[0])
	require.Equal(t, gtid.ID{Domain: 9, Server: 1, Seq: 7}, out[1])
}
