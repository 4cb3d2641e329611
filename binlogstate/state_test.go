package binlogstate

import (
	"testing"

	"github.com/gtidcore/gtidcore/gtid"
	"github.com/stretchr/testify/require"
)

func TestUpdate_StrictMode_RejectsOutOfOrder(t *testing.T) {
	s := NewState(true)
	require.NoError(t, s.Update(gtid.ID{Domain: 1, Server: 1, Seq: 5}))

	err := s.Update(gtid.ID{Domain: 1, Server: 1, Seq: 5})
	var outOfOrder *OutOfOrderSeqError
	require.ErrorAs(t, err, &outOfOrder)
}

func TestUpdate_StrictMode_RejectsNonMonotonic(t *testing.T) {
	s := NewState(true)
	require.NoError(t, s.Update(gtid.ID{Domain: 1, Server: 1, Seq: 5}))

	err := s.Update(gtid.ID{Domain: 1, Server: 1, Seq: 7})
	var nonMonotonic *NonMonotonicSeqError
	require.ErrorAs(t, err, &nonMonotonic)

	require.NoError(t, s.Update(gtid.ID{Domain: 1, Server: 1, Seq: 6}))
}

func TestNextSeqFor_DoesNotCommit(t *testing.T) {
	s := NewState(true)
	require.NoError(t, s.Update(gtid.ID{Domain: 1, Server: 1, Seq: 5}))

	require.Equal(t, uint64(6), s.NextSeqFor(1))
	require.Equal(t, uint64(6), s.NextSeqFor(1))

	require.NoError(t, s.Update(gtid.ID{Domain: 1, Server: 1, Seq: 6}))
	require.Equal(t, uint64(7), s.NextSeqFor(1))
}

func TestSnapshot_SortedByDomainServer(t *testing.T) {
	s := NewState(false)
	require.NoError(t, s.Update(gtid.ID{Domain: 2, Server: 1, Seq: 1}))
	require.NoError(t, s.Update(gtid.ID{Domain: 1, Server: 2, Seq: 1}))
	require.NoError(t, s.Update(gtid.ID{Domain: 1, Server: 1, Seq: 1}))

	snap := s.Snapshot()
	require.Equal(t, gtid.List{
		{Domain: 1, Server: 1, Seq: 1},
		{Domain: 1, Server: 2, Seq: 1},
		{Domain: 2, Server: 1, Seq: 1},
	}, snap)
}

func TestDropDomain_RefusesWhenClusterAhead(t *testing.T) {
	s := NewState(false)
	require.NoError(t, s.Update(gtid.ID{Domain: 1, Server: 1, Seq: 5}))

	cluster := gtid.NewSet()
	cluster.Add(gtid.ID{Domain: 1, Server: 9, Seq: 10})

	err := s.DropDomain([]uint32{1}, cluster)
	var stillActive *DomainStillActiveError
	require.ErrorAs(t, err, &stillActive)

	// Local caught up: drop succeeds.
	require.NoError(t, s.Update(gtid.ID{Domain: 1, Server: 1, Seq: 10}))
	require.NoError(t, s.DropDomain([]uint32{1}, cluster))
	require.Empty(t, s.Snapshot())
}

func TestCheckStrictSequence(t *testing.T) {
	s := NewState(true)
	require.NoError(t, s.Update(gtid.ID{Domain: 1, Server: 1, Seq: 5}))

	require.Error(t, s.CheckStrictSequence(1, 1, 5))
	require.Error(t, s.CheckStrictSequence(1, 1, 4))
	require.NoError(t, s.CheckStrictSequence(1, 1, 6))
}
