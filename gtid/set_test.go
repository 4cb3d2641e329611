package gtid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet_MaxSeq(t *testing.T) {
	s := NewSet()
	s.Add(ID{Domain: 1, Server: 1, Seq: 5})
	s.Add(ID{Domain: 1, Server: 2, Seq: 3})
	s.Add(ID{Domain: 2, Server: 1, Seq: 10})

	seq, ok := s.MaxSeq(1)
	require.True(t, ok)
	require.Equal(t, uint64(5), seq)

	seq, ok = s.MaxSeq(2)
	require.True(t, ok)
	require.Equal(t, uint64(10), seq)

	_, ok = s.MaxSeq(3)
	require.False(t, ok)
}
