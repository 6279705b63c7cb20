package columnar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringPoolIntern(t *testing.T) {
	p := NewStringPool()

	a := p.Intern("alpha")
	b := p.Intern("beta")
	require.NotEqual(t, a, b)
	require.NotEqual(t, NullStringID, a)

	// Interning again reuses the id.
	require.Equal(t, a, p.Intern("alpha"))
	require.Equal(t, 2, p.Len())

	s, ok := p.Get(a)
	require.True(t, ok)
	require.Equal(t, "alpha", s)
}

func TestStringPoolNullSentinel(t *testing.T) {
	p := NewStringPool()

	_, ok := p.Get(NullStringID)
	require.False(t, ok)

	// The empty string is a real value, distinct from null.
	id := p.Intern("")
	require.NotEqual(t, NullStringID, id)
	s, ok := p.Get(id)
	require.True(t, ok)
	require.Equal(t, "", s)
}
