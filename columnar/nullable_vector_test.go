package columnar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNullableVectorDense(t *testing.T) {
	v := NewNullableVector[int64]()
	v.Append(10)
	v.Append(20)
	v.Append(30)

	require.Equal(t, uint32(3), v.Len())
	require.Nil(t, v.present, "dense vector should not materialize a presence bitmap")

	val, ok := v.Get(1)
	require.True(t, ok)
	require.Equal(t, int64(20), val)
	require.Equal(t, int64(30), v.GetNonNull(2))
}

func TestNullableVectorSparse(t *testing.T) {
	v := NewNullableVector[int32]()
	v.Append(10)
	v.Append(20)
	v.AppendNull()
	v.Append(20)

	require.NotNil(t, v.present, "first null materializes the presence bitmap")
	require.Equal(t, uint32(4), v.Len())

	// Values appended before the first null stay present.
	val, ok := v.Get(0)
	require.True(t, ok)
	require.Equal(t, int32(10), val)

	_, ok = v.Get(2)
	require.False(t, ok)

	val, ok = v.Get(3)
	require.True(t, ok)
	require.Equal(t, int32(20), val)
}

func TestNullableVectorStringIDs(t *testing.T) {
	v := NewNullableVector[StringID]()
	v.Append(StringID(1))
	v.Append(NullStringID)

	require.Equal(t, StringID(1), v.GetNonNull(0))
	require.Equal(t, NullStringID, v.GetNonNull(1))
}
