package statevector_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"collabotp/pkg/statevector"
)

func TestGetSetAdd(t *testing.T) {
	v := statevector.New()
	require.Equal(t, uint64(0), v.Get(1))

	require.NoError(t, v.Set(1, 3))
	require.Equal(t, uint64(3), v.Get(1))

	require.Equal(t, uint64(5), v.Add(1, 2))
	require.Equal(t, uint64(5), v.Get(1))
}

func TestSetRejectsDecrease(t *testing.T) {
	v := statevector.New()
	require.NoError(t, v.Set(1, 5))
	err := v.Set(1, 4)
	require.ErrorIs(t, err, statevector.ErrMonotonicityViolation)
	require.Equal(t, uint64(5), v.Get(1))
}

func TestCausallyBefore(t *testing.T) {
	a := statevector.New()
	_ = a.Set(1, 1)
	b := statevector.New()
	_ = b.Set(1, 1)
	_ = b.Set(2, 1)

	require.True(t, a.CausallyBefore(b))
	require.False(t, b.CausallyBefore(a))

	c := statevector.New()
	_ = c.Set(2, 1)
	require.False(t, a.CausallyBefore(c))
	require.False(t, c.CausallyBefore(a))
}

func TestCompareTotalOrder(t *testing.T) {
	a := statevector.New()
	_ = a.Set(1, 1)
	b := statevector.New()
	_ = b.Set(2, 1)

	// Concurrent vectors still compare, giving a total order via the
	// lowest differing participant id.
	require.NotEqual(t, 0, a.Compare(b))
	require.Equal(t, -a.Compare(b), b.Compare(a))

	require.Equal(t, 0, a.Compare(a.Copy()))
}

func TestStringRoundTrip(t *testing.T) {
	v := statevector.New()
	_ = v.Set(2, 4)
	_ = v.Set(1, 7)

	s := v.String()
	require.Equal(t, "1:7;2:4", s)

	got, err := statevector.FromString(s)
	require.NoError(t, err)
	require.True(t, got.Equal(v))
}

func TestDiffRoundTrip(t *testing.T) {
	base := statevector.New()
	_ = base.Set(1, 1)
	_ = base.Set(2, 1)

	target := base.Copy()
	_ = target.Set(1, 3)

	diff, err := target.ToStringDiff(base)
	require.NoError(t, err)
	require.Equal(t, "1:3", diff)

	got, err := statevector.FromStringDiff(diff, base)
	require.NoError(t, err)
	require.True(t, got.Equal(target))
}

func TestDiffRejectsKeyRemoval(t *testing.T) {
	base := statevector.New()
	_ = base.Set(1, 1)
	_ = base.Set(2, 1)

	target := statevector.New()
	_ = target.Set(1, 1)

	_, err := target.ToStringDiff(base)
	require.ErrorIs(t, err, statevector.ErrKeyRemoval)
}

func TestFromStringParseError(t *testing.T) {
	_, err := statevector.FromString("not-a-vector")
	require.ErrorIs(t, err, statevector.ErrParse)
}

func TestSum(t *testing.T) {
	v := statevector.New()
	require.Equal(t, uint64(0), v.Sum())
	_ = v.Set(1, 3)
	_ = v.Set(2, 4)
	require.Equal(t, uint64(7), v.Sum())
}

func TestEmptyVectorRoundTrip(t *testing.T) {
	v := statevector.New()
	require.Equal(t, "", v.String())

	got, err := statevector.FromString("")
	require.NoError(t, err)
	require.True(t, got.Equal(v))
}
