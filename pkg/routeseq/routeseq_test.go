package routeseq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"inet.af/netaddr"

	"github.com/wavetrie/wavetrie/pkg/wavelettrie"
)

func TestInsertAndAccessIPv4(t *testing.T) {
	rs := New()
	require.NoError(t, rs.AppendFromString("192.0.2.1"))
	require.NoError(t, rs.AppendFromString("198.51.100.0/24"))

	require.Equal(t, 2, rs.Len4())
	require.Equal(t, 0, rs.Len6())

	got, err := rs.At4(0)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1", got)

	got, err = rs.At4(1)
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.0/24", got)
}

// TestInsertRejectsCoveringRoute documents that a host address and a CIDR
// covering it cannot coexist: one is a bit-prefix of the other, which
// wavelettrie's prefix-free requirement forbids.
func TestInsertRejectsCoveringRoute(t *testing.T) {
	rs := New()
	require.NoError(t, rs.AppendFromString("192.0.2.1"))

	err := rs.AppendFromString("192.0.2.0/24")
	require.Error(t, err)
	assert.ErrorIs(t, err, wavelettrie.ErrPrefixFreeViolation)
}

func TestInsertAndAccessIPv6(t *testing.T) {
	rs := New()
	require.NoError(t, rs.AppendFromString("2001:db8::1"))

	require.Equal(t, 1, rs.Len6())
	got, err := rs.At6(0)
	require.NoError(t, err)
	assert.Equal(t, "2001:db8::1", got)
}

func TestInsertFromNetaddr(t *testing.T) {
	rs := New()
	prefix, err := netaddr.ParseIPPrefix("10.0.0.0/8")
	require.NoError(t, err)
	require.NoError(t, rs.InsertFromNetaddr(prefix, 0))

	got, err := rs.At4(0)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/8", got)
}

func TestInsertAtPositionPreservesOrder(t *testing.T) {
	rs := New()
	require.NoError(t, rs.AppendFromString("10.0.0.1"))
	require.NoError(t, rs.InsertFromString("10.0.0.2", 0))

	got0, err := rs.At4(0)
	require.NoError(t, err)
	got1, err := rs.At4(1)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", got0)
	assert.Equal(t, "10.0.0.1", got1)
}
