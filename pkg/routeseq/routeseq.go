// Package routeseq adapts IP addresses and network prefixes onto a wavelet
// trie, the way routesum.go adapts them onto an rstrie. Unlike rstrie,
// which collapses a covered route into its covering route and forgets
// insertion order, a RouteSeq keeps every inserted address or prefix at the
// index it was inserted at and returns it by that index — useful when a
// caller needs indexed (not just summarized) route storage. RouteSeq itself
// offers no Rank or Select queries over network prefixes.
//
// The underlying trie is still prefix-free: a host address and any CIDR
// covering it cannot both be stored in the same address family's RouteSeq,
// since one is a bit-prefix of the other. Insert/Append surface this as the
// same ErrPrefixFreeViolation wavelettrie itself returns, rather than
// silently collapsing or reordering routes the way rstrie would.
package routeseq

import (
	"net/netip"
	"strings"

	"github.com/pkg/errors"
	"inet.af/netaddr"

	"github.com/wavetrie/wavetrie/pkg/bitstring"
	"github.com/wavetrie/wavetrie/pkg/wavelettrie"
)

// RouteSeq indexes IPv4 and IPv6 addresses/prefixes in two wavelet tries,
// keyed by insertion position within each address family.
type RouteSeq struct {
	ipv4, ipv6 *wavelettrie.Node
}

// New returns an empty RouteSeq.
func New() *RouteSeq {
	return &RouteSeq{ipv4: wavelettrie.New(), ipv6: wavelettrie.New()}
}

// InsertFromString parses s as either a bare IP or a CIDR network and
// inserts it at index i within its address family's trie.
func (rs *RouteSeq) InsertFromString(s string, i int) error {
	addr, bits, err := parseRoute(s)
	if err != nil {
		return err
	}
	return rs.insert(addr, bits, i)
}

// AppendFromString parses and appends s to the end of its address family's
// trie.
func (rs *RouteSeq) AppendFromString(s string) error {
	addr, bits, err := parseRoute(s)
	if err != nil {
		return err
	}
	return rs.insert(addr, bits, rs.trieFor(addr).Len())
}

// InsertFromNetaddr takes an inet.af/netaddr.IPPrefix directly, for callers
// already on that legacy representation rather than net/netip.
func (rs *RouteSeq) InsertFromNetaddr(p netaddr.IPPrefix, i int) error {
	if !p.IsValid() {
		return errors.Errorf("%s is not a valid netaddr prefix", p)
	}
	addr := p.IP()
	full, err := netaddrBits(addr)
	if err != nil {
		return err
	}
	bits := full.Prefix(int(p.Bits()))
	return rs.insert(addr.Unmap(), bits, i)
}

func (rs *RouteSeq) insert(addr netaddr.IP, bits *bitstring.BitString, i int) error {
	return rs.trieFor(addr).Insert(bits, i)
}

func (rs *RouteSeq) trieFor(addr netaddr.IP) *wavelettrie.Node {
	if addr.Is4() {
		return rs.ipv4
	}
	return rs.ipv6
}

// Len4 and Len6 report how many routes are indexed in each address family.
func (rs *RouteSeq) Len4() int { return rs.ipv4.Len() }
func (rs *RouteSeq) Len6() int { return rs.ipv6.Len() }

// At4 and At6 return the route stored at index i within the given address
// family, formatted as a bare address (full-width prefix) or CIDR string.
func (rs *RouteSeq) At4(i int) (string, error) { return routeAt(rs.ipv4, i, 4) }
func (rs *RouteSeq) At6(i int) (string, error) { return routeAt(rs.ipv6, i, 16) }

func routeAt(n *wavelettrie.Node, i, width int) (string, error) {
	bits, err := n.Access(i)
	if err != nil {
		return "", err
	}
	return formatRoute(bits, width)
}

func formatRoute(bits *bitstring.BitString, width int) (string, error) {
	raw := bits.ToBytesPadded(width)
	var addr netip.Addr
	switch width {
	case 4:
		var a [4]byte
		copy(a[:], raw)
		addr = netip.AddrFrom4(a)
	case 16:
		var a [16]byte
		copy(a[:], raw)
		addr = netip.AddrFrom16(a)
	default:
		return "", errors.Errorf("routeseq: unsupported address width %d", width)
	}
	if bits.Len() == width*8 {
		return addr.String(), nil
	}
	return netip.PrefixFrom(addr, bits.Len()).String(), nil
}

func parseRoute(s string) (netaddr.IP, *bitstring.BitString, error) {
	if strings.Contains(s, "/") {
		prefix, err := netip.ParsePrefix(s)
		if err != nil {
			return netaddr.IP{}, nil, errors.Wrapf(err, "parse network %q", s)
		}
		if !prefix.IsValid() {
			return netaddr.IP{}, nil, errors.Errorf("%s is not valid CIDR", s)
		}
		full, err := bitsForAddr(prefix.Addr())
		if err != nil {
			return netaddr.IP{}, nil, err
		}
		addr, err := netaddr.ParseIP(prefix.Addr().String())
		if err != nil {
			return netaddr.IP{}, nil, errors.Wrapf(err, "re-parse %q as netaddr.IP", prefix.Addr())
		}
		return addr, full.Prefix(prefix.Bits()), nil
	}

	ip, err := netip.ParseAddr(s)
	if err != nil {
		return netaddr.IP{}, nil, errors.Wrapf(err, "parse IP %q", s)
	}
	if !ip.IsValid() {
		return netaddr.IP{}, nil, errors.Errorf("%s is not a valid IP", s)
	}
	full, err := bitsForAddr(ip)
	if err != nil {
		return netaddr.IP{}, nil, err
	}
	addr, err := netaddr.ParseIP(ip.String())
	if err != nil {
		return netaddr.IP{}, nil, errors.Wrapf(err, "re-parse %q as netaddr.IP", ip)
	}
	return addr, full, nil
}

func bitsForAddr(ip netip.Addr) (*bitstring.BitString, error) {
	raw, err := ip.MarshalBinary()
	if err != nil {
		return nil, errors.Wrapf(err, "express %s as bytes", ip)
	}
	return bitstring.NewFromBytes(raw), nil
}

func netaddrBits(ip netaddr.IP) (*bitstring.BitString, error) {
	if ip.Is4() {
		a := ip.As4()
		return bitstring.NewFromBytes(a[:]), nil
	}
	if ip.Is6() {
		a := ip.As16()
		return bitstring.NewFromBytes(a[:]), nil
	}
	return nil, errors.Errorf("netaddr IP %s is neither IPv4 nor IPv6", ip)
}
