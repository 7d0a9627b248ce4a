// Package wtsnap provides the optional persistence of spec.md §6: a
// streaming dump/load pair over a byte stream, round-tripping a wavelet
// trie structurally unchanged. It encodes with CBOR, the same codec
// nspcc-dev-neo-go and optakt-flow-dps use to persist their own trie
// structures.
package wtsnap

import (
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/wavetrie/wavetrie/pkg/bitstring"
	"github.com/wavetrie/wavetrie/pkg/wavelettrie"
)

// nodeDTO is the on-the-wire shape of a single wavelettrie.Node. Prefix and
// Positions are stored as packed bytes plus an explicit bit length, rather
// than as CBOR arrays of booleans, to keep the encoding compact.
type nodeDTO struct {
	PrefixBits []byte   `cbor:"1,keyasint"`
	PrefixLen  int      `cbor:"2,keyasint"`
	PosBits    []byte   `cbor:"3,keyasint"`
	PosLen     int      `cbor:"4,keyasint"`
	Left       *nodeDTO `cbor:"5,keyasint,omitempty"`
	Right      *nodeDTO `cbor:"6,keyasint,omitempty"`
}

func toDTO(n *wavelettrie.Node) *nodeDTO {
	if n == nil {
		return nil
	}
	dto := &nodeDTO{
		PrefixBits: n.Prefix().PackedBytes(),
		PrefixLen:  n.Prefix().Len(),
		PosBits:    n.Positions().PackedBytes(),
		PosLen:     n.Positions().Len(),
	}
	if !n.IsLeaf() {
		dto.Left = toDTO(n.Left())
		dto.Right = toDTO(n.Right())
	}
	return dto
}

func fromDTO(dto *nodeDTO) *wavelettrie.Node {
	if dto == nil {
		return nil
	}
	prefix := bitstring.NewFromPacked(dto.PrefixBits, dto.PrefixLen)
	positions := bitstring.NewFromPacked(dto.PosBits, dto.PosLen)
	return wavelettrie.FromParts(prefix, positions, fromDTO(dto.Left), fromDTO(dto.Right))
}

// Dump streams a CBOR encoding of root to w.
func Dump(w io.Writer, root *wavelettrie.Node) error {
	enc := cbor.NewEncoder(w)
	if err := enc.Encode(toDTO(root)); err != nil {
		return errors.Wrap(err, "wtsnap: encode trie")
	}
	return nil
}

// Load decodes a wavelet trie previously written by Dump, reconstructing it
// structurally unchanged.
func Load(r io.Reader) (*wavelettrie.Node, error) {
	var dto nodeDTO
	dec := cbor.NewDecoder(r)
	if err := dec.Decode(&dto); err != nil {
		return nil, errors.Wrap(err, "wtsnap: decode trie")
	}
	return fromDTO(&dto), nil
}
