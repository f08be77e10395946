package circuit

import (
	"bytes"
	"encoding/binary"
)

// Fingerprint is the canonical byte-serialization of a circuit: two
// circuits have equal fingerprints iff they are structurally identical
// (spec.md §3). The format is a hand-rolled fixed-width encoding rather
// than a general-purpose codec: the spec mandates an exact byte layout
// (kind tag, target, sorted controls) that a schema-driven serializer would
// only obscure. Controls are required to already be in canonical (sorted)
// order; Gate/Circuit construction guarantees this.
//
// Layout: [w:uint16][n:uint32] then, per gate in order:
// [kind:uint8][target:uint8][numControls:uint8][control...:uint8].
func (c *Circuit) Fingerprint() []byte {
	var buf bytes.Buffer
	var hdr [6]byte
	binary.BigEndian.PutUint16(hdr[0:2], uint16(c.W))
	binary.BigEndian.PutUint32(hdr[2:6], uint32(len(c.Gates)))
	buf.Write(hdr[:])
	for _, g := range c.Gates {
		buf.WriteByte(byte(g.Kind))
		buf.WriteByte(byte(g.Target))
		buf.WriteByte(byte(len(g.Controls)))
		for _, ctl := range g.Controls {
			buf.WriteByte(byte(ctl))
		}
	}
	return buf.Bytes()
}
