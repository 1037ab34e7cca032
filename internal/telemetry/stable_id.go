package telemetry

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"math"
)

// StableID computes property_id: a deterministic hash of the property's
// structure (pre-order serialization of variants and constants), so that
// restarts yield the same ids. Builds a canonical byte form, then
// SHA-256 + hex.
func StableID(p Property) string {
	h := sha256.New()
	serializeProperty(h, p)
	return hex.EncodeToString(h.Sum(nil))
}

func serializeProperty(buf io.Writer, p Property) {
	buf.Write([]byte{byte(p.Kind)})
	switch p.Kind {
	case KindLe, KindRateBound:
		buf.Write([]byte{byte(p.Var)})
		var bits [8]byte
		binary.LittleEndian.PutUint64(bits[:], math.Float64bits(p.Bound))
		buf.Write(bits[:])
	case KindAnd, KindOr:
		serializeProperty(buf, *p.Left)
		serializeProperty(buf, *p.Right)
	case KindTemporal:
		serializeProperty(buf, *p.Left)
	}
}
