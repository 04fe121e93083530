package runner

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/commitment"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
)

// codec.go holds the per-stage wire formats the runner uses to rebroadcast
// what it received in the prior stage - the "reveal" half of verify.Verify's
// reveal-then-verify pattern. Each is a flat length-prefixed encoding in the
// same style as wire.Envelope's own header-then-payload framing.

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, fmt.Errorf("truncated uint32")
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func putPartyIdx(buf *bytes.Buffer, p party.PartyIdx) { putUint32(buf, uint32(p)) }

func readPartyIdx(r *bytes.Reader) (party.PartyIdx, error) {
	v, err := readUint32(r)
	return party.PartyIdx(v), err
}

func putBytes32Prefixed(buf *bytes.Buffer, b []byte) {
	putUint32(buf, uint32(len(b)))
	buf.Write(b)
}

func readBytes32Prefixed(r *bytes.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if _, err := r.Read(out); err != nil {
		return nil, fmt.Errorf("truncated payload: want %d bytes", n)
	}
	return out, nil
}

func putBytes8Prefixed(buf *bytes.Buffer, b []byte) {
	buf.WriteByte(byte(len(b)))
	buf.Write(b)
}

func readBytes8Prefixed(r *bytes.Reader) ([]byte, error) {
	n, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("truncated length prefix")
	}
	out := make([]byte, n)
	if _, err := r.Read(out); err != nil {
		return nil, fmt.Errorf("truncated payload: want %d bytes", n)
	}
	return out, nil
}

// --- stage 2: HashComm1 claims ---

func encodeHashClaims(claims map[party.PartyIdx]commitment.HashDigest) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(claims)))
	for idx, h := range claims {
		putPartyIdx(&buf, idx)
		buf.Write(h[:])
	}
	return buf.Bytes()
}

func decodeHashClaims(b []byte) (map[party.PartyIdx]commitment.HashDigest, error) {
	r := bytes.NewReader(b)
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make(map[party.PartyIdx]commitment.HashDigest, n)
	for i := uint32(0); i < n; i++ {
		idx, err := readPartyIdx(r)
		if err != nil {
			return nil, err
		}
		var h commitment.HashDigest
		if _, err := r.Read(h[:]); err != nil {
			return nil, fmt.Errorf("truncated hash")
		}
		out[idx] = h
	}
	return out, nil
}

func hashEqual(a, b commitment.HashDigest) bool { return a == b }

// --- stage 4: CoeffComm3 raw-bytes claims ---

func encodeRawClaims(claims map[party.PartyIdx][]byte) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(claims)))
	for idx, raw := range claims {
		putPartyIdx(&buf, idx)
		putBytes32Prefixed(&buf, raw)
	}
	return buf.Bytes()
}

func decodeRawClaims(b []byte) (map[party.PartyIdx][]byte, error) {
	r := bytes.NewReader(b)
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make(map[party.PartyIdx][]byte, n)
	for i := uint32(0); i < n; i++ {
		idx, err := readPartyIdx(r)
		if err != nil {
			return nil, err
		}
		raw, err := readBytes32Prefixed(r)
		if err != nil {
			return nil, err
		}
		out[idx] = raw
	}
	return out, nil
}

func bytesEqual(a, b []byte) bool { return bytes.Equal(a, b) }

// --- stage 6/7: complaint sets ---

func sortedIdxs(idxs []party.PartyIdx) []party.PartyIdx {
	out := append([]party.PartyIdx(nil), idxs...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func encodeAccusedList(accused []party.PartyIdx) []byte {
	var buf bytes.Buffer
	sorted := sortedIdxs(accused)
	putUint32(&buf, uint32(len(sorted)))
	for _, idx := range sorted {
		putPartyIdx(&buf, idx)
	}
	return buf.Bytes()
}

func decodeAccusedList(b []byte) ([]party.PartyIdx, error) {
	r := bytes.NewReader(b)
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([]party.PartyIdx, n)
	for i := range out {
		idx, err := readPartyIdx(r)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

func encodeComplaintClaims(claims map[party.PartyIdx][]party.PartyIdx) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(claims)))
	for sender, accused := range claims {
		putPartyIdx(&buf, sender)
		sorted := sortedIdxs(accused)
		putUint32(&buf, uint32(len(sorted)))
		for _, idx := range sorted {
			putPartyIdx(&buf, idx)
		}
	}
	return buf.Bytes()
}

func decodeComplaintClaims(b []byte) (map[party.PartyIdx][]party.PartyIdx, error) {
	r := bytes.NewReader(b)
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make(map[party.PartyIdx][]party.PartyIdx, n)
	for i := uint32(0); i < n; i++ {
		sender, err := readPartyIdx(r)
		if err != nil {
			return nil, err
		}
		m, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		accused := make([]party.PartyIdx, m)
		for j := range accused {
			idx, err := readPartyIdx(r)
			if err != nil {
				return nil, err
			}
			accused[j] = idx
		}
		out[sender] = accused
	}
	return out, nil
}

func idxSliceEqual(a, b []party.PartyIdx) bool {
	sa, sb := sortedIdxs(a), sortedIdxs(b)
	if len(sa) != len(sb) {
		return false
	}
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// --- stage 8/9: blame response shares ---

func encodeShareMap(claims map[party.PartyIdx]scheme.Scalar) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(claims)))
	for idx, s := range claims {
		putPartyIdx(&buf, idx)
		putBytes8Prefixed(&buf, s.Bytes())
	}
	return buf.Bytes()
}

func decodeShareMap(s scheme.Scheme, b []byte) (map[party.PartyIdx]scheme.Scalar, error) {
	r := bytes.NewReader(b)
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make(map[party.PartyIdx]scheme.Scalar, n)
	for i := uint32(0); i < n; i++ {
		idx, err := readPartyIdx(r)
		if err != nil {
			return nil, err
		}
		raw, err := readBytes8Prefixed(r)
		if err != nil {
			return nil, err
		}
		sc, err := s.ScalarFromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("share for party %d: %w", idx, err)
		}
		out[idx] = sc
	}
	return out, nil
}

func encodeBlameClaims(claims map[party.PartyIdx]map[party.PartyIdx]scheme.Scalar) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(claims)))
	for accused, shares := range claims {
		putPartyIdx(&buf, accused)
		putBytes32Prefixed(&buf, encodeShareMap(shares))
	}
	return buf.Bytes()
}

func decodeBlameClaims(s scheme.Scheme, b []byte) (map[party.PartyIdx]map[party.PartyIdx]scheme.Scalar, error) {
	r := bytes.NewReader(b)
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make(map[party.PartyIdx]map[party.PartyIdx]scheme.Scalar, n)
	for i := uint32(0); i < n; i++ {
		accused, err := readPartyIdx(r)
		if err != nil {
			return nil, err
		}
		chunk, err := readBytes32Prefixed(r)
		if err != nil {
			return nil, err
		}
		shares, err := decodeShareMap(s, chunk)
		if err != nil {
			return nil, fmt.Errorf("accused party %d: %w", accused, err)
		}
		out[accused] = shares
	}
	return out, nil
}

func shareMapEqual(a, b map[party.PartyIdx]scheme.Scalar) bool {
	if len(a) != len(b) {
		return false
	}
	for idx, sa := range a {
		sb, ok := b[idx]
		if !ok || !sa.Equal(sb) {
			return false
		}
	}
	return true
}

// --- stage 0 (handover prefix): f_i(j)*G points ---

func encodePointMap(claims map[party.PartyIdx]scheme.Point) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(claims)))
	for idx, p := range claims {
		putPartyIdx(&buf, idx)
		putBytes8Prefixed(&buf, p.Bytes())
	}
	return buf.Bytes()
}

func decodePointMap(s scheme.Scheme, b []byte) (map[party.PartyIdx]scheme.Point, error) {
	r := bytes.NewReader(b)
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make(map[party.PartyIdx]scheme.Point, n)
	for i := uint32(0); i < n; i++ {
		idx, err := readPartyIdx(r)
		if err != nil {
			return nil, err
		}
		raw, err := readBytes8Prefixed(r)
		if err != nil {
			return nil, err
		}
		p, err := s.PointFromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("point for party %d: %w", idx, err)
		}
		out[idx] = p
	}
	return out, nil
}
