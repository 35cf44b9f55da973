package stego

// Bit sequence helpers shared by every codec. Bits are represented as
// one byte per bit (0 or 1) so redundancy expansion and majority
// voting stay simple slices. The byte-to-bit convention is MSB-first
// within each byte; every codec uses this same convention.

// toBits expands data into a bit sequence, MSB-first per byte.
func toBits(data []byte) []byte {
	bits := make([]byte, 0, len(data)*8)
	for _, b := range data {
		for shift := 7; shift >= 0; shift-- {
			bits = append(bits, (b>>uint(shift))&1)
		}
	}
	return bits
}

// fromBits packs a bit sequence back into bytes. The length must be a
// multiple of 8.
func fromBits(bits []byte) ([]byte, error) {
	if len(bits)%8 != 0 {
		return nil, ErrTruncatedBits
	}
	data := make([]byte, len(bits)/8)
	for i := range data {
		var b byte
		for j := 0; j < 8; j++ {
			b = b<<1 | bits[i*8+j]&1
		}
		data[i] = b
	}
	return data, nil
}

// truncateToBytes drops trailing bits so the sequence length is a
// multiple of 8. Extraction uses this before fromBits since a carrier
// rarely holds an exact byte multiple of embeddable units.
func truncateToBytes(bits []byte) []byte {
	return bits[:len(bits)/8*8]
}

// replicate expands a logical bit sequence into a physical unit
// sequence: logical bit i occupies physical positions i*r .. i*r+r-1.
// Codecs with a different placement (the wavelet codec spreads slots
// across coefficient bands) apply the same i*r+offset rule within each
// band so the inverse mapping stays deterministic.
func replicate(bits []byte, r int) []byte {
	if r <= 1 {
		return bits
	}
	out := make([]byte, 0, len(bits)*r)
	for _, b := range bits {
		for i := 0; i < r; i++ {
			out = append(out, b)
		}
	}
	return out
}

// vote resolves one logical bit from its redundant physical values by
// majority. A tie resolves to 0. Every codec funnels redundancy
// recovery through this function so the tie rule is identical
// everywhere.
func vote(values []byte) byte {
	ones := 0
	for _, v := range values {
		if v&1 == 1 {
			ones++
		}
	}
	if ones*2 > len(values) {
		return 1
	}
	return 0
}

// collapse reverses replicate: each group of r physical values votes
// down to one logical bit. Trailing values short of a full group are
// discarded.
func collapse(raw []byte, r int) []byte {
	if r <= 1 {
		return raw
	}
	out := make([]byte, 0, len(raw)/r)
	for i := 0; i+r <= len(raw); i += r {
		out = append(out, vote(raw[i:i+r]))
	}
	return out
}
