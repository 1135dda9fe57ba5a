package bytesutil

import "testing"

func TestRoundTrip(t *testing.T) {
	for _, v := range []uint16{0, 1, 255, 256, 65535} {
		b := PutUint16(nil, v)
		if len(b) != 2 {
			t.Fatalf("PutUint16(%d) produced %d bytes, want 2", v, len(b))
		}
		if got := Uint16(b); got != v {
			t.Errorf("Uint16(PutUint16(%d)) = %d", v, got)
		}
	}
}

func TestLittleEndianByteOrder(t *testing.T) {
	b := PutUint16(nil, 0x0102)
	if b[0] != 0x02 || b[1] != 0x01 {
		t.Fatalf("bytes = %v, want little-endian [0x02 0x01]", b)
	}
}
