package crsf

import "testing"

func TestChecksum(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want byte
	}{
		{"empty", nil, 0x00},
		{"check string", []byte("123456789"), 0xBC},
		{"zero link stats", []byte{0x14, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, 0x3A},
		{"vario", []byte{0x07, 0xFF, 0x06}, 0xDA},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Checksum(tc.data); got != tc.want {
				t.Errorf("Checksum = %#02x, want %#02x", got, tc.want)
			}
		})
	}
}

func TestCommandChecksum(t *testing.T) {
	// Same message, different polynomial: the two digests must differ.
	msg := []byte("123456789")
	if got := CommandChecksum(msg); got != 0x20 {
		t.Errorf("CommandChecksum = %#02x, want 0x20", got)
	}
	if CommandChecksum(msg) == Checksum(msg) {
		t.Error("command and frame digests coincide")
	}
}

func TestChecksum_SingleBitSensitivity(t *testing.T) {
	base := []byte{0x16, 0xE0, 0x03, 0x1F, 0x58, 0xC0, 0x07, 0x3E}
	want := Checksum(base)
	for i := range base {
		for bit := 0; bit < 8; bit++ {
			flipped := append([]byte(nil), base...)
			flipped[i] ^= 1 << bit
			if Checksum(flipped) == want {
				t.Errorf("flipping byte %d bit %d left the digest unchanged", i, bit)
			}
		}
	}
}

func BenchmarkChecksum(b *testing.B) {
	data := make([]byte, MaxFrameLen-2)
	for i := range data {
		data[i] = byte(i * 7)
	}
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		Checksum(data)
	}
}
