package crsf

// crcTable builds a 256-entry lookup table for a non-reflected CRC-8
// with zero init and no output xor.
func crcTable(poly byte) [256]byte {
	var tab [256]byte
	for i := range tab {
		c := byte(i)
		for b := 0; b < 8; b++ {
			if c&0x80 != 0 {
				c = c<<1 ^ poly
			} else {
				c <<= 1
			}
		}
		tab[i] = c
	}
	return tab
}

// Frame integrity uses CRC-8/DVB-S2 (poly 0xD5). Direct-command
// payloads carry a second checksum with poly 0xBA layered inside the
// frame CRC.
var (
	frameCRCTab   = crcTable(0xD5)
	commandCRCTab = crcTable(0xBA)
)

// Checksum returns the CRC-8/DVB-S2 digest over p. Frames carry this
// digest computed over [type, payload].
func Checksum(p []byte) byte {
	var c byte
	for _, b := range p {
		c = frameCRCTab[c^b]
	}
	return c
}

// CommandChecksum returns the inner digest a direct-command payload
// carries over [type, dst, src, command id, command payload].
func CommandChecksum(p []byte) byte {
	var c byte
	for _, b := range p {
		c = commandCRCTab[c^b]
	}
	return c
}
