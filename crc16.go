// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vol

// crc16Table is the 256-entry lookup table used for every checksum in the
// VOL format. It is generated from the reflected polynomial 0xA001; the
// resulting table is part of the on-disk contract and must not change.
var crc16Table = func() [256]uint16 {
	var table [256]uint16
	const poly = 0xA001
	for i := 0; i < 256; i++ {
		crc := uint16(i)
		for j := 0; j < 8; j++ {
			if crc&1 == 1 {
				crc = (crc >> 1) ^ poly
			} else {
				crc >>= 1
			}
		}
		table[i] = crc
	}
	return table
}()

// crc16Update folds one byte into a running CRC. New streams start at zero.
func crc16Update(crc uint16, b byte) uint16 {
	return crc16Table[(crc^uint16(b))&0xFF] ^ (crc >> 8)
}

// crc16 computes the checksum of data as a single stream.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, v := range data {
		crc = crc16Update(crc, v)
	}
	return crc
}
