// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vol

import "testing"

func TestCRC16KnownValues(t *testing.T) {
	// Standard check values for the 0xA001 reflected polynomial with
	// zero initial value and no final xor.
	tests := []struct {
		input    string
		expected uint16
	}{
		{"", 0x0000},
		{"123456789", 0xBB3D},
		{"A", 0x30C0},
	}

	for _, test := range tests {
		if got := crc16([]byte(test.input)); got != test.expected {
			t.Errorf("crc16(%q) = 0x%04X, want 0x%04X", test.input, got, test.expected)
		}
	}
}

func TestCRC16TableInitialization(t *testing.T) {
	if len(crc16Table) != 256 {
		t.Fatalf("crc16Table length = %d, want 256", len(crc16Table))
	}

	// The table is deterministic, so re-derive it and compare.
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
		if crc16Table[i] != crc {
			t.Errorf("crc16Table[0x%02X] = 0x%04X, want 0x%04X", i, crc16Table[i], crc)
		}
	}
}

func TestCRC16UpdateMatchesBulk(t *testing.T) {
	data := make([]byte, 300)
	for i := range data {
		data[i] = byte(i * 7)
	}

	var crc uint16
	for _, b := range data {
		crc = crc16Update(crc, b)
	}
	if bulk := crc16(data); crc != bulk {
		t.Errorf("byte-at-a-time CRC 0x%04X != bulk CRC 0x%04X", crc, bulk)
	}
}
