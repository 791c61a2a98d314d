// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vol

// chunkSummer accumulates CRC16 values over fixed-size windows of a byte
// stream. Each time window bytes have been consumed, the current CRC is
// emitted and the state starts over from zero; a trailing window that never
// fills is not emitted. Data past the last full window is checksum-less in
// the VOL format.
//
// A window of zero selects whole-stream mode: the CRC is never reset and
// sum() returns the single value for everything consumed so far. The
// whole-archive header checksum is computed this way.
type chunkSummer struct {
	window uint32
	crc    uint16
	count  uint32
	chunks []uint16
}

func newChunkSummer(window uint32) *chunkSummer {
	return &chunkSummer{window: window}
}

// apply consumes data, emitting one chunk value per completed window.
func (s *chunkSummer) apply(data []byte) {
	for _, b := range data {
		s.crc = crc16Update(s.crc, b)
		if s.window == 0 {
			continue
		}
		s.count++
		if s.count == s.window {
			s.chunks = append(s.chunks, s.crc)
			s.crc = 0
			s.count = 0
		}
	}
}

// finish returns the chunks emitted so far and resets the running window,
// discarding any partial window.
func (s *chunkSummer) finish() []uint16 {
	s.crc = 0
	s.count = 0
	return s.chunks
}

// sum returns the running whole-stream CRC. Only meaningful in
// whole-stream mode.
func (s *chunkSummer) sum() uint16 {
	return s.crc
}
