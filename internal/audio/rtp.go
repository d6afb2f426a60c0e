package audio

import "encoding/binary"

// minRTPHeaderLen is the minimum valid RTP packet size: a 12-byte fixed
// header with no CSRC list.
const minRTPHeaderLen = 12

// isValidRTPPacket reports whether packet carries at least one byte of
// payload past the fixed header and RTP version 2. A packet of exactly
// minRTPHeaderLen bytes is header-only, with an empty payload, and is
// rejected.
func isValidRTPPacket(packet []byte) bool {
	if len(packet) <= minRTPHeaderLen {
		return false
	}

	return (packet[0]>>6)&0x3 == 2
}

// extractSSRC reads the big-endian synchronization source identifier out
// of bytes 8-11 of an RTP packet already validated by isValidRTPPacket.
func extractSSRC(packet []byte) uint32 {
	return binary.BigEndian.Uint32(packet[8:12])
}

// rtpPayload returns the bytes after the fixed 12-byte header (this
// receiver does not use CSRC lists or header extensions).
func rtpPayload(packet []byte) []byte {
	return packet[minRTPHeaderLen:]
}
