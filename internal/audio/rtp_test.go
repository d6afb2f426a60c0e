package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func makeRTPHeader(version byte, ssrc uint32) []byte {
	var h = make([]byte, 12)
	h[0] = version << 6
	h[8] = byte(ssrc >> 24)
	h[9] = byte(ssrc >> 16)
	h[10] = byte(ssrc >> 8)
	h[11] = byte(ssrc)

	return h
}

func TestRTPValidation12BytesHeaderOnlyIsInvalid(t *testing.T) {
	var packet = makeRTPHeader(2, 0xdeadbeef)
	assert.False(t, isValidRTPPacket(packet))
}

func TestRTPValidation13BytesVersion2IsValid(t *testing.T) {
	var packet = append(makeRTPHeader(2, 0xdeadbeef), 0x01)
	assert.True(t, isValidRTPPacket(packet))
}

func TestRTPValidation11BytesIsInvalid(t *testing.T) {
	var packet = makeRTPHeader(2, 1)[:11]
	assert.False(t, isValidRTPPacket(packet))
}

func TestRTPValidationWrongVersionIsInvalid(t *testing.T) {
	var packet = append(makeRTPHeader(1, 1), 0x01)
	assert.False(t, isValidRTPPacket(packet))
}

func TestExtractSSRCRoundTrips(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var ssrc = uint32(rapid.Uint32().Draw(t, "ssrc"))
		var packet = makeRTPHeader(2, ssrc)

		assert.Equal(t, ssrc, extractSSRC(packet))
	})
}

func TestRTPBoundary12Vs13Bytes(t *testing.T) {
	var twelve = makeRTPHeader(2, 1)
	assert.False(t, isValidRTPPacket(twelve), "exactly 12 bytes is header-only and must be rejected")

	var eleven = twelve[:11]
	assert.False(t, isValidRTPPacket(eleven))

	var thirteen = append(append([]byte{}, twelve...), 0xAB)
	assert.True(t, isValidRTPPacket(thirteen), "13 bytes carries one byte of payload and must be accepted")
}
