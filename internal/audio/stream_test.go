package audio

import (
	"os"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

type countingDecoder struct {
	resets int
}

func (d *countingDecoder) Decode(packet []byte, out []int16) (int, error) {
	for i := range out {
		out[i] = 0
	}

	return len(out), nil
}

func (d *countingDecoder) Reset() { d.resets++ }

func testStreamLogger() *log.Logger {
	var l = log.New(os.Stderr)
	l.SetLevel(log.FatalLevel + 1)

	return l
}

func newTestStream(isDialog bool) (*Stream, *countingDecoder) {
	var decoder = &countingDecoder{}
	var s = &Stream{
		logger:   testStreamLogger(),
		name:     "test",
		decoder:  decoder,
		ring:     NewRing(),
		isDialog: isDialog,
	}

	return s, decoder
}

func TestFirstPacketInitializesWithoutResetOrClear(t *testing.T) {
	var s, decoder = newTestStream(true)
	s.ring.Push(Frame{Ready: true})

	s.checkAndHandleSSRCChange(0x1111)

	assert.True(t, s.haveSSRC)
	assert.Equal(t, uint32(0x1111), s.currentSSRC)
	assert.Equal(t, 0, decoder.resets, "the first packet must not reset the decoder")
	assert.Equal(t, 1.0/float64(ringSlots), s.ring.FillLevel(), "the first packet must not clear the ring")
}

func TestSameSSRCDoesNotResetOrClear(t *testing.T) {
	var s, decoder = newTestStream(true)
	s.checkAndHandleSSRCChange(0x1111)
	s.ring.Push(Frame{Ready: true})

	s.checkAndHandleSSRCChange(0x1111)

	assert.Equal(t, 0, decoder.resets)
	assert.Greater(t, s.ring.FillLevel(), 0.0)
}

func TestSSRCChangeResetsDecoderAlways(t *testing.T) {
	for _, isDialog := range []bool{true, false} {
		var s, decoder = newTestStream(isDialog)
		s.checkAndHandleSSRCChange(0x1111)

		s.checkAndHandleSSRCChange(0x2222)

		assert.Equal(t, 1, decoder.resets, "dialog=%v", isDialog)
	}
}

func TestSSRCChangeClearsRingOnlyForDialog(t *testing.T) {
	var dialog, _ = newTestStream(true)
	dialog.checkAndHandleSSRCChange(0x1111)
	dialog.ring.Push(Frame{Ready: true})
	dialog.checkAndHandleSSRCChange(0x2222)
	assert.Equal(t, 0.0, dialog.ring.FillLevel(), "dialog ring must clear on SSRC change")

	var bgm, _ = newTestStream(false)
	bgm.checkAndHandleSSRCChange(0x1111)
	bgm.ring.Push(Frame{Ready: true})
	bgm.checkAndHandleSSRCChange(0x2222)
	assert.Greater(t, bgm.ring.FillLevel(), 0.0, "bgm ring must not clear on SSRC change")
}

func TestHandlePacketPadsShortDecode(t *testing.T) {
	var s = &Stream{logger: testStreamLogger(), decoder: shortDecoder{}, ring: NewRing()}

	var packet = makeRTPHeader(2, 1)
	packet = append(packet, 0x01, 0x02)
	s.handlePacket(packet)

	var frame, ok = s.ring.PopReady()
	if !ok {
		t.Fatal("expected a frame to be pushed")
	}

	assert.Equal(t, int16(0), frame.Samples[SamplesPerFrame-1], "tail must be zero-padded")
}

type shortDecoder struct{}

func (shortDecoder) Decode(packet []byte, out []int16) (int, error) {
	out[0] = 123

	return 1, nil
}

func (shortDecoder) Reset() {}
