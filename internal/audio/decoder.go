package audio

// Decoder turns an Opus packet into up to SamplesPerFrame samples of
// 16-bit mono PCM. Decode returns the number of samples actually decoded
// (short packets may decode to fewer than a full frame, which the reader
// zero-pads before marking a Frame ready). Reset is called whenever the
// stream's SSRC changes, so decoder state doesn't leak across talkers.
//
// This package has no pure-Go Opus implementation available to it, so it
// depends on this interface rather than a concrete codec; a cgo-backed
// implementation (e.g. wrapping libopus) is supplied by the caller that
// constructs a Stream.
type Decoder interface {
	Decode(packet []byte, out []int16) (n int, err error)
	Reset()
}

// SilentDecoder is a placeholder Decoder that produces silence for every
// packet. It keeps the audio pipeline runnable end to end before a real
// Opus binding is wired in as the Decoder passed to OpenStream.
type SilentDecoder struct{}

func (SilentDecoder) Decode(packet []byte, out []int16) (int, error) {
	return 0, nil
}

func (SilentDecoder) Reset() {}
