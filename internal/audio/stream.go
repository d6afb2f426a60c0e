package audio

import (
	"net"
	"time"

	"github.com/charmbracelet/log"

	"github.com/opsnlops/creature-controller-go/internal/worker"
)

// recvTimeout is how long each read blocks before the reader loop checks
// for a stop request, mirroring the original's 5ms select() timeout.
const recvTimeout = 5 * time.Millisecond

// maxPacketSize is large enough for any Opus-over-RTP packet this
// receiver expects.
const maxPacketSize = 1500

// Stream is one multicast RTP receiver (dialog or BGM), decoding into its
// own ring buffer for the mixer to drain.
type Stream struct {
	logger  *log.Logger
	name    string
	conn    *net.UDPConn
	decoder Decoder
	ring    *Ring
	isDialog bool

	haveSSRC    bool
	currentSSRC uint32
	resets      int

	worker *worker.Worker
}

// OpenStream joins the multicast group at addr:RTPPort on the interface
// with address ifaceIP and returns a Stream ready to Start.
func OpenStream(logger *log.Logger, name, group, ifaceIP string, decoder Decoder, isDialog bool) (*Stream, error) {
	var conn, err = openMulticastSocket(group, RTPPort, ifaceIP)
	if err != nil {
		return nil, err
	}

	return &Stream{
		logger:   logger,
		name:     name,
		conn:     conn,
		decoder:  decoder,
		ring:     NewRing(),
		isDialog: isDialog,
		worker:   worker.New("audio-reader:" + name),
	}, nil
}

// Ring exposes the stream's ring buffer for the mixer to drain.
func (s *Stream) Ring() *Ring { return s.ring }

// Start launches the reader goroutine.
func (s *Stream) Start() {
	s.worker.Start(s.run)
}

// Shutdown stops the reader goroutine and closes the socket.
func (s *Stream) Shutdown(timeout time.Duration) {
	s.worker.Shutdown(timeout)

	if s.conn != nil {
		_ = s.conn.Close()
	}
}

func (s *Stream) run(stopRequested func() bool) {
	var buf = make([]byte, maxPacketSize)

	for !stopRequested() {
		_ = s.conn.SetReadDeadline(time.Now().Add(recvTimeout))

		var n, _, err = s.conn.ReadFromUDP(buf)
		if err != nil {
			continue // timeout or transient error; keep polling
		}

		s.handlePacket(buf[:n])
	}
}

// handlePacket validates, tracks SSRC changes, decodes, and pushes the
// resulting Frame to the ring. Invalid packets are dropped silently —
// there is no per-packet error reporting path in the wire protocol.
func (s *Stream) handlePacket(packet []byte) {
	if !isValidRTPPacket(packet) {
		return
	}

	var ssrc = extractSSRC(packet)
	s.checkAndHandleSSRCChange(ssrc)

	var frame Frame

	var n, err = s.decoder.Decode(rtpPayload(packet), frame.Samples[:])
	switch {
	case err == nil && n == SamplesPerFrame:
		// full decode
	case err == nil && n > 0 && n < SamplesPerFrame:
		for i := n; i < SamplesPerFrame; i++ {
			frame.Samples[i] = 0
		}
	default:
		for i := range frame.Samples {
			frame.Samples[i] = 0
		}
	}

	frame.Ready = true
	s.ring.Push(frame)
}

// checkAndHandleSSRCChange initializes tracking on the very first packet
// of a stream (no decoder reset, no queue clear) and, on every later
// SSRC change, resets the decoder always and clears the ring only for
// the dialog stream — BGM's ring is left alone across SSRC changes since
// a new BGM talker picking up mid-buffer is harmless.
func (s *Stream) checkAndHandleSSRCChange(ssrc uint32) {
	if !s.haveSSRC {
		s.haveSSRC = true
		s.currentSSRC = ssrc

		return
	}

	if ssrc == s.currentSSRC {
		return
	}

	s.currentSSRC = ssrc
	s.decoder.Reset()
	s.resets++

	if s.isDialog {
		s.ring.Clear()
	}

	s.logger.Info("audio stream SSRC changed", "stream", s.name, "ssrc", ssrc, "resets", s.resets)
}

func openMulticastSocket(group string, port int, ifaceIP string) (*net.UDPConn, error) {
	var addr = &net.UDPAddr{IP: net.ParseIP(group), Port: port}

	var iface *net.Interface

	if ifaceIP != "" {
		if resolved, err := interfaceForIP(ifaceIP); err == nil {
			iface = resolved
		}
	}

	return net.ListenMulticastUDP("udp4", iface, addr)
}

func interfaceForIP(ip string) (*net.Interface, error) {
	var ifaces, err = net.Interfaces()
	if err != nil {
		return nil, err
	}

	for i := range ifaces {
		var addrs, addrErr = ifaces[i].Addrs()
		if addrErr != nil {
			continue
		}

		for _, a := range addrs {
			var ipNet, ok = a.(*net.IPNet)
			if ok && ipNet.IP.String() == ip {
				return &ifaces[i], nil
			}
		}
	}

	return nil, net.InvalidAddrError("no interface with address " + ip)
}
