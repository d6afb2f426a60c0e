// Package serial opens the character devices the motor modules are wired
// to and runs the newline-framed reader/writer workers for each one.
package serial

import (
	"bufio"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/term"

	"github.com/opsnlops/creature-controller-go/internal/mailbox"
	"github.com/opsnlops/creature-controller-go/internal/worker"
)

const baudRate = 115200

// Link owns one module's serial port and its reader/writer workers.
//
// Opening validates the device node exists and is a character device, and
// requires non-nil inbound/outbound mailboxes — any of those being wrong
// is a startup-time fatal error, matching the original source's
// exit-on-setup-failure behavior.
type Link struct {
	logger *log.Logger
	device string

	// fd is an io.ReadWriteCloser rather than the concrete *term.Term Open
	// returns, so tests can drive readLoop/writeLoop against a real pty.
	fd io.ReadWriteCloser

	inbound  *mailbox.Mailbox[string] // frames read from the device
	outbound *mailbox.Mailbox[string] // frames queued to write

	reader *worker.Worker
	writer *worker.Worker
}

// Open validates and opens devicePath in raw 8-N-1 mode at 115200 baud.
// It is fatal (process exit) if the device node is missing, is not a
// character device, or either mailbox is nil — mirroring the original
// controller's startup-time validation.
func Open(logger *log.Logger, devicePath string, inbound, outbound *mailbox.Mailbox[string]) *Link {
	if inbound == nil || outbound == nil {
		logger.Fatal("serial link requires non-nil inbound and outbound mailboxes", "device", devicePath)
	}

	if !isCharacterDevice(devicePath) {
		logger.Fatal("serial device node is missing or not a character device", "device", devicePath)
	}

	var fd, err = term.Open(devicePath, term.RawMode)
	if err != nil {
		logger.Fatal("unable to open serial device", "device", devicePath, "error", err)
	}

	if err := fd.SetSpeed(baudRate); err != nil {
		logger.Fatal("unable to set serial baud rate", "device", devicePath, "error", err)
	}

	return &Link{
		logger:   logger,
		device:   devicePath,
		fd:       fd,
		inbound:  inbound,
		outbound: outbound,
		reader:   worker.New("serial-reader:" + devicePath),
		writer:   worker.New("serial-writer:" + devicePath),
	}
}

func isCharacterDevice(path string) bool {
	var info, err = os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

// Start launches the reader and writer goroutines.
func (l *Link) Start() {
	l.reader.Start(l.readLoop)
	l.writer.Start(l.writeLoop)
}

// Shutdown stops both workers (bounded wait, then detach) and closes the
// underlying device.
func (l *Link) Shutdown(timeout time.Duration) {
	l.reader.Shutdown(timeout)
	l.writer.Shutdown(timeout)

	if l.fd != nil {
		_ = l.fd.Close()
	}
}

// readLoop frames on '\n', strips a trailing '\r', and drops empty lines
// — every non-empty frame is pushed to the inbound mailbox. The port is
// opened with VMIN=1/VTIME=0 raw mode, so ReadString blocks until a byte
// arrives or the device errors out; a device hangup, EOF, or any other
// read error is transport-fatal for this link and the loop exits, the
// same way SerialReader's poll loop breaks on POLLERR/POLLHUP or a
// zero-byte read, rather than spinning on a dead device forever.
func (l *Link) readLoop(stopRequested func() bool) {
	var r = bufio.NewReader(l.fd)

	for !stopRequested() {
		var line, err = r.ReadString('\n')

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		if line != "" {
			l.inbound.Push(line)
		}

		if err != nil {
			l.logger.Error("serial read failed, link is fatal", "device", l.device, "error", err)

			return
		}
	}
}

// writeLoop appends '\n' to every frame it dequeues and writes it to the
// device; a write failure is treated as a transport-fatal condition for
// this link and the loop exits. The link does not change the owning
// module handler's state; the handler stays in whatever state it was in.
func (l *Link) writeLoop(stopRequested func() bool) {
	for {
		var frame, ok = l.outbound.PopTimeout(100 * time.Millisecond)
		if !ok {
			if stopRequested() {
				return
			}

			continue
		}

		if _, err := l.fd.Write([]byte(frame + "\n")); err != nil {
			l.logger.Error("serial write failed, link is fatal", "device", l.device, "error", err)

			return
		}
	}
}
