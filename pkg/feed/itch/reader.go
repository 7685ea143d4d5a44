package itch

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ErrShortMessage is returned when a frame is too small for its type
var ErrShortMessage = errors.New("itch: message shorter than its type requires")

// Payload sizes, type byte included
var msgLen = map[byte]int{
	'S': 12,
	'R': 39,
	'A': 36,
	'F': 40,
	'E': 31,
	'C': 36,
	'X': 23,
	'D': 19,
	'U': 35,
	'P': 44,
}

// Reader decodes a stream of length-prefixed ITCH 5.0 frames: a 2-byte
// big-endian payload length, then the payload. Unknown message types are
// skipped. Reader is not safe for concurrent use.
type Reader struct {
	r       *bufio.Reader
	buf     []byte
	tickers map[uint16]string

	count   uint64
	skipped uint64
}

func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:       bufio.NewReaderSize(r, 1<<16),
		buf:     make([]byte, 64),
		tickers: make(map[uint16]string),
	}
}

// Next returns the next known message. It returns io.EOF only at a clean
// frame boundary; a frame cut short yields io.ErrUnexpectedEOF.
func (r *Reader) Next() (Message, error) {
	for {
		var hdr [2]byte
		if _, err := io.ReadFull(r.r, hdr[:]); err != nil {
			if err == io.EOF {
				return Message{}, io.EOF
			}
			return Message{}, errors.Wrap(err, "itch: read frame length")
		}
		n := int(binary.BigEndian.Uint16(hdr[:]))
		if n == 0 {
			continue
		}
		if n > len(r.buf) {
			r.buf = make([]byte, n)
		}
		p := r.buf[:n]
		if _, err := io.ReadFull(r.r, p); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Message{}, errors.Wrapf(err, "itch: read %d byte frame", n)
		}
		r.count++

		want, known := msgLen[p[0]]
		if !known {
			r.skipped++
			continue
		}
		if n < want {
			return Message{}, errors.Wrapf(ErrShortMessage, "type %c: %d < %d bytes", p[0], n, want)
		}
		return r.decode(p), nil
	}
}

func (r *Reader) decode(p []byte) Message {
	kind, _ := normalise(p[0])
	m := Message{
		Kind:      kind,
		RawType:   p[0],
		Locate:    binary.BigEndian.Uint16(p[1:3]),
		Timestamp: uint48(p[5:11]),
	}

	switch p[0] {
	case 'S':
		m.EventCode = p[11]
	case 'R':
		m.Ticker = trimTicker(p[11:19])
		r.tickers[m.Locate] = m.Ticker
	case 'A', 'F':
		m.ID = binary.BigEndian.Uint64(p[11:19])
		m.Side = p[19]
		m.Shares = int64(binary.BigEndian.Uint32(p[20:24]))
		m.Ticker = trimTicker(p[24:32])
		m.Price = int64(binary.BigEndian.Uint32(p[32:36]))
		if p[0] == 'F' {
			m.MPID = string(p[36:40])
		}
	case 'E', 'C':
		m.ID = binary.BigEndian.Uint64(p[11:19])
		m.ExecSize = int64(binary.BigEndian.Uint32(p[19:23]))
		m.MatchNumber = binary.BigEndian.Uint64(p[23:31])
		if p[0] == 'C' {
			m.Price = int64(binary.BigEndian.Uint32(p[32:36]))
		}
	case 'X':
		m.ID = binary.BigEndian.Uint64(p[11:19])
		m.CancelSize = int64(binary.BigEndian.Uint32(p[19:23]))
	case 'D':
		m.ID = binary.BigEndian.Uint64(p[11:19])
	case 'U':
		m.OldID = binary.BigEndian.Uint64(p[11:19])
		m.ID = binary.BigEndian.Uint64(p[19:27])
		m.Shares = int64(binary.BigEndian.Uint32(p[27:31]))
		m.Price = int64(binary.BigEndian.Uint32(p[31:35]))
	case 'P':
		m.ID = binary.BigEndian.Uint64(p[11:19])
		m.Side = p[19]
		m.Shares = int64(binary.BigEndian.Uint32(p[20:24]))
		m.Ticker = trimTicker(p[24:32])
		m.Price = int64(binary.BigEndian.Uint32(p[32:36]))
		m.MatchNumber = binary.BigEndian.Uint64(p[36:44])
	}
	if m.Ticker == "" {
		m.Ticker = r.tickers[m.Locate]
	}
	return m
}

// Count returns the number of frames read, skipped ones included
func (r *Reader) Count() uint64 { return r.count }

// Skipped returns the number of frames of unhandled types
func (r *Reader) Skipped() uint64 { return r.skipped }

// Ticker resolves a stock locate code seen in a directory message
func (r *Reader) Ticker(locate uint16) (string, bool) {
	t, ok := r.tickers[locate]
	return t, ok
}

func uint48(b []byte) uint64 {
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}
