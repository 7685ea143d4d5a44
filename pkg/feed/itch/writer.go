package itch

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Writer encodes messages in the framing Reader consumes. Call Flush when
// done.
type Writer struct {
	w   *bufio.Writer
	buf [2 + 64]byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// rawType picks the wire type for a message built by hand
func rawType(m Message) (byte, error) {
	if m.RawType != 0 {
		return m.RawType, nil
	}
	switch m.Kind {
	case KindSystem:
		return 'S', nil
	case KindDirectory:
		return 'R', nil
	case KindAdd:
		if m.MPID != "" {
			return 'F', nil
		}
		return 'A', nil
	case KindDelete:
		if m.CancelSize > 0 {
			return 'X', nil
		}
		return 'D', nil
	case KindReplace:
		return 'U', nil
	case KindExecute:
		return 'E', nil
	case KindExecPrice:
		return 'C', nil
	case KindTrade:
		return 'P', nil
	}
	return 0, errors.Errorf("itch: cannot encode kind %q", byte(m.Kind))
}

func putTicker(dst []byte, ticker string) {
	copy(dst[:8], "        ")
	copy(dst[:8], ticker)
}

// Write encodes one message
func (w *Writer) Write(m Message) error {
	typ, err := rawType(m)
	if err != nil {
		return err
	}
	n, ok := msgLen[typ]
	if !ok {
		return errors.Errorf("itch: unknown message type %q", typ)
	}

	frame := w.buf[:2+n]
	clear(frame)
	binary.BigEndian.PutUint16(frame[:2], uint16(n))
	p := frame[2:]

	p[0] = typ
	binary.BigEndian.PutUint16(p[1:3], m.Locate)
	ts := m.Timestamp
	for i := 10; i >= 5; i-- {
		p[i] = byte(ts)
		ts >>= 8
	}

	switch typ {
	case 'S':
		p[11] = m.EventCode
	case 'R':
		putTicker(p[11:19], m.Ticker)
		p[19] = 'Q'
		p[20] = 'N'
		binary.BigEndian.PutUint32(p[21:25], 100)
	case 'A', 'F':
		binary.BigEndian.PutUint64(p[11:19], m.ID)
		p[19] = m.Side
		binary.BigEndian.PutUint32(p[20:24], uint32(m.Shares))
		putTicker(p[24:32], m.Ticker)
		binary.BigEndian.PutUint32(p[32:36], uint32(m.Price))
		if typ == 'F' {
			copy(p[36:40], m.MPID)
		}
	case 'E', 'C':
		binary.BigEndian.PutUint64(p[11:19], m.ID)
		binary.BigEndian.PutUint32(p[19:23], uint32(m.ExecSize))
		binary.BigEndian.PutUint64(p[23:31], m.MatchNumber)
		if typ == 'C' {
			p[31] = 'Y'
			binary.BigEndian.PutUint32(p[32:36], uint32(m.Price))
		}
	case 'X':
		binary.BigEndian.PutUint64(p[11:19], m.ID)
		binary.BigEndian.PutUint32(p[19:23], uint32(m.CancelSize))
	case 'D':
		binary.BigEndian.PutUint64(p[11:19], m.ID)
	case 'U':
		binary.BigEndian.PutUint64(p[11:19], m.OldID)
		binary.BigEndian.PutUint64(p[19:27], m.ID)
		binary.BigEndian.PutUint32(p[27:31], uint32(m.Shares))
		binary.BigEndian.PutUint32(p[31:35], uint32(m.Price))
	case 'P':
		binary.BigEndian.PutUint64(p[11:19], m.ID)
		p[19] = m.Side
		binary.BigEndian.PutUint32(p[20:24], uint32(m.Shares))
		putTicker(p[24:32], m.Ticker)
		binary.BigEndian.PutUint32(p[32:36], uint32(m.Price))
		binary.BigEndian.PutUint64(p[36:44], m.MatchNumber)
	}

	if _, err := w.w.Write(frame); err != nil {
		return errors.Wrap(err, "itch: write frame")
	}
	return nil
}

func (w *Writer) Flush() error {
	return errors.Wrap(w.w.Flush(), "itch: flush")
}
