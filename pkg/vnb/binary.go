package vnb

import (
	"encoding/binary"
	"fmt"
	"math"
)

// reader walks a fully materialized byte slice. All multi-byte values are
// little-endian. The format carries no self-terminating arrays: every array
// length is known before it is read, so each primitive checks an explicit
// byte need and reports ErrTruncated with the shortfall.
type reader struct {
	data []byte
	off  int
}

func (r *reader) need(n int) error {
	if r.off+n > len(r.data) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrTruncated, n, r.off, len(r.data)-r.off)
	}
	return nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *reader) f32() (float32, error) {
	v, err := r.u32()
	return math.Float32frombits(v), err
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[r.off:])
	r.off += n
	return out, nil
}

func (r *reader) skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

// str reads a uint16 length prefix and that many UTF-8 bytes.
func (r *reader) str() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.data[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

// f32s reads count floats with no per-element framing. A zero count yields
// nil so absent streams stay absent.
func (r *reader) f32s(count int) ([]float32, error) {
	if count == 0 {
		return nil, nil
	}
	if err := r.need(count * 4); err != nil {
		return nil, err
	}
	out := make([]float32, count)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(r.data[r.off+i*4:]))
	}
	r.off += count * 4
	return out, nil
}

func (r *reader) u16s(count int) ([]uint16, error) {
	if count == 0 {
		return nil, nil
	}
	if err := r.need(count * 2); err != nil {
		return nil, err
	}
	out := make([]uint16, count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(r.data[r.off+i*2:])
	}
	r.off += count * 2
	return out, nil
}

func (r *reader) u32s(count int) ([]uint32, error) {
	if count == 0 {
		return nil, nil
	}
	if err := r.need(count * 4); err != nil {
		return nil, err
	}
	out := make([]uint32, count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(r.data[r.off+i*4:])
	}
	r.off += count * 4
	return out, nil
}

// writer appends little-endian values to a growing buffer.
type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8)    { w.buf = append(w.buf, v) }
func (w *writer) u16(v uint16)  { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *writer) u32(v uint32)  { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *writer) i32(v int32)   { w.u32(uint32(v)) }
func (w *writer) f32(v float32) { w.u32(math.Float32bits(v)) }
func (w *writer) bytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// str writes a uint16 length prefix followed by the UTF-8 bytes.
func (w *writer) str(s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s))
	}
	w.u16(uint16(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

func (w *writer) f32s(v []float32) {
	for _, f := range v {
		w.f32(f)
	}
}

func (w *writer) u16s(v []uint16) {
	for _, u := range v {
		w.u16(u)
	}
}

func (w *writer) u32s(v []uint32) {
	for _, u := range v {
		w.u32(u)
	}
}
