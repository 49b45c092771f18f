package artifact

import (
	"encoding/binary"
	"io"
)

// writer implements visitor by encoding every field to w, little-endian,
// each slice length-prefixed by a uint32 count.
type writer struct {
	w io.Writer
	e error
}

func (w *writer) err() error { return w.e }

func (w *writer) int32s(s *[]int32) error {
	if w.e != nil {
		return w.e
	}
	w.e = writeCount(w.w, len(*s))
	if w.e != nil {
		return w.e
	}
	w.e = binary.Write(w.w, binary.LittleEndian, *s)
	return w.e
}

func (w *writer) uint64s(s *[]uint64) error {
	if w.e != nil {
		return w.e
	}
	w.e = writeCount(w.w, len(*s))
	if w.e != nil {
		return w.e
	}
	w.e = binary.Write(w.w, binary.LittleEndian, *s)
	return w.e
}

func (w *writer) ints(s *[]int) error {
	if w.e != nil {
		return w.e
	}
	n := len(*s)
	w.e = writeCount(w.w, n)
	if w.e != nil {
		return w.e
	}
	buf := make([]int64, n)
	for i, v := range *s {
		buf[i] = int64(v)
	}
	w.e = binary.Write(w.w, binary.LittleEndian, buf)
	return w.e
}

func (w *writer) strings(s *[]string) error {
	if w.e != nil {
		return w.e
	}
	w.e = writeCount(w.w, len(*s))
	if w.e != nil {
		return w.e
	}
	for _, str := range *s {
		if w.e = writeCount(w.w, len(str)); w.e != nil {
			return w.e
		}
		if _, err := io.WriteString(w.w, str); err != nil {
			w.e = err
			return w.e
		}
	}
	return nil
}

func (w *writer) uintVal(v *uint) error {
	if w.e != nil {
		return w.e
	}
	w.e = binary.Write(w.w, binary.LittleEndian, uint64(*v))
	return w.e
}

func (w *writer) intVal(v *int) error {
	if w.e != nil {
		return w.e
	}
	w.e = binary.Write(w.w, binary.LittleEndian, int64(*v))
	return w.e
}

// reader implements visitor by decoding every field from r, the mirror
// image of writer.
type reader struct {
	r io.Reader
	e error
}

func (r *reader) err() error { return r.e }

func (r *reader) int32s(s *[]int32) error {
	if r.e != nil {
		return r.e
	}
	n, err := readCount(r.r)
	if err != nil {
		r.e = err
		return r.e
	}
	out := make([]int32, n)
	r.e = binary.Read(r.r, binary.LittleEndian, out)
	if r.e == nil {
		*s = out
	}
	return r.e
}

func (r *reader) uint64s(s *[]uint64) error {
	if r.e != nil {
		return r.e
	}
	n, err := readCount(r.r)
	if err != nil {
		r.e = err
		return r.e
	}
	out := make([]uint64, n)
	r.e = binary.Read(r.r, binary.LittleEndian, out)
	if r.e == nil {
		*s = out
	}
	return r.e
}

func (r *reader) ints(s *[]int) error {
	if r.e != nil {
		return r.e
	}
	n, err := readCount(r.r)
	if err != nil {
		r.e = err
		return r.e
	}
	buf := make([]int64, n)
	if r.e = binary.Read(r.r, binary.LittleEndian, buf); r.e != nil {
		return r.e
	}
	out := make([]int, n)
	for i, v := range buf {
		out[i] = int(v)
	}
	*s = out
	return nil
}

func (r *reader) strings(s *[]string) error {
	if r.e != nil {
		return r.e
	}
	n, err := readCount(r.r)
	if err != nil {
		r.e = err
		return r.e
	}
	out := make([]string, n)
	for i := range out {
		strLen, err := readCount(r.r)
		if err != nil {
			r.e = err
			return r.e
		}
		buf := make([]byte, strLen)
		if _, err := io.ReadFull(r.r, buf); err != nil {
			r.e = err
			return r.e
		}
		out[i] = string(buf)
	}
	*s = out
	return nil
}

func (r *reader) uintVal(v *uint) error {
	if r.e != nil {
		return r.e
	}
	var raw uint64
	if r.e = binary.Read(r.r, binary.LittleEndian, &raw); r.e != nil {
		return r.e
	}
	*v = uint(raw)
	return nil
}

func (r *reader) intVal(v *int) error {
	if r.e != nil {
		return r.e
	}
	var raw int64
	if r.e = binary.Read(r.r, binary.LittleEndian, &raw); r.e != nil {
		return r.e
	}
	*v = int(raw)
	return nil
}

func writeCount(w io.Writer, n int) error {
	return binary.Write(w, binary.LittleEndian, uint32(n))
}

func readCount(r io.Reader) (int, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, err
	}
	return int(n), nil
}
