package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// MaxFieldLength bounds every string length and sequence count in a cache file
	MaxFieldLength = 0xffff

	formatVersion uint32 = 1
)

var magic = [4]byte{'W', 'C', 'L', 'C'}

// encoder writes the cache wire format. The first error sticks and turns
// every later call into a no-op.
type encoder struct {
	w   io.Writer
	err error
	buf [4]byte
}

func (e *encoder) write(p []byte) {
	if e.err != nil {
		return
	}

	_, e.err = e.w.Write(p)
}

func (e *encoder) uint32(v uint32) {
	binary.LittleEndian.PutUint32(e.buf[:], v)
	e.write(e.buf[:])
}

func (e *encoder) bool(v bool) {
	b := byte(0)
	if v {
		b = 1
	}

	e.write([]byte{b})
}

func (e *encoder) string(s string) {
	e.uint32(uint32(len(s)))
	if e.err == nil {
		_, e.err = io.WriteString(e.w, s)
	}
}

func (e *encoder) strings(v []string) {
	e.uint32(uint32(len(v)))
	for _, s := range v {
		e.string(s)
	}
}

// encodeRecord serializes r. Field order is part of the format.
func encodeRecord(w io.Writer, r *Record) error {
	e := &encoder{w: w}
	e.write(magic[:])
	e.uint32(formatVersion)
	e.bool(r.Verbose)
	e.string(r.Target)
	e.string(r.Compiler)
	e.strings(r.Env)
	e.strings(r.Args)
	e.bool(r.IsCxx)
	e.bool(r.AppendExe)

	return e.err
}

// decoder is the reading counterpart of encoder
type decoder struct {
	r   io.Reader
	err error
	buf [4]byte
}

func (d *decoder) fail(format string, v ...any) {
	if d.err == nil {
		d.err = fmt.Errorf(format, v...)
	}
}

func (d *decoder) read(field string, p []byte) bool {
	if d.err != nil {
		return false
	}

	if _, err := io.ReadFull(d.r, p); err != nil {
		d.fail("truncated %s: %w", field, err)
		return false
	}

	return true
}

func (d *decoder) uint32(field string) uint32 {
	if !d.read(field, d.buf[:]) {
		return 0
	}

	return binary.LittleEndian.Uint32(d.buf[:])
}

func (d *decoder) bool(field string) bool {
	var b [1]byte
	if !d.read(field, b[:]) {
		return false
	}

	if b[0] > 1 {
		d.fail("invalid %s value %#x", field, b[0])
		return false
	}

	return b[0] == 1
}

// length reads a length prefix and rejects it before anything is allocated
func (d *decoder) length(field string) int {
	n := d.uint32(field)
	if d.err != nil {
		return 0
	}

	if n > MaxFieldLength {
		d.fail("%s length %d exceeds maximum of %d", field, n, MaxFieldLength)
		return 0
	}

	return int(n)
}

func (d *decoder) string(field string) string {
	n := d.length(field)
	if d.err != nil {
		return ""
	}

	p := make([]byte, n)
	if !d.read(field, p) {
		return ""
	}

	return string(p)
}

func (d *decoder) strings(field string) []string {
	n := d.length(field + " count")

	var v []string
	for i := 0; i < n && d.err == nil; i++ {
		s := d.string(field)
		if d.err == nil {
			v = append(v, s)
		}
	}

	return v
}

// decodeRecord reads one record and requires r to be exhausted afterwards
func decodeRecord(r io.Reader) (*Record, error) {
	d := &decoder{r: r}

	var m [4]byte
	if d.read("header", m[:]) && m != magic {
		d.fail("not a cache file (magic %q)", m[:])
	}

	if v := d.uint32("version"); d.err == nil && v != formatVersion {
		d.fail("unsupported format version %d", v)
	}

	rec := &Record{}
	rec.Verbose = d.bool("verbose")
	rec.Target = d.string("target")
	rec.Compiler = d.string("compiler")
	rec.Env = d.strings("env")
	rec.Args = d.strings("args")
	rec.IsCxx = d.bool("iscxx")
	rec.AppendExe = d.bool("appendexe")

	if d.err != nil {
		return nil, d.err
	}

	var extra [1]byte
	if n, _ := io.ReadFull(r, extra[:]); n > 0 {
		return nil, errors.New("trailing data after record")
	}

	return rec, nil
}
