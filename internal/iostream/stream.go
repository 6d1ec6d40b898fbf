// Package iostream implements the byte/char stream object exposed to
// scripts for file and standard-handle I/O: seek/read/write/tell/size/
// close, with the external standard streams wrapped so Close is a no-op
// on them (§4.10).
package iostream

import (
	"io"
	"os"

	"golang.org/x/sys/unix"

	"vellum/internal/errors"
	"vellum/internal/memory"
	"vellum/internal/object"
)

// Stream wraps an *os.File (or any ReadWriteSeeker-ish handle) as a
// script-visible value. external marks stdin/stdout/stderr, whose Close
// must be a no-op so a script closing `__stdout__` doesn't tear down the
// process's actual handle.
type Stream struct {
	memory.Refcounted
	Name     string
	f        *os.File
	external bool
	closed   bool
}

var StreamType = object.NewType("stream", nil, nil)

func (s *Stream) header() *memory.Refcounted { return &s.Refcounted }
func (s *Stream) TypeOf() *object.Type        { return StreamType }

func Open(path string, flag int, perm os.FileMode) (*Stream, *errors.LangError) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, errors.Wrap(errors.KindIOError, err, "opening %q", path)
	}
	return &Stream{Refcounted: memory.NewRefcounted(64), Name: path, f: f}, nil
}

func Wrap(name string, f *os.File, external bool) *Stream {
	return &Stream{Refcounted: memory.NewRefcounted(64), Name: name, f: f, external: external}
}

var (
	Stdin  = Wrap("<stdin>", os.Stdin, true)
	Stdout = Wrap("<stdout>", os.Stdout, true)
	Stderr = Wrap("<stderr>", os.Stderr, true)
)

func (s *Stream) Read(n int) ([]byte, *errors.LangError) {
	buf := make([]byte, n)
	m, err := s.f.Read(buf)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.KindIOError, err, "reading %q", s.Name)
	}
	return buf[:m], nil
}

func (s *Stream) ReadAll() ([]byte, *errors.LangError) {
	data, err := io.ReadAll(s.f)
	if err != nil {
		return nil, errors.Wrap(errors.KindIOError, err, "reading %q", s.Name)
	}
	return data, nil
}

func (s *Stream) Write(data []byte) (int, *errors.LangError) {
	n, err := s.f.Write(data)
	if err != nil {
		return n, errors.Wrap(errors.KindIOError, err, "writing %q", s.Name)
	}
	return n, nil
}

// whence translates the script's 0/1/2 convention to the host syscall
// constants via golang.org/x/sys/unix, rather than hand-rolling the
// mapping (§4.11 ambient stack).
func whence(w int) int {
	switch w {
	case 1:
		return unix.SEEK_CUR
	case 2:
		return unix.SEEK_END
	default:
		return unix.SEEK_SET
	}
}

func (s *Stream) Seek(offset int64, w int) (int64, *errors.LangError) {
	pos, err := s.f.Seek(offset, whence(w))
	if err != nil {
		return 0, errors.Wrap(errors.KindIOError, err, "seeking %q", s.Name)
	}
	return pos, nil
}

func (s *Stream) Tell() (int64, *errors.LangError) {
	return s.Seek(0, 1)
}

func (s *Stream) Size() (int64, *errors.LangError) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, errors.Wrap(errors.KindIOError, err, "stat %q", s.Name)
	}
	return info.Size(), nil
}

func (s *Stream) Close() *errors.LangError {
	if s.external || s.closed {
		return nil
	}
	s.closed = true
	if err := s.f.Close(); err != nil {
		return errors.Wrap(errors.KindIOError, err, "closing %q", s.Name)
	}
	return nil
}
