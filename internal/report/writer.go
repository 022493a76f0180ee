package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/discochess/evalbar/internal/codec"
	"github.com/discochess/evalbar/internal/codec/gzipcodec"
	"github.com/discochess/evalbar/internal/codec/noopcodec"
	"github.com/discochess/evalbar/internal/codec/zstdcodec"
)

// ErrWriterClosed indicates Write was called after Close.
var ErrWriterClosed = errors.New("report: writer closed")

// DefaultCodecs returns the codecs Create and Open choose from by file extension.
func DefaultCodecs() []codec.Codec {
	return []codec.Codec{zstdcodec.New(0), gzipcodec.New(0)}
}

// Writer writes records as JSON lines through a codec.
type Writer struct {
	file   io.Closer
	zw     io.WriteCloser
	bw     *bufio.Writer
	enc    *json.Encoder
	count  int
	closed bool
}

// NewWriter writes records to w compressed with c. A nil c writes plain
// JSON lines. Closing the Writer does not close w.
func NewWriter(w io.Writer, c codec.Codec) (*Writer, error) {
	if c == nil {
		c = noopcodec.New()
	}
	zw, err := c.Writer(w)
	if err != nil {
		return nil, fmt.Errorf("creating %s writer: %w", c.Extension(), err)
	}
	bw := bufio.NewWriter(zw)
	return &Writer{zw: zw, bw: bw, enc: json.NewEncoder(bw)}, nil
}

// Create creates the file at path and writes records to it, compressed
// according to the path's extension.
func Create(path string, codecs ...codec.Codec) (*Writer, error) {
	if len(codecs) == 0 {
		codecs = DefaultCodecs()
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating report: %w", err)
	}
	w, err := NewWriter(f, codec.ForPath(path, codecs...))
	if err != nil {
		f.Close()
		return nil, err
	}
	w.file = f
	return w, nil
}

// Write appends one record.
func (w *Writer) Write(r Record) error {
	if w.closed {
		return ErrWriterClosed
	}
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	return w.count
}

// Close flushes buffered records and finishes the compressed stream.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.bw.Flush()
	if cerr := w.zw.Close(); err == nil {
		err = cerr
	}
	if w.file != nil {
		if cerr := w.file.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("closing report: %w", err)
	}
	return nil
}
