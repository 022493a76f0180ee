package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/discochess/evalbar/internal/codec"
	"github.com/discochess/evalbar/internal/codec/noopcodec"
)

// Read decodes every record from r, decompressing with c. A nil c reads
// plain JSON lines.
func Read(r io.Reader, c codec.Codec) ([]Record, error) {
	if c == nil {
		c = noopcodec.New()
	}
	zr, err := c.Reader(r)
	if err != nil {
		return nil, fmt.Errorf("creating %s reader: %w", c.Extension(), err)
	}
	defer zr.Close()

	var records []Record
	dec := json.NewDecoder(zr)
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("decoding record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
}

// ReadFile reads the report at path, choosing the codec by extension.
func ReadFile(path string, codecs ...codec.Codec) ([]Record, error) {
	if len(codecs) == 0 {
		codecs = DefaultCodecs()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()
	return Read(f, codec.ForPath(path, codecs...))
}
