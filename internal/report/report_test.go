package report

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/discochess/evalbar"
	"github.com/discochess/evalbar/internal/codec/zstdcodec"
)

func TestNewRecord(t *testing.T) {
	r := evalbar.Result{
		Score:     evalbar.MateIn(evalbar.Negative, 3),
		Depth:     22,
		Status:    evalbar.StatusDone,
		FEN:       "6k1/5ppp/8/8/8/8/5PPP/3r2K1 w - - 0 1",
		LastError: errors.New("engine pipe closed"),
	}
	rec := NewRecord(2, 41, "d8d1", r, 150*time.Millisecond)

	if rec.Game != 2 || rec.Ply != 41 || rec.Move != "d8d1" || rec.FEN != r.FEN {
		t.Errorf("identity fields = %+v", rec)
	}
	if !rec.IsMate || rec.Mate != -3 || rec.Score != "-M3" {
		t.Errorf("mate fields = %v %d %q, want true -3 -M3", rec.IsMate, rec.Mate, rec.Score)
	}
	if rec.Pawns != -evalbar.MaxPawns {
		t.Errorf("Pawns = %v, want %v", rec.Pawns, -evalbar.MaxPawns)
	}
	if rec.Status != "done" || rec.Error != "engine pipe closed" || rec.Took != 150*time.Millisecond {
		t.Errorf("status fields = %q %q %v", rec.Status, rec.Error, rec.Took)
	}
	if !rec.Evaluated() {
		t.Error("record with depth should be evaluated")
	}
}

func sampleRecords() []Record {
	rec := func(game, ply, depth int, cp int) Record {
		return NewRecord(game, ply, "", evalbar.Result{Score: evalbar.Centipawns(cp), Depth: depth}, 0)
	}
	mate := NewRecord(1, 3, "h5f7", evalbar.Result{Score: evalbar.MateIn(evalbar.Positive, 1), Depth: 30}, 0)
	return []Record{
		rec(1, 0, 10, 20),
		rec(1, 1, 12, 40),
		rec(1, 2, 14, -300),
		mate,
		rec(2, 0, 0, 0), // never evaluated
		rec(2, 1, 8, 60),
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRecords())

	if s.Positions != 6 || s.Evaluated != 5 || s.Mates != 1 {
		t.Errorf("counts = %d/%d/%d, want 6/5/1", s.Positions, s.Evaluated, s.Mates)
	}
	if s.MaxDepth != 30 {
		t.Errorf("MaxDepth = %d, want 30", s.MaxDepth)
	}
	if want := (10.0 + 12 + 14 + 30 + 8) / 5; math.Abs(s.MeanDepth-want) > 1e-9 {
		t.Errorf("MeanDepth = %v, want %v", s.MeanDepth, want)
	}

	// Pawn scores: 0.2, 0.4, -3.0, 0.6.
	if want := (0.2 + 0.4 - 3 + 0.6) / 4; math.Abs(s.MeanPawns-want) > 1e-9 {
		t.Errorf("MeanPawns = %v, want %v", s.MeanPawns, want)
	}
	if s.StdDevPawns <= 0 {
		t.Errorf("StdDevPawns = %v, want positive", s.StdDevPawns)
	}
	if s.MinPawns != -3 || s.MaxPawns != 0.6 {
		t.Errorf("range = [%v, %v], want [-3, 0.6]", s.MinPawns, s.MaxPawns)
	}
	if s.MedianPawns != 0.2 {
		t.Errorf("MedianPawns = %v, want 0.2", s.MedianPawns)
	}

	if len(s.Swings) != DefaultSwings {
		t.Fatalf("len(Swings) = %d, want %d", len(s.Swings), DefaultSwings)
	}
	// The mate after -3.0 is the largest swing.
	if top := s.Swings[0]; top.Game != 1 || top.Ply != 3 || top.Move != "h5f7" || top.Delta <= 0 {
		t.Errorf("Swings[0] = %+v, want the mating move", top)
	}
	for _, sw := range s.Swings {
		if sw.Game == 2 {
			t.Errorf("swing %+v crosses an unevaluated position", sw)
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Positions != 0 || s.MeanPawns != 0 || s.StdDevPawns != 0 || len(s.Swings) != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero", s)
	}
}

func TestSummarize_SingleScore(t *testing.T) {
	s := Summarize(sampleRecords()[:1])
	if s.StdDevPawns != 0 || s.MeanPawns != 0.2 {
		t.Errorf("single record summary = mean %v stddev %v", s.MeanPawns, s.StdDevPawns)
	}
}

func TestSummary_WriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Summarize(sampleRecords()).WriteMarkdown(&buf); err != nil {
		t.Fatalf("WriteMarkdown() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"## Evaluation summary",
		"**Positions:** 6 (5 evaluated, 0 faulted)",
		"| Min | -3.00 |",
		"### Largest swings",
		"| 1 | 3 | h5f7 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	records := sampleRecords()

	for _, name := range []string{"report.jsonl", "report.jsonl.gz", "report.jsonl.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			w, err := Create(path)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			for _, r := range records {
				if err := w.Write(r); err != nil {
					t.Fatalf("Write() error = %v", err)
				}
			}
			if w.Count() != len(records) {
				t.Errorf("Count() = %d, want %d", w.Count(), len(records))
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			if err := w.Write(records[0]); !errors.Is(err, ErrWriterClosed) {
				t.Errorf("Write() after Close error = %v, want ErrWriterClosed", err)
			}

			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if len(got) != len(records) {
				t.Fatalf("ReadFile() returned %d records, want %d", len(got), len(records))
			}
			for i := range got {
				if got[i] != records[i] {
					t.Errorf("record %d = %+v, want %+v", i, got[i], records[i])
				}
			}
		})
	}
}

func TestWriter_PlainIsJSONLines(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, nil)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	_ = w.Write(sampleRecords()[0])
	_ = w.Write(sampleRecords()[1])
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], `{"game":1,"ply":0,`) {
		t.Errorf("line = %s", lines[0])
	}
}

func TestRead_WrongCodec(t *testing.T) {
	if _, err := Read(strings.NewReader(`{"game":1}`+"\n"), zstdcodec.New(0)); err == nil {
		t.Error("Read() should fail for plain data through zstd")
	}
}

func TestRead_Malformed(t *testing.T) {
	got, err := Read(strings.NewReader(`{"game":1}`+"\n{oops\n"), nil)
	if err == nil {
		t.Fatal("Read() expected error for malformed line")
	}
	if len(got) != 1 {
		t.Errorf("Read() returned %d records before the error, want 1", len(got))
	}
}
