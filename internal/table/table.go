// Package table writes persistence results as delimited text. Range files are
// append targets: a header is written only into an empty file and every block
// goes to disk in one write, trimmed away again if that write fails, so a
// file ends on a block boundary.
package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"sloan/internal/logging"
	"sloan/internal/persistence"
)

var (
	// RangeHeader labels bulk-mode rows.
	RangeHeader = []string{"Integer", "Persistence", "Base"}

	// SequenceHeader labels record-sequence rows.
	SequenceHeader = []string{"Persistence", "Integer", "Base"}
)

// DefaultRangePath names a bulk output file after its range: <dir>/<start>-<end>.csv.
func DefaultRangePath(dir string, start, end uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%d-%d.csv", start, end))
}

func rangeRow(r persistence.Result) []string {
	return []string{
		strconv.FormatUint(r.Integer, 10),
		strconv.Itoa(r.Persistence),
		strconv.FormatUint(r.Base, 10),
	}
}

func sequenceRow(r persistence.Result) []string {
	return []string{
		strconv.Itoa(r.Persistence),
		strconv.FormatUint(r.Integer, 10),
		strconv.FormatUint(r.Base, 10),
	}
}

// ErrPartialRow reports a range file whose last row was cut off.
var ErrPartialRow = errors.New("file does not end with a complete row")

// Writer appends range rows to a file.
type Writer struct {
	path  string
	file  *os.File
	delim rune
	rows  int
}

// OpenAppend opens path for appending, creating it if needed. The header is
// written only when the file is empty. A file ending in a partial row is
// rejected.
func OpenAppend(path string, header []string, delim rune) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory for %s: %w", path, err)
		}
	}
	if err := checkTail(path); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	w := &Writer{path: path, file: file, delim: delim}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if stat.Size() == 0 {
		if err := w.writeRows([][]string{header}); err != nil {
			file.Close()
			return nil, err
		}
		logging.Get(logging.CategoryOutput).Debug("created %s", path)
	} else {
		logging.Get(logging.CategoryOutput).Info("appending to existing %s", path)
	}
	return w, nil
}

// Path returns the file being written.
func (w *Writer) Path() string {
	return w.path
}

// Rows returns how many data rows this Writer has written.
func (w *Writer) Rows() int {
	return w.rows
}

// WriteBlock appends one block of results with a single write. If the write
// fails the file is trimmed back to where the block began.
func (w *Writer) WriteBlock(results []persistence.Result) error {
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = rangeRow(r)
	}
	if err := w.writeRows(rows); err != nil {
		return err
	}
	w.rows += len(results)
	return nil
}

func (w *Writer) writeRows(rows [][]string) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Comma = w.delim
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to encode rows for %s: %w", w.path, err)
	}

	stat, err := w.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", w.path, err)
	}
	if _, err := w.file.Write(buf.Bytes()); err != nil {
		if terr := w.file.Truncate(stat.Size()); terr != nil {
			logging.Get(logging.CategoryOutput).Error("could not trim partial block from %s: %v", w.path, terr)
		}
		return fmt.Errorf("failed to write %s: %w", w.path, err)
	}
	return nil
}

// checkTail returns ErrPartialRow when a non-empty file at path does not end
// in a newline. A missing file passes.
func checkTail(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if stat.Size() == 0 {
		return nil
	}
	last := make([]byte, 1)
	if _, err := file.ReadAt(last, stat.Size()-1); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if last[0] != '\n' {
		return fmt.Errorf("%s: %w", path, ErrPartialRow)
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", w.path, err)
	}
	return nil
}

// Stream writes record-sequence rows to an io.Writer, flushing each row so
// terms show up as soon as they are found.
type Stream struct {
	csv *csv.Writer
}

// NewStream writes header immediately and returns the stream.
func NewStream(out io.Writer, header []string, delim rune) (*Stream, error) {
	s := &Stream{csv: csv.NewWriter(out)}
	s.csv.Comma = delim
	if err := s.write(header); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteTerm writes one term as Persistence, Integer, Base.
func (s *Stream) WriteTerm(r persistence.Result) error {
	return s.write(sequenceRow(r))
}

func (s *Stream) write(row []string) error {
	if err := s.csv.Write(row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	s.csv.Flush()
	return s.csv.Error()
}

// LastInteger returns the Integer column of the last data row in a range file.
// ok is false when the file is missing or holds only a header.
func LastInteger(path string, delim rune) (last uint64, ok bool, err error) {
	if err := checkTail(path); err != nil {
		return 0, false, err
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var line []byte
	sc := bufio.NewScanner(file)
	rowNum := 0
	for sc.Scan() {
		if len(bytes.TrimSpace(sc.Bytes())) == 0 {
			continue
		}
		rowNum++
		if rowNum > 1 {
			line = append(line[:0], sc.Bytes()...)
		}
	}
	if err := sc.Err(); err != nil {
		return 0, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if line == nil {
		return 0, false, nil
	}

	r := csv.NewReader(bytes.NewReader(line))
	r.Comma = delim
	fields, err := r.Read()
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse last row of %s: %w", path, err)
	}
	last, err = strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("last row of %s has a bad Integer %q: %w", path, fields[0], err)
	}
	return last, true, nil
}
