package qastore

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/rfpcruncher/engine/common/logger"
	"github.com/rfpcruncher/engine/schema"
	"github.com/rfpcruncher/engine/textnorm"
)

// PersistenceError wraps a failure to read or write the QA workbook.
// Unlike model and retrieval failures it propagates to callers.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("qastore: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistence reports whether err is a QA store persistence failure.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

const (
	questionHeader = "question"
	answerHeader   = "answer"
)

// Store is the curated question/answer cache, backed by an xlsx workbook
// with question and answer columns. Entries are keyed by the normalized
// question; insertion order is preserved so equal-score matches resolve
// to the earliest entry. Save rewrites the whole file under an exclusive
// lock that spans the in-memory update and the write.
type Store struct {
	mu    sync.RWMutex
	path  string
	sheet string

	entries []schema.QAEntry
	index   map[string]int // normalized question -> position in entries
}

// Open loads the workbook at path. A missing file yields an empty store;
// malformed rows are skipped with a warning.
func Open(path, sheet string) (*Store, error) {
	s := &Store{
		path:  path,
		sheet: sheet,
		index: make(map[string]int),
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Infof("qastore: %s not found, starting with empty store", path)
		return s, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: path, Err: err}
	}
	if len(rows) == 0 {
		return s, nil
	}

	qCol, aCol := headerColumns(rows[0])
	if qCol < 0 || aCol < 0 {
		return nil, &PersistenceError{
			Op:   "read",
			Path: path,
			Err:  fmt.Errorf("sheet %s missing %s/%s header", sheet, questionHeader, answerHeader),
		}
	}

	for i, row := range rows[1:] {
		if qCol >= len(row) || aCol >= len(row) {
			logger.Warnf("qastore: skipping malformed row %d in %s", i+2, path)
			continue
		}
		q := strings.TrimSpace(row[qCol])
		a := strings.TrimSpace(row[aCol])
		if q == "" || a == "" {
			logger.Warnf("qastore: skipping empty row %d in %s", i+2, path)
			continue
		}
		s.upsertLocked(q, a)
	}

	logger.Infof("qastore: loaded %d entries from %s", len(s.entries), path)
	return s, nil
}

func headerColumns(header []string) (qCol, aCol int) {
	qCol, aCol = -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case questionHeader:
			qCol = i
		case answerHeader:
			aCol = i
		}
	}
	return qCol, aCol
}

// Lookup returns the answer for an exactly matching normalized question.
func (s *Store) Lookup(question string) (string, bool) {
	key := textnorm.Normalize(question)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.index[key]; ok {
		return s.entries[i].Answer, true
	}
	return "", false
}

// Entries returns a snapshot of all entries in insertion order.
func (s *Store) Entries() []schema.QAEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]schema.QAEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Save upserts a question/answer pair and rewrites the workbook. The lock
// covers the whole read-modify-write-persist sequence so concurrent saves
// cannot interleave. On write failure the in-memory state is rolled back.
func (s *Store) Save(question, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := make([]schema.QAEntry, len(s.entries))
	copy(prev, s.entries)
	prevIdx := s.index

	s.index = make(map[string]int, len(prevIdx)+1)
	for k, v := range prevIdx {
		s.index[k] = v
	}
	s.upsertLocked(question, answer)

	if err := s.writeLocked(); err != nil {
		s.entries = prev
		s.index = prevIdx
		return err
	}
	return nil
}

// upsertLocked stores the normalized question. A duplicate keeps its
// original position and overwrites only the answer.
func (s *Store) upsertLocked(question, answer string) {
	key := textnorm.Normalize(question)
	if key == "" {
		return
	}
	if i, ok := s.index[key]; ok {
		s.entries[i].Answer = answer
		return
	}
	s.entries = append(s.entries, schema.QAEntry{Question: key, Answer: answer})
	s.index[key] = len(s.entries) - 1
}

func (s *Store) writeLocked() error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Err: err}
	}
	f.SetActiveSheet(idx)

	if err := f.SetSheetRow(sheet, "A1", &[]string{questionHeader, answerHeader}); err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Err: err}
	}
	for i, e := range s.entries {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]string{e.Question, e.Answer}); err != nil {
			return &PersistenceError{Op: "write", Path: s.path, Err: err}
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}
