package scan

import (
	"context"
	"fmt"
	"iter"
	"math"

	"sloan/internal/logging"
	"sloan/internal/persistence"
)

// DefaultRecordBlockSize is how many integers the record scanner examines per block.
const DefaultRecordBlockSize = 1_000_000

var (
	// Sentinel is the zero-indexed term that prefixes the published sequence (A330152).
	Sentinel = persistence.Result{}

	// Seed is the first real term: 1 has persistence 1 in base 2.
	Seed = persistence.Result{Integer: 1, Persistence: 1, Base: 2}
)

// RecordScanner produces the integers whose maximal persistence beats every
// smaller integer's. Blocks are scanned one after another because each block's
// floor depends on the terms found before it; the work inside a block goes
// through the backend.
type RecordScanner struct {
	backend   Backend
	blockSize uint64

	next    uint64 // first integer of the next block
	atTop   bool   // afterX was the largest uint64; nothing follows it
	floor   int    // persistence of the last emitted term
	pending []persistence.Result
}

// NewRecordScanner resumes the sequence after the term (afterX, floor).
// Scanning starts at afterX+1.
func NewRecordScanner(backend Backend, blockSize uint64, afterX uint64, floor int) *RecordScanner {
	if backend == nil {
		backend = Sequential{}
	}
	if blockSize == 0 {
		blockSize = DefaultRecordBlockSize
	}
	return &RecordScanner{
		backend:   backend,
		blockSize: blockSize,
		next:      afterX + 1,
		atTop:     afterX == math.MaxUint64,
		floor:     floor,
	}
}

// NewSeededRecordScanner starts right after Seed.
func NewSeededRecordScanner(backend Backend, blockSize uint64) *RecordScanner {
	return NewRecordScanner(backend, blockSize, Seed.Integer, Seed.Persistence)
}

// Floor returns the persistence the next term has to beat.
func (s *RecordScanner) Floor() int {
	return s.floor
}

// Next returns the next record term. Candidates left over from the current
// block are drained before another block is fetched.
func (s *RecordScanner) Next(ctx context.Context) (persistence.Result, error) {
	for len(s.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return persistence.Result{}, err
		}
		if err := s.fetch(ctx); err != nil {
			return persistence.Result{}, err
		}
	}

	term := s.pending[0]
	s.floor = term.Persistence

	kept := s.pending[:0]
	for _, c := range s.pending[1:] {
		if c.Persistence > s.floor {
			kept = append(kept, c)
		}
	}
	s.pending = kept
	return term, nil
}

// Terms yields record terms until the consumer stops or an error occurs.
func (s *RecordScanner) Terms(ctx context.Context) iter.Seq2[persistence.Result, error] {
	return func(yield func(persistence.Result, error) bool) {
		for {
			term, err := s.Next(ctx)
			if err != nil {
				yield(persistence.Result{}, err)
				return
			}
			if !yield(term, nil) {
				return
			}
		}
	}
}

// fetch scans the next block against the current floor and keeps the
// candidates that beat it, sorted by integer.
func (s *RecordScanner) fetch(ctx context.Context) error {
	if s.atTop {
		return fmt.Errorf("no integers after %d: %w", uint64(math.MaxUint64), persistence.ErrOverflow)
	}
	block, err := blockAfter(s.next, s.blockSize)
	if err != nil {
		return err
	}

	floor := s.floor
	timer := logging.StartTimer(logging.CategorySequence, "record block "+block.String())
	candidates, err := s.backend.Map(ctx, block, func(x uint64) (persistence.Result, bool) {
		return persistence.SearchAbove(x, floor)
	})
	timer.Stop()
	if err != nil {
		return err
	}

	logging.Get(logging.CategorySequence).Debug("block %s above floor %d: %d candidates", block, floor, len(candidates))
	s.next = block.End
	s.pending = candidates
	return nil
}
