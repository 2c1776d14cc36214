package scan

import (
	"context"
	"fmt"
	"iter"

	"sloan/internal/logging"
	"sloan/internal/persistence"
)

// DefaultBlockSize is the number of integers a bulk scan computes, and an
// output file receives, per block.
const DefaultBlockSize = 100_000

// Block is one contiguous slice of a bulk scan. Results hold one entry per
// integer of Range in ascending order.
type Block struct {
	Range   Range
	Results []persistence.Result
}

// Scanner computes the maximal persistence of every integer in a range.
// It keeps no state between calls; re-invoking with the same range restarts.
type Scanner struct {
	Backend   Backend
	BlockSize uint64
}

// NewScanner returns a Scanner. A nil backend runs sequentially and a zero
// blockSize uses DefaultBlockSize.
func NewScanner(backend Backend, blockSize uint64) *Scanner {
	if backend == nil {
		backend = Sequential{}
	}
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	return &Scanner{Backend: backend, BlockSize: blockSize}
}

func searchAll(x uint64) (persistence.Result, bool) {
	return persistence.Search(x), true
}

// Blocks yields r in BlockSize chunks, each fully computed and sorted, in
// ascending order. The first error ends the sequence.
func (s *Scanner) Blocks(ctx context.Context, r Range) iter.Seq2[Block, error] {
	return func(yield func(Block, error) bool) {
		if err := r.Validate(); err != nil {
			yield(Block{}, err)
			return
		}
		log := logging.Get(logging.CategoryScan)
		for sub := range r.Split(s.BlockSize) {
			timer := logging.StartTimer(logging.CategoryScan, "scan "+sub.String())
			results, err := s.Backend.Map(ctx, sub, searchAll)
			timer.Stop()
			if err != nil {
				yield(Block{Range: sub}, fmt.Errorf("scan %s: %w", sub, err))
				return
			}
			log.Debug("block %s: %d results", sub, len(results))
			if !yield(Block{Range: sub, Results: results}, nil) {
				return
			}
		}
	}
}

// Results flattens Blocks into one result per integer.
func (s *Scanner) Results(ctx context.Context, r Range) iter.Seq2[persistence.Result, error] {
	return func(yield func(persistence.Result, error) bool) {
		for block, err := range s.Blocks(ctx, r) {
			if err != nil {
				yield(persistence.Result{}, err)
				return
			}
			for _, res := range block.Results {
				if !yield(res, nil) {
					return
				}
			}
		}
	}
}

// Collect scans r in one block and returns every result.
func Collect(ctx context.Context, backend Backend, r Range) ([]persistence.Result, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		backend = Sequential{}
	}
	return backend.Map(ctx, r, searchAll)
}
