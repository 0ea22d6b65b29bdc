// Copyright © 2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package align

import (
	"github.com/pkg/errors"
)

// Options contains the options of a Finder.
type Options struct {
	// Expand blocks through runs of four or more N's. By default only
	// shorter runs are crossed.
	ExtendThroughN bool

	// Maximum number of blocks one search may allocate, 0 for no limit.
	// A search reaching it fails with ErrResourceExhausted.
	MaxBlocks int
}

// DefaultOptions is the default Options.
var DefaultOptions = Options{
	ExtendThroughN: false,
	MaxBlocks:      0,
}

// gap penalties of the two expansion rounds, and minimum match sizes
// of the second one, indexed by stringency.
var (
	iniExpGapPen   = [...]int{Exact: 0, Cdna: 4, Tight: 4, Loose: 4}
	addExpGapPen   = [...]int{Exact: 0, Cdna: 3, Tight: 3, Loose: 3}
	midTileMinSize = [...]int{Exact: 0, Cdna: 12, Tight: 12, Loose: 4}
)

// Finder aligns needles to haystacks. It keeps no state between calls and
// is safe for concurrent use.
type Finder struct {
	Options *Options
}

// NewFinder returns a Finder. nil options means DefaultOptions.
func NewFinder(options *Options) *Finder {
	if options == nil {
		opt := DefaultOptions
		options = &opt
	}
	return &Finder{Options: options}
}

// Result is the alignment of a needle on the better strand.
type Result struct {
	Ali    *Ali
	RC     bool   // the reverse complement of the needle was aligned
	Score  int    // score of Ali under the stringency used
	Needle []byte // the aligned needle sequence, reverse complemented if RC
}

// Find aligns the whole needle to the whole haystack. Both sequences must be
// lower case. It returns nil and no error when nothing aligns.
func (f *Finder) Find(needle, hay []byte, s Stringency) (*Ali, error) {
	return f.FindRange(needle, hay, 0, len(needle), 0, len(hay), s)
}

// FindRange aligns needle[nStart:nEnd] to hay[hStart:hEnd]. Coordinates of
// the returned blocks are offsets into needle and hay.
func (f *Finder) FindRange(needle, hay []byte, nStart, nEnd, hStart, hEnd int, s Stringency) (ali *Ali, err error) {
	if nStart < 0 || nStart > nEnd || nEnd > len(needle) {
		return nil, errors.Wrapf(ErrInvalidRange, "needle [%d, %d) of %d bases", nStart, nEnd, len(needle))
	}
	if hStart < 0 || hStart > hEnd || hEnd > len(hay) {
		return nil, errors.Wrapf(ErrInvalidRange, "haystack [%d, %d) of %d bases", hStart, hEnd, len(hay))
	}
	if !s.Valid() {
		return nil, errors.Wrapf(ErrInvalidStringency, "%d", int(s))
	}
	if i := checkLowerCase(needle[nStart:nEnd]); i >= 0 {
		return nil, errors.Wrapf(ErrNotLowerCase, "needle position %d: %c", nStart+i+1, needle[nStart+i])
	}
	if i := checkLowerCase(hay[hStart:hEnd]); i >= 0 {
		return nil, errors.Wrapf(ErrNotLowerCase, "haystack position %d: %c", hStart+i+1, hay[hStart+i])
	}
	if nEnd == nStart || hEnd == hStart {
		return nil, nil
	}

	mem := poolArena.Get().(*arena)
	mem.reset(f.Options.MaxBlocks)
	defer mem.release()

	defer func() {
		if r := recover(); r != nil {
			full, ok := r.(arenaFull)
			if !ok {
				panic(r)
			}
			ali = nil
			err = errors.Wrapf(ErrResourceExhausted, "more than %d blocks", full.max)
		}
	}()

	sr := &search{
		needle:         needle,
		hay:            hay,
		stringency:     s,
		extendThroughN: f.Options.ExtendThroughN,
		mem:            mem,
	}
	best := sr.bestAli(nStart, nEnd, hStart, hEnd)
	if best == nil {
		return nil, nil
	}
	countGoodEnds(best, needle, hay)
	return copyChain(best), nil
}

// bestAli runs the whole pipeline on needle[ns:ne] and hay[hs:he].
func (s *search) bestAli(ns, ne, hs, he int) *Ali {
	if h := exactFind(s.needle, s.hay, ns, ne, hs, he); h >= 0 {
		return s.mem.newAli(ns, ne, h, h+ne-ns)
	}
	if s.stringency == Exact {
		return nil
	}

	matchSize := max(nextPowerOfFour(he-hs)+1, midTileMinSize[s.stringency])

	ali := s.wovenTiles(ns, ne, hs, he)
	if ali == nil {
		return nil
	}

	ali = MergeNeedleAlis(ali)
	ali = s.expandAlis(ali, ns, ne, hs, he, iniExpGapPen[s.stringency], 1)
	ali = MergeNeedleAlis(ali)
	ali = s.expandAlis(ali, ns, ne, hs, he, addExpGapPen[s.stringency], 2*matchSize)
	ali = s.trimAlis(ali)
	ali = MergeNeedleAlis(ali)
	ali = MergeHayOverlaps(ali)
	ali = s.reconsiderAlignedGaps(ali)
	ali = RemoveEmptyAlis(ali)
	ali = MergeNeedleAlis(ali)
	if s.stringency == Cdna {
		SlideIntrons(ali, s.needle, s.hay)
	}
	return RemoveEmptyAlis(ali)
}

// FindAndScore aligns both the needle and its reverse complement, and
// returns the one scoring higher. Ties go to the forward strand.
// The needle is not modified.
func (f *Finder) FindAndScore(needle, hay []byte, s Stringency) (*Result, error) {
	fAli, err := f.Find(needle, hay, s)
	if err != nil {
		return nil, err
	}
	fScore := Score(fAli, needle, hay, s)

	rc, err := ReverseComplement(needle)
	if err != nil {
		return nil, err
	}
	rAli, err := f.Find(rc, hay, s)
	if err != nil {
		return nil, err
	}
	rScore := Score(rAli, rc, hay, s)

	if fAli == nil && rAli == nil {
		return nil, nil
	}
	if fAli != nil && (rAli == nil || fScore >= rScore) {
		FreeAli(rAli)
		return &Result{Ali: fAli, Score: fScore, Needle: needle}, nil
	}
	FreeAli(fAli)
	return &Result{Ali: rAli, RC: true, Score: rScore, Needle: rc}, nil
}

// FindEitherStrand is FindAndScore without the score. The boolean tells
// whether the reverse complement of the needle was aligned.
func (f *Finder) FindEitherStrand(needle, hay []byte, s Stringency) (*Ali, bool, error) {
	r, err := f.FindAndScore(needle, hay, s)
	if err != nil || r == nil {
		return nil, false, err
	}
	return r.Ali, r.RC, nil
}

var defaultFinder = NewFinder(nil)

// Find aligns needle to hay with DefaultOptions.
func Find(needle, hay []byte, s Stringency) (*Ali, error) {
	return defaultFinder.Find(needle, hay, s)
}

// FindEitherStrand aligns needle or its reverse complement to hay with
// DefaultOptions.
func FindEitherStrand(needle, hay []byte, s Stringency) (*Ali, bool, error) {
	return defaultFinder.FindEitherStrand(needle, hay, s)
}

// FindAndScore aligns needle or its reverse complement to hay with
// DefaultOptions, and scores the result.
func FindAndScore(needle, hay []byte, s Stringency) (*Result, error) {
	return defaultFinder.FindAndScore(needle, hay, s)
}
