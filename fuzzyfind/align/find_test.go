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
	"bytes"
	"sync"
	"testing"

	"github.com/pkg/errors"
)

// checkChain checks the links and block invariants of a chain.
func checkChain(t *testing.T, ali *Ali) {
	t.Helper()
	if ali == nil {
		return
	}
	if ali.Left != nil {
		t.Errorf("the head has a left neighbour: %s", ali)
	}
	for a := ali; a != nil; a = a.Right {
		if a.NStart > a.NEnd || a.HStart > a.HEnd {
			t.Errorf("reversed block: %s", a)
		}
		if a.NEnd-a.NStart != a.HEnd-a.HStart {
			t.Errorf("block of different sizes: %s", a)
		}
		if a.Right == nil {
			continue
		}
		if a.Right.Left != a {
			t.Errorf("broken link after %s", a)
		}
		if a.Right.NStart < a.NEnd {
			t.Errorf("blocks overlapping in needle: %s, %s", a, a.Right)
		}
	}
}

func TestFindExact(t *testing.T) {
	needle, hay := []byte("acgtacgtacgt"), []byte("ttttacgtacgtacgttttt")
	for _, s := range Stringencies {
		ali, err := Find(needle, hay, s)
		if err != nil {
			t.Error(err)
			continue
		}
		if ali == nil {
			t.Errorf("%s: no alignment", s)
			continue
		}
		checkChain(t, ali)
		if Count(ali) != 1 || ali.NStart != 0 || ali.NEnd != 12 || ali.HStart != 4 || ali.HEnd != 16 {
			t.Errorf("%s: unexpected alignment: %v", s, Blocks(ali))
		}
		if score := Score(ali, needle, hay, s); score != 12 {
			t.Errorf("%s: score %d, expected 12", s, score)
		}
		if ali.StartGood != 12 || ali.EndGood != 12 {
			t.Errorf("%s: unexpected good ends: %d, %d", s, ali.StartGood, ali.EndGood)
		}
	}

	// exact stringency gives up on anything else
	ali, err := Find([]byte("acgtacctacgt"), hay, Exact)
	if err != nil || ali != nil {
		t.Errorf("unexpected result: %v, %v", ali, err)
	}
}

func TestFindEmpty(t *testing.T) {
	for _, pair := range [][2]string{{"", "acgt"}, {"acgt", ""}, {"", ""}} {
		ali, err := Find([]byte(pair[0]), []byte(pair[1]), Cdna)
		if err != nil || ali != nil {
			t.Errorf("%q vs %q: %v, %v", pair[0], pair[1], ali, err)
		}
	}
	ali, err := Find([]byte("a"), []byte("ccccgggg"), Loose)
	if err != nil || ali != nil {
		t.Errorf("a single base should not align: %v, %v", ali, err)
	}
}

func TestFindErrors(t *testing.T) {
	f := NewFinder(nil)
	needle, hay := []byte("acgt"), []byte("ttacgtt")

	_, err := f.FindRange(needle, hay, 2, 1, 0, len(hay), Cdna)
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("unexpected error: %v", err)
	}
	_, err = f.FindRange(needle, hay, 0, 4, 0, 100, Cdna)
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("unexpected error: %v", err)
	}
	_, err = f.Find(needle, hay, Stringency(9))
	if !errors.Is(err, ErrInvalidStringency) {
		t.Errorf("unexpected error: %v", err)
	}
	_, err = f.Find([]byte("acGt"), hay, Cdna)
	if !errors.Is(err, ErrNotLowerCase) {
		t.Errorf("unexpected error: %v", err)
	}
	_, err = f.Find(needle, []byte("TTACGTT"), Cdna)
	if errors.Cause(err) != ErrNotLowerCase {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFindRange(t *testing.T) {
	needle, hay := []byte("acgt"), []byte("acgtttacgt")
	ali, err := NewFinder(nil).FindRange(needle, hay, 0, 4, 1, len(hay), Tight)
	if err != nil {
		t.Error(err)
		return
	}
	if ali == nil || ali.HStart != 6 || ali.HEnd != 10 {
		t.Errorf("unexpected alignment: %v", Blocks(ali))
	}
}

// insertionCase returns a needle copied from the haystack with one extra
// base after position ins.
func insertionCase() (needle, hay []byte, ins int) {
	hay = randomDNA(300, 7)
	ins = 30
	needle = make([]byte, 0, 61)
	needle = append(needle, hay[100:100+ins]...)
	for _, b := range []byte("acgt") {
		if b != hay[100+ins-1] && b != hay[100+ins] {
			needle = append(needle, b)
			break
		}
	}
	needle = append(needle, hay[100+ins:160]...)
	return needle, hay, ins
}

func TestFindInsertion(t *testing.T) {
	needle, hay, ins := insertionCase()

	ali, err := Find(needle, hay, Cdna)
	if err != nil {
		t.Error(err)
		return
	}
	if ali == nil {
		t.Errorf("no alignment")
		return
	}
	checkChain(t, ali)
	for _, a := range Blocks(ali) {
		t.Logf("%s", a)
	}

	blocks := Blocks(ali)
	if len(blocks) != 2 {
		t.Errorf("%d blocks, expected 2", len(blocks))
		return
	}
	a, b := blocks[0], blocks[1]
	if a.NStart != 0 || a.HStart != 100 || b.NEnd != len(needle) || b.HEnd != 160 {
		t.Errorf("unexpected span: %s, %s", a, b)
	}
	if nGap, hGap := b.NStart-a.NEnd, b.HStart-a.HEnd; nGap != 1 || hGap != 0 {
		t.Errorf("unexpected gaps: needle %d, haystack %d", nGap, hGap)
	}
	if a.NEnd != ins {
		t.Errorf("the gap should be after position %d: %s", ins, a)
	}

	expected := len(needle) - 1 - GapPenalty(0, 1, Cdna)
	if score := ScoreCdna(ali, needle, hay); score != expected {
		t.Errorf("score %d, expected %d", score, expected)
	}
}

func TestFindStringencies(t *testing.T) {
	needle, hay, _ := insertionCase()
	for _, s := range []Stringency{Cdna, Tight, Loose} {
		ali, err := Find(needle, hay, s)
		if err != nil {
			t.Error(err)
			continue
		}
		if ali == nil {
			t.Errorf("%s: no alignment", s)
			continue
		}
		checkChain(t, ali)
		if score := Score(ali, needle, hay, s); score < len(needle)/2 {
			t.Errorf("%s: poor score: %d", s, score)
		}
		st := Stats(ali, needle, hay)
		t.Logf("%s: %d blocks, score: %d, identity: %.2f, cigar: %s",
			s, st.Blocks, Score(ali, needle, hay, s), st.PIdent, CIGAR(ali, 0))
	}
}

func TestFindAndScore(t *testing.T) {
	hay := randomDNA(400, 3)

	// reverse strand
	needle, err := ReverseComplement(hay[50:110])
	if err != nil {
		t.Error(err)
		return
	}
	r, err := FindAndScore(needle, hay, Tight)
	if err != nil {
		t.Error(err)
		return
	}
	if r == nil || !r.RC {
		t.Errorf("the reverse strand should win: %v", r)
		return
	}
	if r.Ali.HStart != 50 || r.Ali.HEnd != 110 || r.Score != 60 {
		t.Errorf("unexpected alignment: %v, score: %d", Blocks(r.Ali), r.Score)
	}
	if !bytes.Equal(r.Needle, hay[50:110]) {
		t.Errorf("the aligned needle should be the reverse complement")
	}

	// forward strand wins ties: acgt is its own reverse complement
	ali, rc, err := FindEitherStrand([]byte("acgt"), []byte("ttacgttt"), Loose)
	if err != nil {
		t.Error(err)
		return
	}
	if ali == nil || rc {
		t.Errorf("the forward strand should win a tie")
	}

	// nothing
	r, err = FindAndScore([]byte("acgt"), []byte("cccccccc"), Exact)
	if err != nil || r != nil {
		t.Errorf("unexpected result: %v, %v", r, err)
	}
}

func TestFindResourceExhausted(t *testing.T) {
	needle, hay, _ := insertionCase()
	f := NewFinder(&Options{MaxBlocks: 1})
	ali, err := f.Find(needle, hay, Cdna)
	if !errors.Is(err, ErrResourceExhausted) {
		t.Errorf("unexpected error: %v", err)
	}
	if ali != nil {
		t.Errorf("no alignment should be returned on failure")
	}

	// the exact short-circuit needs one block only
	ali, err = f.Find(hay[10:50], hay, Cdna)
	if err != nil || ali == nil {
		t.Errorf("unexpected result: %v, %v", ali, err)
	}

	// and the finder still works after a failure
	ali, err = NewFinder(nil).Find(needle, hay, Cdna)
	if err != nil || Count(ali) != 2 {
		t.Errorf("unexpected result: %v, %v", Blocks(ali), err)
	}
}

func TestFindExtendThroughN(t *testing.T) {
	hay := randomDNA(300, 5)
	needle := make([]byte, 80)
	copy(needle, hay[100:180])
	for i := 38; i < 44; i++ {
		needle[i] = 'n'
	}

	for _, through := range []bool{false, true} {
		f := NewFinder(&Options{ExtendThroughN: through})
		ali, err := f.Find(needle, hay, Tight)
		if err != nil {
			t.Error(err)
			continue
		}
		if ali == nil {
			t.Errorf("no alignment, extend through N: %v", through)
			continue
		}
		checkChain(t, ali)
		st := Stats(ali, needle, hay)
		t.Logf("extend through N: %v, blocks: %v, Ns: %d", through, Blocks(ali), st.NCount)
		if through && Count(ali) != 1 {
			t.Errorf("a run of N should be crossed: %v", Blocks(ali))
		}
	}
}

func TestFindConcurrent(t *testing.T) {
	needle, hay, _ := insertionCase()
	expected, err := Find(needle, hay, Cdna)
	if err != nil {
		t.Error(err)
		return
	}

	var wg sync.WaitGroup
	f := NewFinder(nil)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				ali, err := f.Find(needle, hay, Cdna)
				if err != nil {
					t.Error(err)
					return
				}
				if !Equal(ali, expected) {
					t.Errorf("different results: %v, %v", Blocks(ali), Blocks(expected))
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestCopyChain(t *testing.T) {
	ali := link([]*Ali{
		{NStart: 0, NEnd: 4, HStart: 0, HEnd: 4},
		{NStart: 5, NEnd: 9, HStart: 20, HEnd: 24},
	})
	c := copyChain(ali.Right)
	checkChain(t, c)
	if !Equal(c, ali) || c == ali {
		t.Errorf("unexpected copy: %v", Blocks(c))
	}
	FreeAli(c)
	if c.Right != nil {
		t.Errorf("links not cleared")
	}
}
