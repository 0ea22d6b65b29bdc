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
	"testing"

	"github.com/pkg/errors"
)

func TestCdnaGapPenalty(t *testing.T) {
	tests := []struct {
		h, n    int
		penalty int
	}{
		{0, 0, 2},
		{0, 1, 3},
		{3, 0, 4},
		{100000, 0, 19},
		{102999, 0, 19},
		{103000, 0, 20},
		{500000, 0, 154},
		{502000, 0, 156},
		{-1, 0, 6},    // 2 + digits(8)
		{-7, 0, 14},   // 2 + digits(56*56)
		{10, -3, 9},   // 2 + 3 + digits(10)
		{10, 20, 7},   // 2 + digits(30)
		{1000, 0, 12}, // 2 + digits(1000)
	}
	for _, test := range tests {
		if p := CdnaGapPenalty(test.h, test.n); p != test.penalty {
			t.Errorf("CdnaGapPenalty(%d, %d) = %d, expected %d", test.h, test.n, p, test.penalty)
		}
		if p := GapPenalty(test.h, test.n, Cdna); p != test.penalty {
			t.Errorf("GapPenalty(%d, %d, Cdna) = %d, expected %d", test.h, test.n, p, test.penalty)
		}
	}
}

func TestGapPenalty(t *testing.T) {
	tests := []struct {
		h, n    int
		s       Stringency
		penalty int
	}{
		{0, 0, Tight, 0},
		{5, 0, Tight, 13},
		{3, 3, Tight, 11},
		{-1, 0, Tight, 16},
		{0, -2, Tight, 12},
		{0, 0, Loose, 0},
		{0, 7, Loose, 10},
		{100, 0, Loose, 12},
		{0, 0, Exact, 0},
		{0, 1, Exact, ExactGapPenalty + 1},
		{-2, 3, Exact, ExactGapPenalty + 5},
	}
	for _, test := range tests {
		if p := GapPenalty(test.h, test.n, test.s); p != test.penalty {
			t.Errorf("GapPenalty(%d, %d, %s) = %d, expected %d", test.h, test.n, test.s, p, test.penalty)
		}
	}

	// bigger gaps never cost less
	for _, s := range Stringencies {
		for g := 1; g < 2000; g++ {
			if GapPenalty(g, 0, s) < GapPenalty(g-1, 0, s) {
				t.Errorf("%s: haystack gap penalty decreases at %d", s, g)
				break
			}
			if GapPenalty(0, g, s) < GapPenalty(0, g-1, s) {
				t.Errorf("%s: needle gap penalty decreases at %d", s, g)
				break
			}
		}
	}
}

func TestScore(t *testing.T) {
	hay := []byte("acgtacgtttttggggcccc")
	needle := []byte("acgtggggcccc")

	if s := Score(nil, needle, hay, Cdna); s != MinScore {
		t.Errorf("score of nil: %d", s)
	}

	ali := link([]*Ali{
		{NStart: 0, NEnd: 4, HStart: 0, HEnd: 4},
		{NStart: 4, NEnd: 12, HStart: 12, HEnd: 20},
	})
	// 12 matches, a haystack gap of 8
	for _, test := range []struct {
		s     Stringency
		score int
	}{
		{Cdna, 12 - 6},
		{Tight, 12 - 16},
		{Loose, 12 - 10},
		{Exact, 12 - ExactGapPenalty - 8},
	} {
		if s := Score(ali.Right, needle, hay, test.s); s != test.score {
			t.Errorf("Score(%s) = %d, expected %d", test.s, s, test.score)
		}
	}
	if ScoreCdna(ali, needle, hay) != Score(ali, needle, hay, Cdna) {
		t.Errorf("ScoreCdna differs from Score")
	}
	if s := ScoreSome(ali, 1, needle, hay, Cdna); s != 4 {
		t.Errorf("ScoreSome(1) = %d, expected 4", s)
	}
	if s := ScoreSome(ali, 2, needle, hay, Cdna); s != 6 {
		t.Errorf("ScoreSome(2) = %d, expected 6", s)
	}

	// a wider gap scores lower
	wider := link([]*Ali{
		{NStart: 0, NEnd: 4, HStart: 0, HEnd: 4},
		{NStart: 4, NEnd: 8, HStart: 16, HEnd: 20},
	})
	narrower := link([]*Ali{
		{NStart: 0, NEnd: 4, HStart: 0, HEnd: 4},
		{NStart: 4, NEnd: 8, HStart: 12, HEnd: 16},
	})
	for _, s := range Stringencies {
		if Score(wider, needle, hay, s) > Score(narrower, needle, hay, s) {
			t.Errorf("%s: wider gap scores higher", s)
		}
	}
}

func TestParseStringency(t *testing.T) {
	for _, s := range Stringencies {
		_s, err := ParseStringency(s.String())
		if err != nil {
			t.Error(err)
			continue
		}
		if _s != s {
			t.Errorf("ParseStringency(%s) = %s", s, _s)
		}
	}
	if s, err := ParseStringency("CDNA"); err != nil || s != Cdna {
		t.Errorf("ParseStringency(CDNA) = %s, %v", s, err)
	}

	_, err := ParseStringency("medium")
	if !errors.Is(err, ErrInvalidStringency) {
		t.Errorf("unexpected error: %v", err)
	}
	if Stringency(7).Valid() {
		t.Errorf("Stringency(7) should be invalid")
	}
}
