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
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Stringency selects one of the scoring and gap-penalty policies.
type Stringency int

const (
	Exact Stringency = iota // only a perfect, ungapped match
	Cdna                    // intron-aware, cheap long haystack gaps
	Tight                   // gaps are expensive
	Loose                   // gaps are cheap
)

// Stringencies lists all supported stringencies.
var Stringencies = []Stringency{Exact, Cdna, Tight, Loose}

func (s Stringency) String() string {
	switch s {
	case Exact:
		return "exact"
	case Cdna:
		return "cdna"
	case Tight:
		return "tight"
	case Loose:
		return "loose"
	}
	return fmt.Sprintf("Stringency(%d)", int(s))
}

// Valid tells whether s is one of the four stringencies.
func (s Stringency) Valid() bool {
	return s >= Exact && s <= Loose
}

// ParseStringency parses a stringency name, case-insensitively.
func ParseStringency(name string) (Stringency, error) {
	switch strings.ToLower(name) {
	case "exact":
		return Exact, nil
	case "cdna":
		return Cdna, nil
	case "tight":
		return Tight, nil
	case "loose":
		return Loose, nil
	}
	return Exact, errors.Wrapf(ErrInvalidStringency, "%q, available: exact, cdna, tight, loose", name)
}

// MinScore is the score of an empty alignment.
const MinScore = -0x7FFFFFFF

// ExactGapPenalty is the base cost of any gap under the Exact stringency.
const ExactGapPenalty = 1000000

// CdnaGapPenalty returns the cDNA gap penalty for the given haystack and needle
// gaps. Long introns and backward jumps are discouraged.
func CdnaGapPenalty(hGap, nGap int) int {
	acc := 2
	if hGap > 100000 { // really long introns
		acc += (hGap - 100000) / 3000
		if hGap > 500000 {
			acc += (hGap - 500000) / 2000
		}
	}
	if hGap < 0 { // jumping back in haystack
		hGap = -8 * hGap
		if hGap > 48 {
			hGap = hGap * hGap
		}
	}
	if nGap < 0 { // jumping back in needle gets rid of previous alignment
		acc += -nGap
		nGap = 0
	}
	return acc + digitsBaseTwo(hGap+nGap)
}

func tightGapPenalty(hGap, nGap int) int {
	if hGap == 0 && nGap == 0 {
		return 0
	}
	overlap := min(hGap, nGap)
	if overlap < 0 {
		overlap = 0
	}
	if hGap < 0 {
		hGap = -8 * hGap
	}
	if nGap < 0 {
		nGap = -2 * nGap
	}
	return 8 + (hGap - overlap + nGap - overlap) + overlap
}

func looseGapPenalty(hGap, nGap int) int {
	if hGap == 0 && nGap == 0 {
		return 0
	}
	overlap := min(hGap, nGap)
	if overlap < 0 {
		overlap = 0
	}
	if hGap < 0 {
		hGap = -8 * hGap
	}
	if nGap < 0 {
		nGap = -2 * nGap
	}
	return int(8 + math.Log(float64(hGap-overlap+1)) + math.Log(float64(nGap-overlap+1)))
}

func exactGapPenalty(hGap, nGap int) int {
	if hGap == 0 && nGap == 0 {
		return 0
	}
	if hGap < 0 {
		hGap = -hGap
	}
	if nGap < 0 {
		nGap = -nGap
	}
	return ExactGapPenalty + hGap + nGap
}

// GapPenalty returns the penalty of a gap of hGap haystack bases and
// nGap needle bases. Negative gaps are backward jumps.
func GapPenalty(hGap, nGap int, s Stringency) int {
	switch s {
	case Cdna:
		return CdnaGapPenalty(hGap, nGap)
	case Tight:
		return tightGapPenalty(hGap, nGap)
	case Loose:
		return looseGapPenalty(hGap, nGap)
	default:
		return exactGapPenalty(hGap, nGap)
	}
}

func gapPenaltyBetween(left, right *Ali, s Stringency) int {
	return GapPenalty(right.HStart-left.HEnd, right.NStart-left.NEnd, s)
}

// Score scores the chain ali belongs to against the needle and haystack:
// matches minus mismatches of every block, minus the gap penalties between
// neighbouring blocks. An empty chain scores MinScore.
func Score(ali *Ali, needle, hay []byte, s Stringency) int {
	if ali == nil {
		return MinScore
	}
	var score int
	for a := Leftmost(ali); a != nil; a = a.Right {
		score += ScoreMatch(hay[a.HStart:a.HEnd], needle[a.NStart:a.NEnd])
		if a.Right != nil {
			score -= gapPenaltyBetween(a, a.Right, s)
		}
	}
	return score
}

// ScoreCdna scores a chain with the Cdna stringency. A perfect match scores
// the needle length.
func ScoreCdna(ali *Ali, needle, hay []byte) int {
	return Score(ali, needle, hay, Cdna)
}

// ScoreSome scores the first count blocks starting from ali.
func ScoreSome(ali *Ali, count int, needle, hay []byte, s Stringency) int {
	var score int
	for ; count > 0 && ali != nil; count-- {
		score += ScoreMatch(hay[ali.HStart:ali.HEnd], needle[ali.NStart:ali.NEnd])
		if count > 1 && ali.Right != nil {
			score -= gapPenaltyBetween(ali, ali.Right, s)
		}
		ali = ali.Right
	}
	return score
}
