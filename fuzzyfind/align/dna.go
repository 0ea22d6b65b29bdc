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
	"math/bits"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
)

// ntVal maps a base to its index in a frequency table, -1 for non-ACGT.
var ntVal [256]int8

func init() {
	for i := range ntVal {
		ntVal[i] = -1
	}
	ntVal['t'], ntVal['T'] = 0, 0
	ntVal['c'], ntVal['C'] = 1, 1
	ntVal['a'], ntVal['A'] = 2, 2
	ntVal['g'], ntVal['G'] = 3, 3
}

// ScoreMatch compares two pieces of DNA base by base. It returns the number
// of matches minus the number of mismatches, 'n' neither hurts nor helps.
// Only the common length of a and b is compared.
func ScoreMatch(a, b []byte) int {
	if len(b) < len(a) {
		a = a[:len(b)]
	}
	var score int
	var aa, bb byte
	for i := range a {
		aa, bb = a[i], b[i]
		if aa == 'n' || bb == 'n' {
			continue
		}
		if aa == bb {
			score++
		} else {
			score--
		}
	}
	return score
}

// BaseHistogram counts the four bases in the order t, c, a, g.
func BaseHistogram(s []byte) [4]int {
	var histo [4]int
	var v int8
	for _, b := range s {
		if v = ntVal[b]; v >= 0 {
			histo[v]++
		}
	}
	return histo
}

func freqTable(s []byte) [4]float64 {
	histo := BaseHistogram(s)
	total := float64(histo[0] + histo[1] + histo[2] + histo[3])
	if total == 0 {
		total = 1
	}
	var freq [4]float64
	for i, n := range histo {
		freq[i] = float64(n) / total
	}
	return freq
}

// oligoProb is the chance of an oligo under the base frequencies,
// bases other than ACGT are free.
func oligoProb(oligo []byte, freq *[4]float64) float64 {
	prob := 1.0
	var v int8
	for _, b := range oligo {
		if v = ntVal[b]; v >= 0 {
			prob *= freq[v]
		}
	}
	return prob
}

// digitsBaseTwo returns the number of binary digits needed for x, 0 for x <= 0.
func digitsBaseTwo(x int) int {
	if x <= 0 {
		return 0
	}
	return bits.Len(uint(x))
}

// nextPowerOfFour returns how many bases are needed to code x.
// If x < 4 it returns 1, if x < 16 it returns 2, and so on.
func nextPowerOfFour(x int) int {
	count := 1
	for x > 4 {
		count++
		x >>= 2
	}
	return count
}

// ReverseComplement returns the reverse complement of s in a new slice.
func ReverseComplement(s []byte) ([]byte, error) {
	rc := make([]byte, len(s))
	copy(rc, s)
	if len(rc) == 0 {
		return rc, nil
	}
	_s, err := seq.NewSeq(seq.DNAredundant, rc)
	if err != nil {
		return nil, errors.Wrap(err, "reverse complement")
	}
	_s.RevComInplace()
	return _s.Seq, nil
}

// checkLowerCase returns the index of the first upper-case letter, or -1.
func checkLowerCase(s []byte) int {
	for i, b := range s {
		if b >= 'A' && b <= 'Z' {
			return i
		}
	}
	return -1
}
