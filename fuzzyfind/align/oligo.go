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

// findImprobableOligo returns the first run of needle[start:end] whose
// probability of matching random sequence with the base frequencies freq
// drops to maxProb or below. A non-ACGT base restarts the run.
func findImprobableOligo(needle []byte, start, end int, maxProb float64, freq *[4]float64) (int, int, float64, bool) {
	prob := 1.0
	from := start
	var b int8
	for i := start; i < end; i++ {
		b = ntVal[needle[i]]
		if b < 0 {
			prob = 1.0
			from = i + 1
			continue
		}
		prob *= freq[b]
		if prob <= maxProb {
			return from, i + 1, prob, true
		}
	}
	return 0, 0, 0, false
}

// hasRepeat tells whether the oligo is made of a unit of period 1 to
// (len+1)/2 repeated over its whole length.
func hasRepeat(oligo []byte) bool {
	n := len(oligo)
	if n == 0 {
		return true
	}

	// mono-nucleotide
	repeat := true
	for i := 1; i < n; i++ {
		if oligo[i] != oligo[0] {
			repeat = false
			break
		}
	}
	if repeat {
		return true
	}

	// di-nucleotide
	repeat = true
	for i := 2; i < n; i++ {
		if oligo[i&1] != oligo[i] {
			repeat = false
			break
		}
	}
	if repeat {
		return true
	}

	maxRep := (n + 1) / 2
	var mod int
	for size := 3; size <= maxRep; size++ {
		mod = 0
		repeat = true
		for i := size; i < n; i++ {
			if oligo[mod] != oligo[i] {
				repeat = false
				break
			}
			mod++
			if mod == size {
				mod = 0
			}
		}
		if repeat {
			return true
		}
	}
	return false
}

// findGoodOligo finds an improbable oligo in needle[start:end] that is not
// a short tandem repeat. Repetitive candidates are skipped and the search
// resumes right after them.
func findGoodOligo(needle []byte, start, end int, maxProb float64, freq *[4]float64) (int, int, float64, bool) {
	for start < end {
		s, e, prob, ok := findImprobableOligo(needle, start, end, maxProb, freq)
		if !ok {
			return 0, 0, 0, false
		}
		if !hasRepeat(needle[s:e]) {
			return s, e, prob, true
		}
		start = e
	}
	return 0, 0, 0, false
}
