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

import "bytes"

// windowSize is the number of bases checked at once when expanding through
// mismatches. A window is accepted when at most two bases disagree.
const windowSize = 5

// leftNextMatch scans diagonally to the left from the ends of needle[ns:ne]
// and hay[hs:he] for the nearest exact match long enough to be significant.
// The required length grows with the log of the skipped distance.
func (s *search) leftNextMatch(ns, ne, hs, he, gapPenalty, maxSkip int) *Ali {
	haySize, needleSize := he-hs, ne-ns
	diagSize := min(haySize+needleSize, maxSkip)

	var hOff, nOff, matchSize int
	for i := 1; i <= diagSize; i++ {
		hOff, nOff = i, 0
		matchSize = gapPenalty + digitsBaseTwo(i)
		if d := hOff - haySize; d > 0 {
			nOff += d
			hOff -= d
		}
		for ; hOff >= 0; hOff, nOff = hOff-1, nOff+1 {
			if matchSize > needleSize-nOff {
				break
			}
			if matchSize > haySize-hOff {
				continue
			}
			if s.needle[ne-nOff-1] == s.hay[he-hOff-1] &&
				bytes.Equal(s.needle[ne-nOff-matchSize:ne-nOff], s.hay[he-hOff-matchSize:he-hOff]) {
				return s.mem.newAli(ne-nOff-matchSize, ne-nOff, he-hOff-matchSize, he-hOff)
			}
		}
	}
	return nil
}

// rightNextMatch is the mirror of leftNextMatch, scanning from the starts
// of needle[ns:ne] and hay[hs:he].
func (s *search) rightNextMatch(ns, ne, hs, he, gapPenalty, maxSkip int) *Ali {
	haySize, needleSize := he-hs, ne-ns
	diagSize := min(haySize+needleSize, maxSkip)

	var hOff, nOff, matchSize int
	for i := 1; i <= diagSize; i++ {
		hOff, nOff = i, 0
		matchSize = gapPenalty + digitsBaseTwo(i)
		if d := hOff - haySize; d > 0 {
			nOff += d
			hOff -= d
		}
		for ; hOff >= 0; hOff, nOff = hOff-1, nOff+1 {
			if matchSize > needleSize-nOff {
				break
			}
			if matchSize > haySize-hOff {
				continue
			}
			if s.needle[ns+nOff] == s.hay[hs+hOff] &&
				bytes.Equal(s.needle[ns+nOff:ns+nOff+matchSize], s.hay[hs+hOff:hs+hOff+matchSize]) {
				return s.mem.newAli(ns+nOff, ns+nOff+matchSize, hs+hOff, hs+hOff+matchSize)
			}
		}
	}
	return nil
}

// expandLeft grows the block to the left inside needle[ns:ne] and
// hay[hs:he], first exactly, then through windows with few mismatches. When
// a window fails and numSkips allows, a new block is searched further left
// with leftNextMatch and linked before the current one.
func (s *search) expandLeft(ali *Ali, ns, ne, hs, he, numSkips, gapPenalty, maxSkip int) bool {
	n, h := ali.NStart, ali.HStart
	oldN := n
	var w int
	for {
		for n > ns && h > hs && s.needle[n-1] == s.hay[h-1] {
			n--
			h--
		}
		if n <= ns || h <= hs {
			ali.NStart, ali.HStart = n, h
			return n != oldN
		}

		w = min(windowSize, n-ns, h-hs)
		if ScoreMatch(s.needle[n-w:n], s.hay[h-w:h]) >= w-2 {
			n -= w
			h -= w
			continue
		}

		ali.NStart, ali.HStart = n, h
		numSkips--
		if numSkips < 0 || n-ns < 3 {
			return n != oldN
		}
		el := s.leftNextMatch(ns, n, hs, h, gapPenalty, maxSkip)
		if el == nil {
			return n != oldN
		}
		insertLeft(ali, el)
		ali = el
		s.expandRight(ali, ns, n, hs, h, 0, gapPenalty, maxSkip)
		n, h = ali.NStart, ali.HStart
	}
}

// expandRight is the mirror of expandLeft.
func (s *search) expandRight(ali *Ali, ns, ne, hs, he, numSkips, gapPenalty, maxSkip int) bool {
	n, h := ali.NEnd, ali.HEnd
	oldN := n
	var w int
	for {
		for n < ne && h < he && s.needle[n] == s.hay[h] {
			n++
			h++
		}
		if n >= ne || h >= he {
			ali.NEnd, ali.HEnd = n, h
			return n != oldN
		}

		w = min(windowSize, ne-n, he-h)
		if ScoreMatch(s.needle[n:n+w], s.hay[h:h+w]) >= w-2 {
			n += w
			h += w
			continue
		}

		ali.NEnd, ali.HEnd = n, h
		numSkips--
		if numSkips < 0 || ne-n < 3 {
			return n != oldN
		}
		el := s.rightNextMatch(n, ne, h, he, gapPenalty, maxSkip)
		if el == nil {
			return n != oldN
		}
		insertRight(ali, el)
		ali = el
		s.expandLeft(ali, n, ne, h, he, 0, gapPenalty, maxSkip)
		n, h = ali.NEnd, ali.HEnd
	}
}

// nPassesRight tells whether the 'n' at seq[i] may be crossed when expanding
// to the right: runs of four or more are only crossed with ExtendThroughN.
func (s *search) nPassesRight(seq []byte, i, end int) bool {
	return s.extendThroughN || i+3 >= end ||
		seq[i+1] != 'n' || seq[i+2] != 'n' || seq[i+3] != 'n'
}

func (s *search) nPassesLeft(seq []byte, i, start int) bool {
	return s.extendThroughN || i-3 < start ||
		seq[i-1] != 'n' || seq[i-2] != 'n' || seq[i-3] != 'n'
}

// expandThroughNRight extends the block to the right over identical bases
// and short runs of N.
func (s *search) expandThroughNRight(ali *Ali, ne, he int) bool {
	n, h := ali.NEnd, ali.HEnd
	var expanded bool
	var nb, hb byte
	for n < ne && h < he {
		nb, hb = s.needle[n], s.hay[h]
		if nb == hb ||
			(nb == 'n' && s.nPassesRight(s.needle, n, ne)) ||
			(hb == 'n' && s.nPassesRight(s.hay, h, he)) {
			n++
			h++
			expanded = true
			continue
		}
		break
	}
	ali.NEnd, ali.HEnd = n, h
	return expanded
}

// expandThroughNLeft is the mirror of expandThroughNRight.
func (s *search) expandThroughNLeft(ali *Ali, ns, hs int) bool {
	n, h := ali.NStart-1, ali.HStart-1
	var expanded bool
	var nb, hb byte
	for n >= ns && h >= hs {
		nb, hb = s.needle[n], s.hay[h]
		if nb == hb ||
			(nb == 'n' && s.nPassesLeft(s.needle, n, ns)) ||
			(hb == 'n' && s.nPassesLeft(s.hay, h, hs)) {
			n--
			h--
			expanded = true
			continue
		}
		break
	}
	ali.NStart, ali.HStart = n+1, h+1
	return expanded
}

// neighbourBounds returns the room a block has for expansion: from the end
// of its left neighbour to the start of its right neighbour, or to the
// range bounds at the ends of the chain.
func neighbourBounds(a *Ali, ns, ne, hs, he int) (int, int, int, int) {
	if a.Left != nil {
		ns, hs = a.Left.NEnd, a.Left.HEnd
	}
	if a.Right != nil {
		ne, he = a.Right.NStart, a.Right.HStart
	}
	return ns, ne, hs, he
}

// expandAlis expands every block towards its neighbours until nothing
// changes. Each round goes through N-tolerant exact expansion, window
// expansion without new blocks, and window expansion with one new block
// per side. It returns the leftmost block.
func (s *search) expandAlis(ali *Ali, nStart, nEnd, hStart, hEnd, gapPenalty, maxSkip int) *Ali {
	var ns, ne, hs, he int
	expanded := true
	for expanded {
		expanded = false

		for a := ali; a != nil; a = a.Right {
			ns, ne, hs, he = neighbourBounds(a, nStart, nEnd, hStart, hEnd)
			expanded = s.expandThroughNLeft(a, ns, hs) || expanded
			expanded = s.expandThroughNRight(a, ne, he) || expanded
		}

		for a := ali; a != nil; a = a.Right {
			ns, ne, hs, he = neighbourBounds(a, nStart, nEnd, hStart, hEnd)
			expanded = s.expandLeft(a, ns, ne, hs, he, 0, gapPenalty, maxSkip) || expanded
			expanded = s.expandRight(a, ns, ne, hs, he, 0, gapPenalty, maxSkip) || expanded
		}

		for a := ali; a != nil; a = a.Right {
			ns, ne, hs, he = neighbourBounds(a, nStart, nEnd, hStart, hEnd)
			expanded = s.expandLeft(a, ns, ne, hs, he, 1, gapPenalty, maxSkip) || expanded
			expanded = s.expandRight(a, ns, ne, hs, he, 1, gapPenalty, maxSkip) || expanded
		}

		ali = Leftmost(ali)
	}
	return ali
}
