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

// MergeNeedleAlis removes overlaps in the needle from a chain sorted by
// NStart. A block contained in its left neighbour is dropped, a partially
// overlapping one is clipped, and blocks abutting in both sequences are
// joined. It returns the head of the chain.
func MergeNeedleAlis(ali *Ali) *Ali {
	if ali == nil {
		return nil
	}
	var left, a *Ali
	right := ali
	var overlap int
	for {
		left = a
		a = right
		if a == nil {
			break
		}
		right = a.Right

		if left == nil {
			continue
		}
		overlap = left.NEnd - a.NStart
		if overlap > 0 {
			if left.NStart <= a.NStart && left.NEnd >= a.NEnd {
				left.Right = right
				if right != nil {
					right.Left = left
				}
				a = left
			} else {
				a.HStart += overlap
				a.NStart += overlap
			}
		} else if overlap == 0 && left.HEnd == a.HStart {
			left.Right = right
			if right != nil {
				right.Left = left
			}
			left.NEnd = a.NEnd
			left.HEnd = a.HEnd
			a = left
		}
	}
	return ali
}

// MergeHayOverlaps turns an overlap in the haystack between blocks that do
// not overlap in the needle into a needle gap, by moving the start of the
// later block.
func MergeHayOverlaps(ali *Ali) *Ali {
	if ali == nil {
		return nil
	}
	var nOverlap, hOverlap int
	for left, a := ali, ali.Right; a != nil; left, a = a, a.Right {
		nOverlap = left.NEnd - a.NStart
		hOverlap = left.HEnd - a.HStart
		if hOverlap > 0 && hOverlap < a.Len() && nOverlap <= 0 {
			a.HStart += hOverlap
			a.NStart += hOverlap
		}
	}
	return ali
}

// RemoveEmptyAlis unlinks blocks that are empty in the needle or the
// haystack. It returns the new head, nil when nothing is left.
func RemoveEmptyAlis(ali *Ali) *Ali {
	a := Leftmost(ali)
	for a != nil && a.empty() {
		a = a.Right
	}
	if a == nil {
		return nil
	}
	a.Left = nil

	head, left := a, a
	var right *Ali
	for a = a.Right; a != nil; a = right {
		right = a.Right
		if a.empty() {
			left.Right = right
			if right != nil {
				right.Left = left
			}
			continue
		}
		left = a
	}
	return head
}

// reconsiderAlignedGaps joins two blocks separated by gaps of the same size
// in both sequences when the bases in between score better than the cDNA
// gap penalty. The left block is emptied and absorbed by the right one.
func (s *search) reconsiderAlignedGaps(ali *Ali) *Ali {
	if ali == nil {
		return nil
	}
	var gap, gapScore, matchScore int
	for left, a := ali, ali.Right; a != nil; left, a = a, a.Right {
		gap = a.NStart - left.NEnd
		if gap != a.HStart-left.HEnd {
			continue
		}
		gapScore = -CdnaGapPenalty(a.HStart-left.HEnd, gap)
		matchScore = 0
		if gap > 0 {
			matchScore = ScoreMatch(s.needle[left.NEnd:a.NStart], s.hay[left.HEnd:a.HStart])
		}
		if matchScore > gapScore {
			left.HEnd = left.HStart
			a.HStart = left.HStart
			left.NEnd = left.NStart
			a.NStart = left.NStart
		}
	}
	return ali
}

// trimAlis trims mismatching bases off both ends of every block.
func (s *search) trimAlis(ali *Ali) *Ali {
	for a := ali; a != nil; a = a.Right {
		for a.NStart < a.NEnd && s.needle[a.NStart] != s.hay[a.HStart] {
			a.NStart++
			a.HStart++
		}
		for a.NEnd > a.NStart && s.needle[a.NEnd-1] != s.hay[a.HEnd-1] {
			a.NEnd--
			a.HEnd--
		}
	}
	return ali
}

// intronScore rates how close the ends of a haystack gap are to the splice
// consensus GT..AG, or CT..AC on the other strand.
func intronScore(a, b, y, z byte) int {
	var score, revScore int
	if a == 'g' {
		score++
	}
	if b == 't' {
		score++
	}
	if y == 'a' {
		score++
	}
	if z == 'g' {
		score++
	}

	if a == 'c' {
		revScore++
	}
	if b == 't' {
		revScore++
	}
	if y == 'a' {
		revScore++
	}
	if z == 'c' {
		revScore++
	}
	return max(score, revScore)
}

// slideIntron moves the gap between two blocks, as far as both flanks stay
// identical, to where its ends look most like an intron. It returns the
// distance the gap was moved.
func slideIntron(left, right *Ali, needle, hay []byte) int {
	nLeft, hLeft := left.NEnd, left.HEnd
	nRight, hRight := right.NStart, right.HStart
	if hRight-hLeft < 4 { // too short for an intron
		return 0
	}
	if nRight-nLeft > 2 { // too big a gap in the needle
		return 0
	}

	var nl, hl, nr, hr byte
	for nLeft > left.NStart {
		nl, hl = needle[nLeft-1], hay[hLeft-1]
		nr, hr = needle[nRight-1], hay[hRight-1]
		if !(nl == 'n' && nr == 'n') { // N's in the needle slide freely
			if nl != hl || nr != hr || hl != hr {
				break
			}
		}
		nLeft--
		hLeft--
		nRight--
		hRight--
	}

	bestLeft := -1
	bestScore := MinScore
	var score int
	for nRight < right.NEnd {
		score = intronScore(hay[hLeft], hay[hLeft+1], hay[hRight-2], hay[hRight-1])
		if score > bestScore {
			bestScore = score
			bestLeft = nLeft
		}
		nl, hl = needle[nLeft], hay[hLeft]
		if nl != 'n' && nl != hl {
			break
		}
		nr, hr = needle[nRight], hay[hRight]
		if nr != 'n' && nr != hr {
			break
		}
		if hl != hr {
			break
		}
		nLeft++
		hLeft++
		nRight++
		hRight++
	}
	if bestLeft < 0 {
		return 0
	}
	offset := bestLeft - left.NEnd
	if offset == 0 {
		return 0
	}
	left.NEnd += offset
	left.HEnd += offset
	right.NStart += offset
	right.HStart += offset
	return offset
}

// SlideIntrons shifts every gap between blocks to best match the splice
// consensus. Blocks may end up empty, use RemoveEmptyAlis afterwards.
func SlideIntrons(ali *Ali, needle, hay []byte) {
	if ali == nil {
		return
	}
	for left := ali; left.Right != nil; left = left.Right {
		slideIntron(left, left.Right, needle, hay)
	}
}

// IntronOrientation guesses the transcription strand from the gaps that
// look like introns, that is, no needle gap and at least 32 bases skipped
// in the haystack. It returns 1 for GT..AG, -1 for CT..AC, and 0 when
// undecided.
func IntronOrientation(ali *Ali, needle, hay []byte) int {
	var orientation int
	var hs, he int
	for left := Leftmost(ali); left != nil && left.Right != nil; left = left.Right {
		right := left.Right
		if right.NStart != left.NEnd {
			continue
		}
		hs, he = left.HEnd, right.HStart
		if he-hs < 32 {
			continue
		}
		if hay[hs] == 'g' && hay[hs+1] == 't' && hay[he-2] == 'a' && hay[he-1] == 'g' {
			orientation++
		} else if hay[hs] == 'c' && hay[hs+1] == 't' && hay[he-2] == 'a' && hay[he-1] == 'c' {
			orientation--
		}
	}
	switch {
	case orientation > 0:
		return 1
	case orientation < 0:
		return -1
	}
	return 0
}

// countGoodEnds sets StartGood and EndGood of every block.
func countGoodEnds(ali *Ali, needle, hay []byte) {
	var i, size int
	for a := Leftmost(ali); a != nil; a = a.Right {
		size = a.Len()
		for i = 0; i < size; i++ {
			if needle[a.NStart+i] != hay[a.HStart+i] {
				break
			}
		}
		a.StartGood = i
		for i = 0; i < size; i++ {
			if needle[a.NEnd-1-i] != hay[a.HEnd-1-i] {
				break
			}
		}
		a.EndGood = i
	}
}
