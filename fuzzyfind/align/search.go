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

// probability thresholds of the first level of tiles
var tileProbMult = [...]float64{
	Exact: 0.0001,
	Cdna:  0.001,
	Tight: 0.001,
	Loose: 0.5,
}

// search holds the state of one call of the finder.
type search struct {
	needle, hay []byte
	stringency  Stringency

	extendThroughN bool

	mem *arena

	freq            [4]float64 // base frequencies of the haystack range
	checkGoodEnough bool       // reject a first level matching by chance
}

// tilesBetween picks improbable tiles across needle[ns:ne], collects their
// exact hits in hay[hs:he] and weaves them into the best chain.
func (s *search) tilesBetween(ns, ne, hs, he int, probMax float64, level int) *Ali {
	possibleTiles := he - hs - nextPowerOfFour(ne-ns)
	if possibleTiles < 1 {
		possibleTiles = 1
	}
	tileProbOne := probMax / float64(possibleTiles)

	hits := make([]*Ali, 0, 64)
	var numTiles int
	from := ns
	for {
		ts, te, _, ok := findGoodOligo(s.needle, from, ne, tileProbOne, &s.freq)
		if !ok {
			break
		}
		hits = s.tileHits(hits, ts, te, hs, he)
		from = te
		numTiles++
	}
	if len(hits) == 0 {
		return nil
	}

	for _, a := range hits {
		s.expandExactLeft(a, ns, hs)
		s.expandExactRight(a, ne, he)
	}

	best := s.weave(hits)
	if level == 1 && s.checkGoodEnough {
		if s.chanceProb(best, hs, he, numTiles) > 0.1 {
			return nil
		}
		s.checkGoodEnough = false
	}
	return best
}

// chanceProb estimates how likely the blocks would be found in random
// sequence when numTiles tiles are searched in hay[hs:he].
func (s *search) chanceProb(ali *Ali, hs, he, numTiles int) float64 {
	allPossibles := float64((he - hs) * numTiles)
	prob := 1.0
	var p float64
	for ; ali != nil; ali = ali.Right {
		p = oligoProb(s.needle[ali.NStart:ali.NEnd], &s.freq) * allPossibles
		if p < 1 {
			prob *= p
		}
	}
	return prob
}

// recursiveWeave finds a chain of tiles, then fills each gap of at least
// five bases on both sequences by searching it again with a looser threshold.
func (s *search) recursiveWeave(ns, ne, hs, he int, probMax float64, level int) *Ali {
	aliList := s.tilesBetween(ns, ne, hs, he, probMax, level)
	if aliList == nil {
		return nil
	}

	var left *Ali
	right := aliList
	var lne, lhe, rns, rhs int
	for {
		if left != nil {
			lne, lhe = left.NEnd, left.HEnd
		} else {
			lne, lhe = ns, hs
		}
		if right != nil {
			rns, rhs = right.NStart, right.HStart
		} else {
			rns, rhs = ne, he
		}

		if rns-lne >= 5 && rhs-lhe >= 5 {
			newLeft := s.recursiveWeave(lne, rns, lhe, rhs, probMax*2, level+1)
			if newLeft != nil {
				newRight := Rightmost(newLeft)
				if left != nil {
					left.Right = newLeft
					newLeft.Left = left
				} else {
					aliList = newLeft
				}
				if right != nil {
					right.Left = newRight
					newRight.Right = right
				}
			}
		}

		if right == nil {
			break
		}
		left = right
		right = right.Right
	}
	return aliList
}

// wovenTiles returns the skeleton of exact blocks between needle[ns:ne]
// and hay[hs:he].
func (s *search) wovenTiles(ns, ne, hs, he int) *Ali {
	if ne-ns < 2 || he-hs < 2 {
		return nil
	}
	s.freq = freqTable(s.hay[hs:he])
	s.checkGoodEnough = s.stringency == Tight || s.stringency == Cdna
	return s.recursiveWeave(ns, ne, hs, he, tileProbMult[s.stringency], 1)
}
