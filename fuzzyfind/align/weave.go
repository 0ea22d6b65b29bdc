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
	"sort"

	"github.com/twotwotwo/sorts"
)

// maxProtoGenes is the number of candidates kept before pairwise merging.
const maxProtoGenes = 200

// protoGene is a candidate chain of hits lying on nearly the same diagonal.
type protoGene struct {
	hits []*Ali

	nStart, nEnd int
	hStart, hEnd int

	score int
	order int // creation order
}

// hitsHayFirst sorts blocks by haystack start, then needle start.
type hitsHayFirst []*Ali

func (h hitsHayFirst) Len() int      { return len(h) }
func (h hitsHayFirst) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h hitsHayFirst) Less(i, j int) bool {
	if h[i].HStart == h[j].HStart {
		return h[i].NStart < h[j].NStart
	}
	return h[i].HStart < h[j].HStart
}

// hitsNeedleFirst sorts blocks by needle start, then haystack start.
type hitsNeedleFirst []*Ali

func (h hitsNeedleFirst) Len() int      { return len(h) }
func (h hitsNeedleFirst) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h hitsNeedleFirst) Less(i, j int) bool {
	if h[i].NStart == h[j].NStart {
		return h[i].HStart < h[j].HStart
	}
	return h[i].NStart < h[j].NStart
}

// dedupHits removes identical neighbours from sorted hits.
func dedupHits(hits []*Ali) []*Ali {
	if len(hits) < 2 {
		return hits
	}
	j := 1
	var last *Ali
	for _, a := range hits[1:] {
		last = hits[j-1]
		if a.NStart == last.NStart && a.NEnd == last.NEnd &&
			a.HStart == last.HStart && a.HEnd == last.HEnd {
			continue
		}
		hits[j] = a
		j++
	}
	return hits[:j]
}

// lumpHits groups hits sorted by haystack position into proto-genes. The
// first free hit starts a group, and every later hit whose diagonal is within
// 2 of the previously added one joins it.
func lumpHits(hits []*Ali) []*protoGene {
	protos := make([]*protoGene, 0, 8)
	rest := hits
	var dif, lastDif int
	for len(rest) > 0 {
		first := rest[0]
		p := &protoGene{
			hits:   []*Ali{first},
			nStart: first.NStart, nEnd: first.NEnd,
			hStart: first.HStart, hEnd: first.HEnd,
			order: len(protos),
		}
		lastDif = first.Diagonal()

		remain := rest[:0]
		for _, a := range rest[1:] {
			dif = a.Diagonal()
			if lastDif-2 <= dif && dif <= lastDif+2 {
				lastDif = dif
				p.hits = append(p.hits, a)
				p.hEnd = a.HEnd
				p.nEnd = a.NEnd
				continue
			}
			remain = append(remain, a)
		}
		rest = remain

		protos = append(protos, p)
	}
	return protos
}

// canAdd tells whether b fits into a: b must not overlap any hit of a by a
// quarter of the smaller size (at least 2), neither in needle nor in haystack.
func canAdd(a, b *protoGene) bool {
	bSize := b.nEnd - b.nStart
	var aSize, maxOverlap int
	for _, pa := range a.hits {
		aSize = pa.NEnd - pa.NStart
		maxOverlap = min(aSize, bSize) / 4
		if maxOverlap < 2 {
			maxOverlap = 2
		}
		if min(b.nEnd, pa.NEnd)-max(b.nStart, pa.NStart) >= maxOverlap {
			return false
		}
		if min(b.hEnd, pa.HEnd)-max(b.hStart, pa.HStart) >= maxOverlap {
			return false
		}
	}
	return true
}

// bestMerger returns the indexes of the pair of proto-genes that go
// together best, or ok == false.
func bestMerger(protos []*protoGene, s Stringency) (int, int, bool) {
	bestScore := MinScore
	bestA, bestB := -1, -1
	isCdna := s == Cdna
	var hGap, nGap, score int
	for i, a := range protos {
		for j := i + 1; j < len(protos); j++ {
			b := protos[j]
			if !canAdd(a, b) {
				continue
			}
			hGap = b.hStart - a.hEnd
			nGap = b.nStart - a.nEnd
			if hGap < 0 {
				hGap = -8 * hGap
				if !isCdna || hGap < 32 {
					hGap = hGap * hGap
				}
			}
			if nGap < 0 {
				nGap = -8 * nGap
			}
			score = -hGap - nGap*nGap
			if score > bestScore {
				bestA, bestB = i, j
				bestScore = score
			}
		}
	}
	return bestA, bestB, bestA >= 0
}

// lumpProtoGenes merges proto-genes pairwise, best pair first, until no
// pair fits.
func lumpProtoGenes(protos []*protoGene, s Stringency) []*protoGene {
	for {
		i, j, ok := bestMerger(protos, s)
		if !ok {
			return protos
		}
		a, b := protos[i], protos[j]
		a.hits = append(a.hits, b.hits...)
		a.hStart = min(a.hStart, b.hStart)
		a.nStart = min(a.nStart, b.nStart)
		a.hEnd = max(a.hEnd, b.hEnd)
		a.nEnd = max(a.nEnd, b.nEnd)
		protos = append(protos[:j], protos[j+1:]...)
	}
}

// removeThrowbackHits empties the shorter of two needle-ordered neighbours
// when the later one starts before the earlier one in the haystack.
func removeThrowbackHits(hits []*Ali) []*Ali {
	var gotThrowback bool
	var left, right *Ali
	for i := 1; i < len(hits); i++ {
		left, right = hits[i-1], hits[i]
		if left.HStart <= right.HStart {
			continue
		}
		gotThrowback = true
		if left.Len() > right.Len() {
			right.HStart = right.HEnd
			right.NStart = right.NEnd
		} else {
			left.HStart = left.HEnd
			left.NStart = left.NEnd
		}
	}
	if !gotThrowback {
		return hits
	}
	j := 0
	for _, a := range hits {
		if a.empty() {
			continue
		}
		hits[j] = a
		j++
	}
	return hits[:j]
}

// thinProtoGenes keeps the n best-scoring proto-genes in creation order.
func (s *search) thinProtoGenes(protos []*protoGene, n int) []*protoGene {
	for _, p := range protos {
		p.score = Score(link(p.hits), s.needle, s.hay, s.stringency)
	}
	sort.SliceStable(protos, func(i, j int) bool { return protos[i].score > protos[j].score })
	protos = protos[:n]
	sort.Slice(protos, func(i, j int) bool { return protos[i].order < protos[j].order })
	return protos
}

// weave assembles the best-scoring chain out of the exact hits.
func (s *search) weave(hits []*Ali) *Ali {
	sorts.Quicksort(hitsHayFirst(hits))
	hits = dedupHits(hits)

	protos := lumpHits(hits)
	if len(protos) > maxProtoGenes {
		protos = s.thinProtoGenes(protos, maxProtoGenes)
	}

	sort.SliceStable(protos, func(i, j int) bool { return protos[i].nStart < protos[j].nStart })
	protos = lumpProtoGenes(protos, s.stringency)

	var best *protoGene
	for _, p := range protos {
		sorts.Quicksort(hitsNeedleFirst(p.hits))
		p.hits = removeThrowbackHits(p.hits)
		if len(p.hits) == 0 {
			continue
		}
		p.score = Score(link(p.hits), s.needle, s.hay, s.stringency)
		if best == nil || p.score > best.score {
			best = p
		}
	}
	if best == nil {
		return nil
	}
	return best.hits[0]
}
