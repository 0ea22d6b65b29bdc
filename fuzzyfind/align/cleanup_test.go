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
)

func TestMergeNeedleAlis(t *testing.T) {
	ali := link([]*Ali{
		{NStart: 0, NEnd: 10, HStart: 0, HEnd: 10},
		{NStart: 5, NEnd: 8, HStart: 5, HEnd: 8},    // contained
		{NStart: 8, NEnd: 15, HStart: 8, HEnd: 15},  // overlapping
		{NStart: 15, NEnd: 20, HStart: 15, HEnd: 20}, // abutting
	})
	ali = MergeNeedleAlis(ali)
	checkChain(t, ali)
	blocks := Blocks(ali)
	if len(blocks) != 2 {
		t.Errorf("%d blocks, expected 2: %v", len(blocks), blocks)
		return
	}
	if blocks[1].NStart != 10 || blocks[1].NEnd != 20 || blocks[1].HStart != 10 || blocks[1].HEnd != 20 {
		t.Errorf("unexpected second block: %s", blocks[1])
	}

	// the clipped block now abuts the first one
	ali = MergeNeedleAlis(ali)
	if Count(ali) != 1 || ali.NEnd != 20 || ali.HEnd != 20 {
		t.Errorf("unexpected merge: %v", Blocks(ali))
	}
	again := MergeNeedleAlis(ali)
	if !Equal(again, ali) {
		t.Errorf("merging is not stable")
	}

	if MergeNeedleAlis(nil) != nil {
		t.Errorf("merging nil should return nil")
	}
}

func TestMergeHayOverlaps(t *testing.T) {
	ali := link([]*Ali{
		{NStart: 0, NEnd: 10, HStart: 0, HEnd: 10},
		{NStart: 12, NEnd: 22, HStart: 8, HEnd: 18},
	})
	MergeHayOverlaps(ali)
	b := ali.Right
	if b.NStart != 14 || b.HStart != 10 || b.NEnd != 22 || b.HEnd != 18 {
		t.Errorf("unexpected block: %s", b)
	}

	// overlaps in the needle are left alone
	ali = link([]*Ali{
		{NStart: 0, NEnd: 10, HStart: 0, HEnd: 10},
		{NStart: 9, NEnd: 22, HStart: 8, HEnd: 21},
	})
	MergeHayOverlaps(ali)
	if ali.Right.NStart != 9 {
		t.Errorf("unexpected block: %s", ali.Right)
	}
}

func TestRemoveEmptyAlis(t *testing.T) {
	ali := link([]*Ali{
		{NStart: 0, NEnd: 0, HStart: 0, HEnd: 0},
		{NStart: 3, NEnd: 3, HStart: 3, HEnd: 9},
	})
	if RemoveEmptyAlis(ali) != nil {
		t.Errorf("a chain of empty blocks should become nil")
	}

	x := &Ali{NStart: 1, NEnd: 3, HStart: 1, HEnd: 3}
	y := &Ali{NStart: 6, NEnd: 9, HStart: 6, HEnd: 9}
	ali = link([]*Ali{
		{NStart: 0, NEnd: 0, HStart: 0, HEnd: 0},
		x,
		{NStart: 4, NEnd: 4, HStart: 4, HEnd: 4},
		y,
		{NStart: 9, NEnd: 9, HStart: 9, HEnd: 9},
	})
	ali = RemoveEmptyAlis(ali.Right.Right)
	checkChain(t, ali)
	if ali != x || x.Left != nil || x.Right != y || y.Right != nil {
		t.Errorf("unexpected chain: %v", Blocks(ali))
	}
}

func TestReconsiderAlignedGaps(t *testing.T) {
	s := newTestSearch(t, "acgtaacgt", "acgttacgt", Cdna)
	ali := link([]*Ali{
		s.mem.newAli(0, 4, 0, 4),
		s.mem.newAli(5, 9, 5, 9),
	})
	ali = RemoveEmptyAlis(s.reconsiderAlignedGaps(ali))
	if Count(ali) != 1 || ali.NStart != 0 || ali.NEnd != 9 || ali.HStart != 0 || ali.HEnd != 9 {
		t.Errorf("unexpected chain: %v", Blocks(ali))
	}

	// different gap sizes are kept
	s = newTestSearch(t, "acgtacgt", "acgttacgt", Cdna)
	ali = link([]*Ali{
		s.mem.newAli(0, 4, 0, 4),
		s.mem.newAli(4, 8, 5, 9),
	})
	if ali = RemoveEmptyAlis(s.reconsiderAlignedGaps(ali)); Count(ali) != 2 {
		t.Errorf("unexpected chain: %v", Blocks(ali))
	}
}

func TestTrimAlis(t *testing.T) {
	s := newTestSearch(t, "tacgtt", "gacgta", Loose)
	ali := s.trimAlis(s.mem.newAli(0, 6, 0, 6))
	if ali.NStart != 1 || ali.NEnd != 5 || ali.HStart != 1 || ali.HEnd != 5 {
		t.Errorf("unexpected trimming: %s", ali)
	}

	ali = s.trimAlis(s.mem.newAli(0, 1, 0, 1))
	if !ali.empty() {
		t.Errorf("a mismatching base should be trimmed to empty: %s", ali)
	}
}

func TestSlideIntrons(t *testing.T) {
	exon1, intron, exon2 := "tttcccag", "gtccccctttttag", "gcaatta"
	hay := []byte(exon1 + intron + exon2)
	needle := []byte(exon1 + exon2)

	// the gap starts two bases early
	left := &Ali{NStart: 0, NEnd: 6, HStart: 0, HEnd: 6}
	right := &Ali{NStart: 6, NEnd: 15, HStart: 20, HEnd: 29}
	ali := link([]*Ali{left, right})
	before := Score(ali, needle, hay, Cdna)

	SlideIntrons(ali, needle, hay)
	if left.NEnd != 8 || left.HEnd != 8 || right.NStart != 8 || right.HStart != 22 {
		t.Errorf("unexpected sliding: %s, %s", left, right)
	}
	if after := Score(ali, needle, hay, Cdna); after != before {
		t.Errorf("sliding changed the score: %d -> %d", before, after)
	}

	// already at the consensus
	if offset := slideIntron(left, right, needle, hay); offset != 0 {
		t.Errorf("unexpected offset: %d", offset)
	}
}

func TestIntronOrientation(t *testing.T) {
	var intron []byte
	for i := 0; i < 30; i++ {
		intron = append(intron, 'c')
	}
	needle := []byte("aaaaaaaa")
	chain := func() *Ali {
		return link([]*Ali{
			{NStart: 0, NEnd: 4, HStart: 0, HEnd: 4},
			{NStart: 4, NEnd: 8, HStart: 38, HEnd: 42},
		})
	}

	hay := []byte("aaaagt" + string(intron) + "agaaaa")
	if o := IntronOrientation(chain(), needle, hay); o != 1 {
		t.Errorf("orientation of GT..AG: %d", o)
	}
	hay = []byte("aaaact" + string(intron) + "acaaaa")
	if o := IntronOrientation(chain(), needle, hay); o != -1 {
		t.Errorf("orientation of CT..AC: %d", o)
	}
	hay = []byte("aaaatt" + string(intron) + "ttaaaa")
	if o := IntronOrientation(chain(), needle, hay); o != 0 {
		t.Errorf("orientation of unknown intron: %d", o)
	}
}

func TestCountGoodEnds(t *testing.T) {
	needle, hay := []byte("acgtacgt"), []byte("acgaacgt")
	ali := &Ali{NStart: 0, NEnd: 8, HStart: 0, HEnd: 8}
	countGoodEnds(ali, needle, hay)
	if ali.StartGood != 3 || ali.EndGood != 4 {
		t.Errorf("unexpected good ends: %d, %d", ali.StartGood, ali.EndGood)
	}
}
