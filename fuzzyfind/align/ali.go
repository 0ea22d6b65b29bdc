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
)

// Ali is one gapless aligned block between a needle and a haystack.
// Blocks are chained by Left and Right in ascending needle order.
//
// The coordinates are 0-based, half-open offsets into the needle and the
// haystack given to the finder, the block never holds a copy of the bases.
type Ali struct {
	Left  *Ali
	Right *Ali

	NStart, NEnd int // needle range
	HStart, HEnd int // haystack range

	StartGood int // number of matching bases at the start of the block
	EndGood   int // number of matching bases at the end of the block
}

func (a *Ali) String() string {
	return fmt.Sprintf("n[%d, %d) vs h[%d, %d)", a.NStart, a.NEnd, a.HStart, a.HEnd)
}

// Len returns the length of the block in the needle.
func (a *Ali) Len() int {
	return a.NEnd - a.NStart
}

// Diagonal returns HStart - NStart.
func (a *Ali) Diagonal() int {
	return a.HStart - a.NStart
}

func (a *Ali) empty() bool {
	return a.NEnd <= a.NStart || a.HEnd <= a.HStart
}

// Leftmost returns the first block of the chain containing ali.
func Leftmost(ali *Ali) *Ali {
	if ali == nil {
		return nil
	}
	for ali.Left != nil {
		ali = ali.Left
	}
	return ali
}

// Rightmost returns the last block of the chain containing ali.
func Rightmost(ali *Ali) *Ali {
	if ali == nil {
		return nil
	}
	for ali.Right != nil {
		ali = ali.Right
	}
	return ali
}

// Count returns the number of blocks in the chain.
func Count(ali *Ali) int {
	var n int
	for a := Leftmost(ali); a != nil; a = a.Right {
		n++
	}
	return n
}

// Blocks returns the blocks of a chain as a slice, from left to right.
func Blocks(ali *Ali) []*Ali {
	blocks := make([]*Ali, 0, 8)
	for a := Leftmost(ali); a != nil; a = a.Right {
		blocks = append(blocks, a)
	}
	return blocks
}

// FreeAli releases a chain returned by a finder. The links are cleared so no
// block keeps its neighbours alive.
func FreeAli(ali *Ali) {
	a := Leftmost(ali)
	var next *Ali
	for a != nil {
		next = a.Right
		a.Left, a.Right = nil, nil
		a = next
	}
}

// unlink removes el from the chain whose head is *head.
func unlink(head **Ali, el *Ali) {
	left, right := el.Left, el.Right
	if el == *head {
		*head = right
	}
	if right != nil {
		right.Left = left
	}
	if left != nil {
		left.Right = right
	}
	el.Left, el.Right = nil, nil
}

// insertLeft links el immediately to the left of ali.
func insertLeft(ali, el *Ali) {
	el.Right = ali
	el.Left = ali.Left
	if ali.Left != nil {
		ali.Left.Right = el
	}
	ali.Left = el
}

// insertRight links el immediately to the right of ali.
func insertRight(ali, el *Ali) {
	el.Left = ali
	el.Right = ali.Right
	if ali.Right != nil {
		ali.Right.Left = el
	}
	ali.Right = el
}

// link chains the blocks in slice order and returns the head.
func link(blocks []*Ali) *Ali {
	if len(blocks) == 0 {
		return nil
	}
	var prev *Ali
	for _, a := range blocks {
		a.Left = prev
		if prev != nil {
			prev.Right = a
		}
		prev = a
	}
	prev.Right = nil
	return blocks[0]
}

// copyChain deep-copies a chain into one freshly allocated backing array,
// so the result does not share memory with the arena.
func copyChain(ali *Ali) *Ali {
	n := Count(ali)
	if n == 0 {
		return nil
	}
	nodes := make([]Ali, n)
	i := 0
	for a := Leftmost(ali); a != nil; a = a.Right {
		nodes[i] = *a
		nodes[i].Left, nodes[i].Right = nil, nil
		if i > 0 {
			nodes[i].Left = &nodes[i-1]
			nodes[i-1].Right = &nodes[i]
		}
		i++
	}
	return &nodes[0]
}

// Equal tells whether two chains have the same blocks.
func Equal(a, b *Ali) bool {
	a, b = Leftmost(a), Leftmost(b)
	for a != nil && b != nil {
		if a.NStart != b.NStart || a.NEnd != b.NEnd ||
			a.HStart != b.HStart || a.HEnd != b.HEnd {
			return false
		}
		a, b = a.Right, b.Right
	}
	return a == nil && b == nil
}
