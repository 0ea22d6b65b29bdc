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

import "sync"

const arenaSlabSize = 256

// arena hands out blocks for one search. Everything allocated from it is
// dropped in bulk when the search returns, only the final chain is copied out.
type arena struct {
	slabs [][]Ali
	slab  int // current slab
	pos   int // next free node in the current slab

	n   int // allocated blocks
	max int // 0 for no limit
}

// arenaFull is panicked by alloc when the block cap is reached and recovered
// at the API boundary.
type arenaFull struct {
	max int
}

var poolArena = &sync.Pool{New: func() interface{} {
	return &arena{
		slabs: [][]Ali{make([]Ali, arenaSlabSize)},
	}
}}

func (m *arena) reset(max int) {
	m.slab = 0
	m.pos = 0
	m.n = 0
	m.max = max
}

func (m *arena) alloc() *Ali {
	if m.max > 0 && m.n >= m.max {
		panic(arenaFull{max: m.max})
	}
	if m.pos == len(m.slabs[m.slab]) {
		m.slab++
		if m.slab == len(m.slabs) {
			m.slabs = append(m.slabs, make([]Ali, arenaSlabSize))
		}
		m.pos = 0
	}
	el := &m.slabs[m.slab][m.pos]
	*el = Ali{}
	m.pos++
	m.n++
	return el
}

func (m *arena) newAli(nStart, nEnd, hStart, hEnd int) *Ali {
	a := m.alloc()
	a.NStart, a.NEnd = nStart, nEnd
	a.HStart, a.HEnd = hStart, hEnd
	return a
}

// release returns the arena to the pool. Stale links are cleared so the
// pooled slabs do not keep caller data reachable.
func (m *arena) release() {
	for i := 0; i <= m.slab && i < len(m.slabs); i++ {
		clear(m.slabs[i])
	}
	m.reset(0)
	poolArena.Put(m)
}
