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

// exactFind returns the haystack offset of the first occurrence of
// needle[ns:ne] in hay[hs:he], or -1.
func exactFind(needle, hay []byte, ns, ne, hs, he int) int {
	if ne-ns > he-hs {
		return -1
	}
	i := bytes.Index(hay[hs:he], needle[ns:ne])
	if i < 0 {
		return -1
	}
	return hs + i
}

// tileHits appends a block for every occurrence of needle[ts:te] in
// hay[hs:he], overlapping ones included, in haystack order.
func (s *search) tileHits(hits []*Ali, ts, te, hs, he int) []*Ali {
	tile := s.needle[ts:te]
	size := te - ts
	var i int
	for h := hs; he-h >= size; h++ {
		i = bytes.Index(s.hay[h:he], tile)
		if i < 0 {
			break
		}
		h += i
		hits = append(hits, s.mem.newAli(ts, te, h, h+size))
	}
	return hits
}

// expandExactLeft extends the block to the left while the bases are
// identical, staying inside needle[ns:] and hay[hs:].
func (s *search) expandExactLeft(ali *Ali, ns, hs int) {
	n, h := ali.NStart-1, ali.HStart-1
	for n >= ns && h >= hs && s.needle[n] == s.hay[h] {
		n--
		h--
	}
	ali.NStart, ali.HStart = n+1, h+1
}

// expandExactRight extends the block to the right while the bases are
// identical, staying inside needle[:ne] and hay[:he].
func (s *search) expandExactRight(ali *Ali, ne, he int) {
	n, h := ali.NEnd, ali.HEnd
	for n < ne && h < he && s.needle[n] == s.hay[h] {
		n++
		h++
	}
	ali.NEnd, ali.HEnd = n, h
}
