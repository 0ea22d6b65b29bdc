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
	"strconv"
)

// FormatOptions controls how haystack gaps are shown by Format.
type FormatOptions struct {
	// Haystack gaps longer than this are shown by their two flanks
	// only, joined with "...". 0 for showing all bases.
	MaxHayGap int
	// Number of bases kept on each side of a shortened haystack gap.
	Flank int
}

// DefaultFormatOptions is the default FormatOptions.
var DefaultFormatOptions = FormatOptions{
	MaxHayGap: 50,
	Flank:     10,
}

// AliText is the text view of an alignment.
//
//	acgt-ac--ttag
//	|||| ||  | ||
//	acgtcacgatgag
type AliText struct {
	Query  []byte // needle row
	Match  []byte // "|" for match, " " for mismatch and gap
	Target []byte // haystack row
}

func (t *AliText) add(q, m, h byte) {
	t.Query = append(t.Query, q)
	t.Match = append(t.Match, m)
	t.Target = append(t.Target, h)
}

// Format renders a chain as query, match and target rows.
func Format(ali *Ali, needle, hay []byte, opt *FormatOptions) *AliText {
	if opt == nil {
		opt = &DefaultFormatOptions
	}
	t := &AliText{
		Query:  make([]byte, 0, 256),
		Match:  make([]byte, 0, 256),
		Target: make([]byte, 0, 256),
	}
	var nGap, hGap, i int
	var q, h, m byte
	for a := Leftmost(ali); a != nil; a = a.Right {
		for i = 0; i < a.Len(); i++ {
			q, h = needle[a.NStart+i], hay[a.HStart+i]
			m = ' '
			if q == h {
				m = '|'
			}
			t.add(q, m, h)
		}

		if a.Right == nil {
			break
		}
		nGap = a.Right.NStart - a.NEnd
		hGap = a.Right.HStart - a.HEnd
		for i = 0; i < nGap; i++ {
			t.add(needle[a.NEnd+i], ' ', '-')
		}
		if hGap <= 0 {
			continue
		}
		if opt.MaxHayGap > 0 && hGap > opt.MaxHayGap && hGap > 2*opt.Flank {
			for i = 0; i < opt.Flank; i++ {
				t.add('-', ' ', hay[a.HEnd+i])
			}
			for i = 0; i < 3; i++ {
				t.add('.', ' ', '.')
			}
			for i = hGap - opt.Flank; i < hGap; i++ {
				t.add('-', ' ', hay[a.HEnd+i])
			}
			continue
		}
		for i = 0; i < hGap; i++ {
			t.add('-', ' ', hay[a.HEnd+i])
		}
	}
	return t
}

// CIGAR returns the CIGAR string of a chain, with the needle as the query.
// Haystack gaps of at least intronMin bases with no needle gap are written
// as skipped regions (N), other gaps as insertions (I) and deletions (D).
// Backward jumps are left out.
func CIGAR(ali *Ali, intronMin int) string {
	buf := make([]byte, 0, 64)
	var op byte
	var n int

	// consecutive operations of the same type are merged
	push := func(_op byte, _n int) {
		if _n <= 0 {
			return
		}
		if _op == op {
			n += _n
			return
		}
		if n > 0 {
			buf = strconv.AppendInt(buf, int64(n), 10)
			buf = append(buf, op)
		}
		op, n = _op, _n
	}

	var nGap, hGap int
	for a := Leftmost(ali); a != nil; a = a.Right {
		push('M', a.Len())
		if a.Right == nil {
			break
		}
		nGap = a.Right.NStart - a.NEnd
		hGap = a.Right.HStart - a.HEnd
		push('I', nGap)
		if nGap <= 0 && intronMin > 0 && hGap >= intronMin {
			push('N', hGap)
		} else {
			push('D', hGap)
		}
	}
	if n > 0 {
		buf = strconv.AppendInt(buf, int64(n), 10)
		buf = append(buf, op)
	}
	return string(buf)
}

// AliStats summarises a chain the way PSL records do.
type AliStats struct {
	Blocks int

	QStart, QEnd int // needle span, 0-based half-open
	TStart, TEnd int // haystack span, 0-based half-open

	Matches    int
	Mismatches int
	NCount     int // aligned positions with an N in either sequence

	QGaps, QGapBases int // inserts in the needle
	TGaps, TGapBases int // inserts in the haystack

	PIdent float64 // percentage of matches among aligned positions
}

// Stats computes the statistics of a chain. It returns nil for an empty chain.
func Stats(ali *Ali, needle, hay []byte) *AliStats {
	first := Leftmost(ali)
	if first == nil {
		return nil
	}
	last := Rightmost(first)
	st := &AliStats{
		QStart: first.NStart, QEnd: last.NEnd,
		TStart: first.HStart, TEnd: last.HEnd,
	}
	var q, h byte
	var gap int
	for a := first; a != nil; a = a.Right {
		st.Blocks++
		for i := 0; i < a.Len(); i++ {
			q, h = needle[a.NStart+i], hay[a.HStart+i]
			switch {
			case q == 'n' || h == 'n':
				st.NCount++
			case q == h:
				st.Matches++
			default:
				st.Mismatches++
			}
		}
		if a.Right == nil {
			break
		}
		if gap = a.Right.NStart - a.NEnd; gap > 0 {
			st.QGaps++
			st.QGapBases += gap
		}
		if gap = a.Right.HStart - a.HEnd; gap > 0 {
			st.TGaps++
			st.TGapBases += gap
		}
	}
	if aligned := st.Matches + st.Mismatches + st.NCount; aligned > 0 {
		st.PIdent = float64(st.Matches) / float64(aligned) * 100
	}
	return st
}
