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

package cmd

import (
	"bytes"
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/fuzzyfind/fuzzyfind/align"
	"github.com/shenwei356/fuzzyfind/fuzzyfind/util"
)

// Target is a haystack sequence.
type Target struct {
	ID  []byte
	Seq []byte // lower case
}

// readTargets reads all sequences of a FASTA/Q file, in lower case.
func readTargets(file string) ([]*Target, error) {
	fastxReader, err := fastx.NewReader(nil, file, "")
	if err != nil {
		return nil, errors.Wrapf(err, "reading target file: %s", file)
	}
	defer fastxReader.Close()

	targets := make([]*Target, 0, 8)
	var record *fastx.Record
	for {
		record, err = fastxReader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "reading target file: %s", file)
		}

		targets = append(targets, &Target{
			ID:  append([]byte(nil), record.ID...),
			Seq: bytes.ToLower(record.Seq.Seq),
		})
	}
	return targets, nil
}

// AlignerOptions contains the options of an Aligner.
type AlignerOptions struct {
	Stringency     align.Stringency
	BothStrands    bool // align the reverse complement too, keep the better strand
	MinScore       int  // hits with lower scores are discarded
	ExtendThroughN bool
	MaxBlocks      int
	MoreColumns    bool // also render the alignment text

	// Minimum haystack gap reported as an intron ("N") in CIGAR,
	// used for the cdna stringency only.
	IntronMinLen int

	// Maximum number of needles whose hits are kept for duplicated
	// queries, the oldest ones are dropped first. 0 for no caching.
	CacheSize int
}

// DefaultAlignerOptions is the default AlignerOptions.
var DefaultAlignerOptions = AlignerOptions{
	Stringency:   align.Cdna,
	BothStrands:  true,
	MinScore:     20,
	IntronMinLen: 32,
	CacheSize:    100000,
}

// Hit is the alignment of a needle against one target.
type Hit struct {
	Target *Target
	RC     bool
	Score  int
	Stats  *align.AliStats
	CIGAR  string
	Text   *align.AliText // only with MoreColumns
}

// Aligner aligns needles against a list of targets. It is safe for concurrent use.
type Aligner struct {
	opt     *AlignerOptions
	finder  *align.Finder
	targets []*Target

	cache *hitCache
}

// NewAligner creates an Aligner.
func NewAligner(targets []*Target, opt *AlignerOptions) (*Aligner, error) {
	if opt == nil {
		_opt := DefaultAlignerOptions
		opt = &_opt
	}
	if !opt.Stringency.Valid() {
		return nil, errors.Wrapf(align.ErrInvalidStringency, "%d", int(opt.Stringency))
	}
	if opt.MaxBlocks < 0 {
		return nil, errors.Errorf("invalid maximum number of blocks: %d", opt.MaxBlocks)
	}
	if opt.CacheSize < 0 {
		return nil, errors.Errorf("invalid cache size: %d", opt.CacheSize)
	}

	return &Aligner{
		opt: opt,
		finder: align.NewFinder(&align.Options{
			ExtendThroughN: opt.ExtendThroughN,
			MaxBlocks:      opt.MaxBlocks,
		}),
		targets: targets,
		cache:   newHitCache(opt.CacheSize),
	}, nil
}

// Align aligns a lower-case needle against all targets. Hits are sorted
// in descending order of score, ties in the order of targets.
// The second returned value is true if the hits came from the cache.
func (a *Aligner) Align(needle []byte) ([]*Hit, bool, error) {
	if hits, ok := a.cache.get(needle); ok {
		return hits, true, nil
	}

	hits := make([]*Hit, 0, len(a.targets))
	for _, t := range a.targets {
		hit, err := a.alignOne(needle, t)
		if err != nil {
			return nil, false, errors.Wrapf(err, "target %s", t.ID)
		}
		if hit != nil {
			hits = append(hits, hit)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if len(hits) > 0 {
		a.cache.add(needle, hits)
	}
	return hits, false, nil
}

func (a *Aligner) alignOne(needle []byte, t *Target) (*Hit, error) {
	var r *align.Result
	var err error
	if a.opt.BothStrands {
		r, err = a.finder.FindAndScore(needle, t.Seq, a.opt.Stringency)
		if err != nil || r == nil {
			return nil, err
		}
	} else {
		var ali *align.Ali
		ali, err = a.finder.Find(needle, t.Seq, a.opt.Stringency)
		if err != nil || ali == nil {
			return nil, err
		}
		r = &align.Result{
			Ali:    ali,
			Score:  align.Score(ali, needle, t.Seq, a.opt.Stringency),
			Needle: needle,
		}
	}
	if r.Score < a.opt.MinScore {
		return nil, nil
	}

	var intronMin int
	if a.opt.Stringency == align.Cdna {
		intronMin = a.opt.IntronMinLen
	}
	hit := &Hit{
		Target: t,
		RC:     r.RC,
		Score:  r.Score,
		Stats:  align.Stats(r.Ali, r.Needle, t.Seq),
		CIGAR:  align.CIGAR(r.Ali, intronMin),
	}
	if a.opt.MoreColumns {
		hit.Text = align.Format(r.Ali, r.Needle, t.Seq, nil)
	}
	return hit, nil
}

// CacheSize returns the number of needles with cached hits.
func (a *Aligner) CacheSize() int {
	return a.cache.len()
}

// QueryRange returns the 1-based needle span of a hit on the forward strand.
func (h *Hit) QueryRange(qlen int) (int, int) {
	if h.RC {
		return qlen - h.Stats.QEnd + 1, qlen - h.Stats.QStart
	}
	return h.Stats.QStart + 1, h.Stats.QEnd
}

// hitCache stores hits of at most max distinct needles, keyed by the hash
// of sequences. When full, the oldest needle is dropped.
type hitCache struct {
	mu sync.RWMutex
	m  map[uint64][]*cacheEntry

	max  int
	ring []*cacheEntry // in the order of insertion
	next int           // the oldest entry when ring is full
}

type cacheEntry struct {
	hash uint64
	seq  []byte
	hits []*Hit
}

func newHitCache(size int) *hitCache {
	return &hitCache{
		m:    make(map[uint64][]*cacheEntry, min(size, 1024)),
		max:  size,
		ring: make([]*cacheEntry, 0, min(size, 1024)),
	}
}

func (c *hitCache) get(seq []byte) ([]*Hit, bool) {
	if c.max <= 0 {
		return nil, false
	}
	h := util.HashSeq(seq)

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.m[h] {
		if bytes.Equal(e.seq, seq) {
			return e.hits, true
		}
	}
	return nil, false
}

func (c *hitCache) add(seq []byte, hits []*Hit) {
	if c.max <= 0 {
		return
	}
	h := util.HashSeq(seq)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.m[h] {
		if bytes.Equal(e.seq, seq) {
			return
		}
	}
	e := &cacheEntry{hash: h, seq: append([]byte(nil), seq...), hits: hits}
	c.m[h] = append(c.m[h], e)

	if len(c.ring) < c.max {
		c.ring = append(c.ring, e)
		return
	}
	c.remove(c.ring[c.next])
	c.ring[c.next] = e
	c.next = (c.next + 1) % c.max
}

// remove deletes e from the map, c.mu must be held.
func (c *hitCache) remove(e *cacheEntry) {
	es := c.m[e.hash]
	for i, _e := range es {
		if _e == e {
			es = append(es[:i], es[i+1:]...)
			break
		}
	}
	if len(es) == 0 {
		delete(c.m, e.hash)
	} else {
		c.m[e.hash] = es
	}
}

func (c *hitCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ring)
}
