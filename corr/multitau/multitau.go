package multitau

import (
	"errors"
	"time"

	"github.com/ke-zhang-rd/scikit-beam/core"
	"github.com/ke-zhang-rd/scikit-beam/roi"
)

// Errors returned by the correlator.
var (
	ErrNilIndexer = errors.New("multitau: nil ROI indexer")
	ErrOddBufs    = errors.New("multitau: number of buffers must be positive and even")
	ErrNoLevels   = errors.New("multitau: number of levels must be at least one")
	ErrFrameShape = errors.New("multitau: frame shape does not match ROI grid")
	ErrNoFrames   = errors.New("multitau: no frames processed")
)

// Result holds the normalized correlation and its lag structure.
type Result struct {
	// G2 has one row per populated lag channel and one column per
	// ROI (dense id order).
	G2 [][]float64
	// LagSteps gives each row's delay in frame units.
	LagSteps []int
	// Frames is the number of frames processed.
	Frames int
	// Elapsed is the cumulative time spent inside Process.
	Elapsed time.Duration
}

// Correlator streams detector frames through the multi-tau hierarchy
// and accumulates the one-time intensity correlation per ROI.
//
// It owns all buffer and accumulator state for the lifetime of a run
// and is not safe for concurrent use: frames must be processed
// sequentially, in arrival order, because every level's input is the
// exact pairing of consecutive writes to the level below.
type Correlator struct {
	ix     *roi.Indexer
	levels int
	bufs   int
	hook   TimingHook

	plane int // rows*cols, the expected frame length
	rings []*ring

	// Flat [channel][roi] accumulators: numerator <I(t)I(t+tau)> and
	// the past/future intensity normalizations. Channel index is
	// level*bufs/2 + offset. Never reset mid-run.
	g   [][]float64
	iap [][]float64
	iaf [][]float64

	// Scratch reused across frames.
	work  []float64
	meanG []float64
	meanP []float64
	meanF []float64

	frames  int
	elapsed time.Duration
}

// New creates a Correlator for the given ROI indexing. The
// configuration is validated before any accumulator state is
// allocated; an odd or non-positive buffer count is rejected with
// ErrOddBufs.
func New(ix *roi.Indexer, opts ...Option) (*Correlator, error) {
	if ix == nil {
		return nil, ErrNilIndexer
	}

	cfg := ApplyOptions(opts...)
	if cfg.Bufs <= 0 || cfg.Bufs%2 != 0 {
		return nil, ErrOddBufs
	}

	if cfg.Levels < 1 {
		return nil, ErrNoLevels
	}

	width := ix.NumPixels()
	numROIs := ix.NumROIs()
	channels := (cfg.Levels + 1) * cfg.Bufs / 2

	c := &Correlator{
		ix:     ix,
		levels: cfg.Levels,
		bufs:   cfg.Bufs,
		hook:   cfg.Hook,
		plane:  ix.Rows() * ix.Cols(),
		rings:  make([]*ring, cfg.Levels),
		g:      make([][]float64, channels),
		iap:    make([][]float64, channels),
		iaf:    make([][]float64, channels),
		work:   make([]float64, width),
		meanG:  make([]float64, numROIs),
		meanP:  make([]float64, numROIs),
		meanF:  make([]float64, numROIs),
	}

	for level := range c.rings {
		c.rings[level] = newRing(cfg.Bufs, width)
	}

	for ch := 0; ch < channels; ch++ {
		c.g[ch] = make([]float64, numROIs)
		c.iap[ch] = make([]float64, numROIs)
		c.iaf[ch] = make([]float64, numROIs)
	}

	return c, nil
}

// Frames returns the number of frames processed so far.
func (c *Correlator) Frames() int {
	return c.frames
}

// Process feeds one detector frame, as a row-major intensity slice
// covering the full detector plane, into the hierarchy. All level
// propagation triggered by the frame completes before Process
// returns. A frame of the wrong length is rejected with ErrFrameShape
// and leaves the correlator state untouched.
func (c *Correlator) Process(frame []float64) error {
	if len(frame) != c.plane {
		return ErrFrameShape
	}

	start := time.Now()

	// Level 0 takes the raw ROI pixels of every frame.
	c.ix.Gather(c.rings[0].push(), frame)
	c.accumulate(0)

	// Propagate averaged pairs upward. A level without the pending
	// flag has just received the first value of a pair and waits;
	// a level with the flag set completes its pair, pushes the pair
	// average of the two most recent writes below, and lets the next
	// level decide.
	for level := 1; level < c.levels; level++ {
		r := c.rings[level]
		if !r.pending {
			r.pending = true
			break
		}

		r.pending = false

		lower := c.rings[level-1]
		pairAverage(r.push(), lower.at(1), lower.at(0))
		c.accumulate(level)
	}

	c.frames++
	c.elapsed += time.Since(start)

	return nil
}

// Result normalizes the accumulators into g2 = G / (IAP * IAF),
// truncated to the contiguous prefix of lag channels that received at
// least one update, paired with the matching lag steps. The
// correlator state is left intact: more frames may be processed and
// Result called again.
func (c *Correlator) Result() (Result, error) {
	if c.frames == 0 {
		return Result{}, ErrNoFrames
	}

	numROIs := c.ix.NumROIs()
	rows := c.populated()

	g2 := make([][]float64, rows)
	for ch := range g2 {
		row := make([]float64, numROIs)
		for q := range row {
			row[q] = c.g[ch][q] / (c.iap[ch][q] * c.iaf[ch][q])
		}
		g2[ch] = row
	}

	_, steps, err := core.MultiTauLags(c.levels, c.bufs)
	if err != nil {
		return Result{}, err
	}

	if c.hook != nil {
		c.hook(c.frames, c.elapsed)
	}

	return Result{
		G2:       g2,
		LagSteps: steps[:rows],
		Frames:   c.frames,
		Elapsed:  c.elapsed,
	}, nil
}

// populated returns the length of the contiguous prefix of lag
// channels updated at least once: min(arrivals, bufs) channels at
// level 0 and the second-half channels reached so far at every higher
// level.
func (c *Correlator) populated() int {
	half := c.bufs / 2

	n := min(c.rings[0].count, c.bufs)
	for level := 1; level < c.levels; level++ {
		m := min(c.rings[level].count, c.bufs) - half
		if m <= 0 {
			break
		}
		n += m
	}

	return n
}

// Correlate runs the full multi-tau analysis over a frame stack in
// one call. It is equivalent to streaming every frame through a fresh
// Correlator and taking its Result.
func Correlate(frames [][]float64, ix *roi.Indexer, opts ...Option) (Result, error) {
	c, err := New(ix, opts...)
	if err != nil {
		return Result{}, err
	}

	for _, frame := range frames {
		if err := c.Process(frame); err != nil {
			return Result{}, err
		}
	}

	return c.Result()
}
