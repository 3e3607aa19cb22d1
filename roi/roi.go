// Package roi converts a labeled detector image into the compact
// pixel indexing used by the correlation engines.
//
// A label grid assigns a non-negative integer to every detector
// pixel: zero marks pixels outside every region of interest, positive
// values identify ROI membership (for example concentric q-rings).
// The Indexer flattens the grid into a pixel list, a parallel dense
// ROI id array, and per-ROI pixel counts, and provides the gather and
// scatter-reduce kernels the correlators run per frame.
package roi

import (
	"errors"
	"fmt"
	"sort"
)

// Errors returned during indexing.
var (
	ErrShapeMismatch = errors.New("roi: label grid shape does not match detector shape")
	ErrEmptyROI      = errors.New("roi: region of interest has no pixels")
)

// Indexer holds the immutable mapping from detector pixels to regions
// of interest. Labels are renumbered to a dense 1..R space in
// ascending label order; Labels reports the original label for each
// dense id.
type Indexer struct {
	rows, cols int
	pixelList  []int
	ids        []int
	counts     []int
	labels     []int
}

// NewIndexer builds an Indexer from a row-major label grid of the
// given dimensions. mask, if non-nil, marks usable pixels: entries set
// to false (for example dead pixels) are excluded before the pixel
// list is built. A positive label whose pixels are all masked out is
// an error: the ROI was declared but has no surviving pixels.
func NewIndexer(labels []int, rows, cols int, mask []bool) (*Indexer, error) {
	if rows <= 0 || cols <= 0 || len(labels) != rows*cols {
		return nil, ErrShapeMismatch
	}

	if mask != nil && len(mask) != rows*cols {
		return nil, ErrShapeMismatch
	}

	present := make(map[int]bool)
	for _, l := range labels {
		if l > 0 {
			present[l] = true
		}
	}

	if len(present) == 0 {
		return nil, fmt.Errorf("%w: no positive labels in grid", ErrEmptyROI)
	}

	orig := make([]int, 0, len(present))
	for l := range present {
		orig = append(orig, l)
	}
	sort.Ints(orig)

	dense := make(map[int]int, len(orig))
	for i, l := range orig {
		dense[l] = i + 1
	}

	ix := &Indexer{
		rows:   rows,
		cols:   cols,
		counts: make([]int, len(orig)),
		labels: orig,
	}

	// Mask first, then collect remaining positive labels in row-major
	// scan order.
	for p, l := range labels {
		if l <= 0 {
			continue
		}

		if mask != nil && !mask[p] {
			continue
		}

		id := dense[l]
		ix.pixelList = append(ix.pixelList, p)
		ix.ids = append(ix.ids, id)
		ix.counts[id-1]++
	}

	for i, c := range ix.counts {
		if c == 0 {
			return nil, fmt.Errorf("%w: label %d has no unmasked pixels", ErrEmptyROI, orig[i])
		}
	}

	return ix, nil
}

// Rows returns the detector row count.
func (ix *Indexer) Rows() int {
	return ix.rows
}

// Cols returns the detector column count.
func (ix *Indexer) Cols() int {
	return ix.cols
}

// NumROIs returns the number of regions of interest.
func (ix *Indexer) NumROIs() int {
	return len(ix.counts)
}

// NumPixels returns the total number of in-ROI pixels, the length of
// the pixel list.
func (ix *Indexer) NumPixels() int {
	return len(ix.pixelList)
}

// PixelList returns a copy of the flat row-major indices of all
// in-ROI pixels, in scan order.
func (ix *Indexer) PixelList() []int {
	return append([]int(nil), ix.pixelList...)
}

// IDs returns a copy of the dense ROI id (1..NumROIs) for each pixel
// list entry, in the same order.
func (ix *Indexer) IDs() []int {
	return append([]int(nil), ix.ids...)
}

// Counts returns a copy of the per-ROI pixel counts, indexed by dense
// id minus one.
func (ix *Indexer) Counts() []int {
	return append([]int(nil), ix.counts...)
}

// Labels returns a copy of the original grid label for each dense id,
// indexed by dense id minus one.
func (ix *Indexer) Labels() []int {
	return append([]int(nil), ix.labels...)
}

// Gather copies the in-ROI pixels of a full detector frame into dst
// in pixel-list order. dst must have length NumPixels and frame must
// have length Rows*Cols. Panics if lengths differ.
func (ix *Indexer) Gather(dst, frame []float64) {
	if len(dst) != len(ix.pixelList) || len(frame) != ix.rows*ix.cols {
		panic("roi: gather length mismatch")
	}

	for j, p := range ix.pixelList {
		dst[j] = frame[p]
	}
}

// MeanPerROI reduces a pixel-list-aligned value vector to one mean
// per ROI: a linear scatter-add keyed by dense ROI id, divided by the
// ROI's pixel count. dst must have length NumROIs and values must
// have length NumPixels. Panics if lengths differ.
func (ix *Indexer) MeanPerROI(dst, values []float64) {
	if len(dst) != len(ix.counts) || len(values) != len(ix.ids) {
		panic("roi: reduce length mismatch")
	}

	for q := range dst {
		dst[q] = 0
	}

	for j, v := range values {
		dst[ix.ids[j]-1] += v
	}

	for q := range dst {
		dst[q] /= float64(ix.counts[q])
	}
}
