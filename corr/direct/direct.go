// Package direct computes the one-time intensity correlation by
// explicit pairwise evaluation over the full frame stack.
//
// It is the reference for the multi-tau engine: same symmetric
// normalization, no hierarchical downsampling, O(N * maxLag * pixels)
// work and O(N * pixels) memory. G2FFT trades the pairwise numerator
// for per-pixel spectral autocorrelation, which is faster for long
// stacks with many lags. Use corr/multitau for streaming acquisition;
// use this package for small offline jobs and validation.
package direct

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/ke-zhang-rd/scikit-beam/roi"
)

// Errors returned by the reference correlators.
var (
	ErrNilIndexer = errors.New("direct: nil ROI indexer")
	ErrNoFrames   = errors.New("direct: no frames")
	ErrBadLag     = errors.New("direct: max lag must be in 1..frame count")
	ErrFrameShape = errors.New("direct: frame shape does not match ROI grid")
)

// G2 computes the normalized correlation g2 for lags 0..maxLag-1 by
// direct pairwise evaluation. For each lag tau the numerator and the
// past/future normalizations average over exactly the N-tau frame
// pairs (t, t+tau). Output is [maxLag][NumROIs]; row tau corresponds
// to a delay of tau frames.
func G2(frames [][]float64, ix *roi.Indexer, maxLag int) ([][]float64, error) {
	series, err := gatherSeries(frames, ix, maxLag)
	if err != nil {
		return nil, err
	}

	n := len(series)
	width := ix.NumPixels()
	numROIs := ix.NumROIs()

	work := make([]float64, width)
	meanG := make([]float64, numROIs)
	meanP := make([]float64, numROIs)
	meanF := make([]float64, numROIs)

	g2 := make([][]float64, maxLag)
	for tau := 0; tau < maxLag; tau++ {
		g := make([]float64, numROIs)
		iap := make([]float64, numROIs)
		iaf := make([]float64, numROIs)

		for t := 0; t+tau < n; t++ {
			vecmath.MulBlock(work, series[t], series[t+tau])
			ix.MeanPerROI(meanG, work)
			ix.MeanPerROI(meanP, series[t])
			ix.MeanPerROI(meanF, series[t+tau])

			for q := 0; q < numROIs; q++ {
				g[q] += meanG[q]
				iap[q] += meanP[q]
				iaf[q] += meanF[q]
			}
		}

		pairs := float64(n - tau)
		row := make([]float64, numROIs)
		for q := range row {
			row[q] = (g[q] / pairs) / ((iap[q] / pairs) * (iaf[q] / pairs))
		}
		g2[tau] = row
	}

	return g2, nil
}

// G2FFT computes the same quantity as G2 with the numerator evaluated
// spectrally: each pixel's time series is zero-padded, transformed,
// multiplied by its own conjugate and transformed back, yielding the
// linear autocorrelation sums for all lags at once. The
// normalizations come from per-pixel prefix and suffix partial sums.
func G2FFT(frames [][]float64, ix *roi.Indexer, maxLag int) ([][]float64, error) {
	series, err := gatherSeries(frames, ix, maxLag)
	if err != nil {
		return nil, err
	}

	n := len(series)
	width := ix.NumPixels()
	numROIs := ix.NumROIs()
	ids := ix.IDs()
	counts := ix.Counts()

	fftSize := nextPowerOf2(2 * n)
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("direct: failed to create FFT plan: %w", err)
	}

	acSum := zeros(maxLag, numROIs)
	preSum := zeros(maxLag, numROIs)
	sufSum := zeros(maxLag, numROIs)

	padded := make([]complex128, fftSize)
	freq := make([]complex128, fftSize)
	ac := make([]complex128, fftSize)
	cum := make([]float64, n)

	for p := 0; p < width; p++ {
		q := ids[p] - 1

		for i := range padded {
			padded[i] = 0
		}

		var total float64
		for t := 0; t < n; t++ {
			v := series[t][p]
			padded[t] = complex(v, 0)
			total += v
			cum[t] = total
		}

		if err := plan.Forward(freq, padded); err != nil {
			return nil, fmt.Errorf("direct: forward FFT failed: %w", err)
		}

		// |X|^2 in frequency is the autocorrelation in time.
		for i, c := range freq {
			re, im := real(c), imag(c)
			freq[i] = complex(re*re+im*im, 0)
		}

		if err := plan.Inverse(ac, freq); err != nil {
			return nil, fmt.Errorf("direct: inverse FFT failed: %w", err)
		}

		for tau := 0; tau < maxLag; tau++ {
			acSum[tau][q] += real(ac[tau])

			// Past frames span [0, n-tau), future frames [tau, n).
			preSum[tau][q] += cum[n-tau-1]
			if tau == 0 {
				sufSum[tau][q] += total
			} else {
				sufSum[tau][q] += total - cum[tau-1]
			}
		}
	}

	g2 := zeros(maxLag, numROIs)
	for tau := range g2 {
		pairs := float64(n - tau)
		for q := range g2[tau] {
			c := float64(counts[q])
			g := acSum[tau][q] / c / pairs
			iap := preSum[tau][q] / c / pairs
			iaf := sufSum[tau][q] / c / pairs
			g2[tau][q] = g / (iap * iaf)
		}
	}

	return g2, nil
}

// gatherSeries validates the inputs and extracts the ROI pixels of
// every frame into pixel-list-aligned vectors.
func gatherSeries(frames [][]float64, ix *roi.Indexer, maxLag int) ([][]float64, error) {
	if ix == nil {
		return nil, ErrNilIndexer
	}

	n := len(frames)
	if n == 0 {
		return nil, ErrNoFrames
	}

	if maxLag < 1 || maxLag > n {
		return nil, ErrBadLag
	}

	plane := ix.Rows() * ix.Cols()
	width := ix.NumPixels()

	series := make([][]float64, n)
	for t, frame := range frames {
		if len(frame) != plane {
			return nil, fmt.Errorf("%w: frame %d has %d pixels, want %d", ErrFrameShape, t, len(frame), plane)
		}

		series[t] = make([]float64, width)
		ix.Gather(series[t], frame)
	}

	return series, nil
}

func zeros(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}

	return m
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p *= 2
	}

	return p
}
