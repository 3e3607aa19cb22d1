package multitau

import "github.com/cwbudde/algo-vecmath"

// accumulate folds the most recent write at the given level into the
// G, IAP and IAF accumulators for every lag offset valid at the
// level's current arrival count. Symmetric normalization: past and
// future intensities are averaged over exactly the value pairs that
// contributed to the numerator at that lag.
func (c *Correlator) accumulate(level int) {
	r := c.rings[level]
	cur := r.at(0)

	// Levels above zero only cover the second half of the offsets;
	// the first half repeats lags already sampled one level below.
	offMin := 0
	if level > 0 {
		offMin = c.bufs / 2
	}

	for off := offMin; off < min(r.count, c.bufs); off++ {
		past := r.at(off)

		vecmath.MulBlock(c.work, past, cur)
		c.ix.MeanPerROI(c.meanG, c.work)
		c.ix.MeanPerROI(c.meanP, past)
		c.ix.MeanPerROI(c.meanF, cur)

		// Stable running mean over the (count-off) pairs seen at this
		// lag so far, instead of a growing sum divided at the end.
		ch := level*c.bufs/2 + off
		w := 1 / float64(r.count-off)

		g, iap, iaf := c.g[ch], c.iap[ch], c.iaf[ch]
		for q := range g {
			g[q] += (c.meanG[q] - g[q]) * w
			iap[q] += (c.meanP[q] - iap[q]) * w
			iaf[q] += (c.meanF[q] - iaf[q]) * w
		}
	}
}

// pairAverage writes the elementwise mean of a and b into dst.
func pairAverage(dst, a, b []float64) {
	vecmath.AddMulBlock(dst, a, b, 0.5)
}
