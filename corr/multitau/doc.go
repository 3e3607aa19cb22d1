// Package multitau computes the one-time intensity autocorrelation
// g2(q, tau) of a detector frame stream with the multi-tau scheme.
//
// The multi-tau scheme samples lag times hierarchically: level 0
// correlates at native frame spacing, and every higher level
// correlates pairwise block-averages of the level below, doubling the
// lag spacing per level. Memory stays bounded at one small cyclic
// buffer per level and the work per frame is O(levels * bufs *
// pixels), instead of the O(N^2) cost of pairwise correlation over
// the full stream.
//
// Frames stream through a Correlator one at a time:
//
//	ix, _ := roi.NewIndexer(labels, rows, cols, nil)
//	c, _ := multitau.New(ix, multitau.WithLevels(8), multitau.WithBufs(16))
//	for _, frame := range frames {
//	    if err := c.Process(frame); err != nil {
//	        // abort: no partial result is meaningful
//	    }
//	}
//	res, _ := c.Result()
//	// res.G2[row][q], res.LagSteps[row]
//
// Accumulators use symmetric normalization with a stable running-mean
// update, following the scheme of D. Lumma, L. B. Lurio, S. G. J.
// Mochrie and M. Sutton, "Area detector based photon correlation in
// the regime of short data batches", Rev. Sci. Instrum. 71, 3274
// (2000).
package multitau
