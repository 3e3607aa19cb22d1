package multitau

// ring is one hierarchy level's cyclic history: a fixed number of
// slots, each holding the level's view of the ROI pixel vector,
// overwritten in place as values cycle through.
type ring struct {
	slots   [][]float64
	cur     int  // most recently written slot
	count   int  // values ever written to this level
	pending bool // holding the first value of a pair, waiting for the second
}

func newRing(bufs, width int) *ring {
	r := &ring{
		slots: make([][]float64, bufs),
		cur:   bufs - 1,
	}

	for i := range r.slots {
		r.slots[i] = make([]float64, width)
	}

	return r
}

// push advances the cursor cyclically and returns the slot to
// overwrite, counting the write.
func (r *ring) push() []float64 {
	r.cur = (r.cur + 1) % len(r.slots)
	r.count++

	return r.slots[r.cur]
}

// at returns the slot written i pushes ago; at(0) is the most recent
// write. Only valid for i < min(count, len(slots)).
func (r *ring) at(i int) []float64 {
	n := len(r.slots)

	return r.slots[((r.cur-i)%n+n)%n]
}
