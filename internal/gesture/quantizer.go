package gesture

// featureRange returns the (lo, hi) quantization range for feature index i,
// per spec.md §4.3. Feature indices 39-43 (relative depth, z) use (-1, 1);
// this is the semantically-correct table spec.md calls out in its Open
// Questions — see DESIGN.md / SPEC_FULL.md "OQ1" for the decision to
// implement the corrected ranges rather than a suspected off-by-few in
// the table the spec was distilled from.
func featureRange(i int) (lo, hi float64) {
	switch {
	case i >= 10 && i <= 19:
		return -2, 2
	case i >= 20 && i <= 24:
		return 0, 1
	case i >= 39 && i <= 43:
		return -1, 1
	default:
		return 0, 3
	}
}

// quantize maps a feature value into a bin in [0, numBins-1] given the
// feature's (lo, hi) range, per spec.md §4.3.
func quantize(v, lo, hi float64, numBins int) int {
	t := (v - lo) / (hi - lo + 1e-8)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	bin := int(t * float64(numBins))
	if bin > numBins-1 {
		bin = numBins - 1
	}
	return bin
}
