package surfacegrid

import "math/rand/v2"

// Decimate returns max samples picked uniformly at random, without
// replacement, when the set holds more than max samples. Otherwise the set is
// returned unchanged. The input is never modified.
//
// A nil rng uses a source local to the call.
func Decimate(samples SampleSet, max int, rng *rand.Rand) SampleSet {
	if max <= 0 || len(samples) <= max {
		return samples
	}

	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	// Partial Fisher-Yates: the first max slots end up holding a uniform
	// sample of the whole set.
	shuffled := make(SampleSet, len(samples))
	copy(shuffled, samples)

	for i := 0; i < max; i++ {
		j := i + rng.IntN(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	instrumentDecimation(len(samples), max)
	return shuffled[:max:max]
}
