package dataset

import "math/rand"

// DistributedSampler assigns dataset indices to one worker of a
// group. Every rank computes the same seeded permutation and takes a
// strided slice of it, so shards are disjoint and together cover the
// dataset (up to the tail dropped to keep shards equal).
//
// The zero value (Rank 0, WorldSize 0) behaves as a single-worker
// sampler over the whole dataset.
type DistributedSampler struct {
	Rank      int
	WorldSize int
	Seed      int64
	Shuffle   bool
}

// Indices returns this rank's sample indices for the given epoch.
//
// When Shuffle is set, the permutation is seeded with Seed + epoch so
// all ranks agree on it while each epoch reshuffles. Shards are
// truncated to floor(n / WorldSize) entries per rank so every rank
// sees the same number of samples and therefore the same batch count.
func (s DistributedSampler) Indices(n, epoch int) []int {
	world := s.WorldSize
	if world <= 0 {
		world = 1
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if s.Shuffle {
		rng := rand.New(rand.NewSource(s.Seed + int64(epoch)))
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	perRank := n / world
	out := make([]int, 0, perRank)
	for i := s.Rank; i < perRank*world; i += world {
		out = append(out, order[i])
	}
	return out
}
