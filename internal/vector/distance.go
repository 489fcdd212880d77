package vector

import (
	"math"
	"sort"
)

// L2Distance is the Euclidean distance between a and b. Both vectors must have
// the same length; the caller checks dimensions.
func L2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Candidate is a stored vector with its insertion sequence, used to break
// distance ties the way the chunk_id ordering does in Postgres.
type Candidate struct {
	Seq    int64
	Vector []float32
}

type Neighbor struct {
	Index    int
	Distance float64
}

// Nearest returns up to k candidates closest to query, nearest first. Equal
// distances keep ascending Seq order. Candidates whose dimension differs from
// query are skipped.
func Nearest(query []float32, cands []Candidate, k int) []Neighbor {
	if k <= 0 || len(cands) == 0 {
		return []Neighbor{}
	}
	out := make([]Neighbor, 0, len(cands))
	for i, c := range cands {
		if len(c.Vector) != len(query) {
			continue
		}
		out = append(out, Neighbor{Index: i, Distance: L2Distance(query, c.Vector)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return cands[out[i].Index].Seq < cands[out[j].Index].Seq
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}
