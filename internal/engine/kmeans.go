package engine

import (
	"errors"
	"image"
	"math"
	"math/rand"
	"sort"
)

// Clustering policy. The fixed seed is what makes identical input bytes
// yield identical clusters; cache correctness and test reproducibility
// depend on it. Restarts and the iteration cap bound the runtime while
// stabilizing convergence.
const (
	clusterSeed     = 42
	clusterRestarts = 10
	clusterMaxIter  = 300
	clusterEpsilon  = 1e-4
)

// sample3 is one pixel sample in RGB space.
type sample3 [3]float64

// clusterSet is an ordered partition of the sampled pixel colors.
//
// Centers and fractions are parallel slices sorted descending by population
// fraction, ties broken by lower cluster index. Fractions sum to 1 within
// floating tolerance and the length never exceeds the requested cluster
// count.
type clusterSet struct {
	centers   []RGB
	fractions []float64
}

// collectSamples flattens the RGB channels of an NRGBA buffer into a sample
// list, dropping alpha.
func collectSamples(img *image.NRGBA) []sample3 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	samples := make([]sample3, 0, width*height)
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width; x++ {
			samples = append(samples, sample3{
				float64(row[x*4]),
				float64(row[x*4+1]),
				float64(row[x*4+2]),
			})
		}
	}
	return samples
}

// clusterColors partitions the pixel colors of img into at most k clusters.
//
// When the image holds fewer distinct colors than k, each distinct color
// becomes its own cluster; otherwise k-means runs with a fixed seed,
// clusterRestarts initializations, and a clusterMaxIter iteration cap,
// keeping the restart with the lowest inertia.
func clusterColors(img *image.NRGBA, k int) (clusterSet, error) {
	samples := collectSamples(img)
	if len(samples) == 0 {
		return clusterSet{}, errors.New("image has no pixels to cluster")
	}

	if distinct := distinctColors(samples); len(distinct) <= k {
		return distinctClusterSet(distinct, len(samples)), nil
	}

	rng := rand.New(rand.NewSource(clusterSeed))
	bestInertia := math.Inf(1)
	var bestCenters []sample3
	var bestCounts []int

	for restart := 0; restart < clusterRestarts; restart++ {
		centers, counts, inertia := runKMeans(samples, k, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			bestCenters = centers
			bestCounts = counts
		}
	}

	return orderedClusterSet(bestCenters, bestCounts, len(samples)), nil
}

// runKMeans performs one seeded k-means run and reports the final centers,
// per-cluster counts, and total inertia (sum of squared distances).
func runKMeans(samples []sample3, k int, rng *rand.Rand) ([]sample3, []int, float64) {
	centers := seedCenters(samples, k, rng)

	for iter := 0; iter < clusterMaxIter; iter++ {
		sums := make([]sample3, k)
		counts := make([]int, k)
		for _, s := range samples {
			j := nearestCenter(s, centers)
			counts[j]++
			sums[j][0] += s[0]
			sums[j][1] += s[1]
			sums[j][2] += s[2]
		}

		maxShift := 0.0
		for j := 0; j < k; j++ {
			var next sample3
			if counts[j] == 0 {
				// Re-seat an emptied cluster on the sample farthest
				// from every current center. Deterministic.
				next = farthestSample(samples, centers)
			} else {
				n := float64(counts[j])
				next = sample3{sums[j][0] / n, sums[j][1] / n, sums[j][2] / n}
			}
			if shift := math.Sqrt(dist2(next, centers[j])); shift > maxShift {
				maxShift = shift
			}
			centers[j] = next
		}

		if maxShift < clusterEpsilon {
			break
		}
	}

	counts := make([]int, k)
	inertia := 0.0
	for _, s := range samples {
		j := nearestCenter(s, centers)
		counts[j]++
		inertia += dist2(s, centers[j])
	}
	return centers, counts, inertia
}

// seedCenters picks k initial centers using k-means++ weighting.
func seedCenters(samples []sample3, k int, rng *rand.Rand) []sample3 {
	centers := make([]sample3, 0, k)
	centers = append(centers, samples[rng.Intn(len(samples))])

	minDist := make([]float64, len(samples))
	for i, s := range samples {
		minDist[i] = dist2(s, centers[0])
	}

	for len(centers) < k {
		total := 0.0
		for _, d := range minDist {
			total += d
		}
		if total == 0 {
			centers = append(centers, samples[rng.Intn(len(samples))])
			continue
		}

		target := rng.Float64() * total
		pick := len(samples) - 1
		acc := 0.0
		for i, d := range minDist {
			acc += d
			if acc >= target {
				pick = i
				break
			}
		}
		centers = append(centers, samples[pick])

		for i, s := range samples {
			if d := dist2(s, samples[pick]); d < minDist[i] {
				minDist[i] = d
			}
		}
	}
	return centers
}

func nearestCenter(s sample3, centers []sample3) int {
	best := 0
	bestDist := dist2(s, centers[0])
	for j := 1; j < len(centers); j++ {
		if d := dist2(s, centers[j]); d < bestDist {
			best = j
			bestDist = d
		}
	}
	return best
}

func farthestSample(samples []sample3, centers []sample3) sample3 {
	bestIdx := 0
	bestDist := -1.0
	for i, s := range samples {
		d := dist2(s, centers[nearestCenter(s, centers)])
		if d > bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	return samples[bestIdx]
}

func dist2(a, b sample3) float64 {
	dr := a[0] - b[0]
	dg := a[1] - b[1]
	db := a[2] - b[2]
	return dr*dr + dg*dg + db*db
}

// orderedClusterSet converts raw centers and counts into a clusterSet sorted
// descending by population fraction, ties broken by lower cluster index.
func orderedClusterSet(centers []sample3, counts []int, total int) clusterSet {
	order := make([]int, len(centers))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})

	cs := clusterSet{
		centers:   make([]RGB, 0, len(centers)),
		fractions: make([]float64, 0, len(centers)),
	}
	for _, j := range order {
		cs.centers = append(cs.centers, roundColor(centers[j]))
		cs.fractions = append(cs.fractions, float64(counts[j])/float64(total))
	}
	return cs
}

// colorCount tracks one distinct color, its population, and the index of its
// first occurrence (used as a deterministic tie-breaker).
type colorCount struct {
	color RGB
	count int
	first int
}

func distinctColors(samples []sample3) []colorCount {
	seen := make(map[RGB]int)
	distinct := make([]colorCount, 0, 16)
	for i, s := range samples {
		c := RGB{int(s[0]), int(s[1]), int(s[2])}
		if idx, ok := seen[c]; ok {
			distinct[idx].count++
			continue
		}
		seen[c] = len(distinct)
		distinct = append(distinct, colorCount{color: c, count: 1, first: i})
	}
	return distinct
}

func distinctClusterSet(distinct []colorCount, total int) clusterSet {
	sort.SliceStable(distinct, func(a, b int) bool {
		if distinct[a].count != distinct[b].count {
			return distinct[a].count > distinct[b].count
		}
		return distinct[a].first < distinct[b].first
	})

	cs := clusterSet{
		centers:   make([]RGB, 0, len(distinct)),
		fractions: make([]float64, 0, len(distinct)),
	}
	for _, d := range distinct {
		cs.centers = append(cs.centers, d.color)
		cs.fractions = append(cs.fractions, float64(d.count)/float64(total))
	}
	return cs
}

// roundColor rounds a floating center to the nearest 8-bit color, clamped to
// the valid range.
func roundColor(s sample3) RGB {
	clamp := func(v float64) int {
		r := int(math.Round(v))
		if r < 0 {
			return 0
		}
		if r > 255 {
			return 255
		}
		return r
	}
	return RGB{clamp(s[0]), clamp(s[1]), clamp(s[2])}
}
