package partition

// Ambiguity returns the expected number of code elements indistinguishable
// from a randomly chosen one: sum over partitions of (s/N)*((s-1)/2).
func Ambiguity(sizes []int) float64 {
	n := total(sizes)
	if n == 0 {
		return 0
	}
	var sum float64
	for _, s := range sizes {
		sum += float64(s) / float64(n) * (float64(s-1) / 2)
	}
	return sum
}

// Metric returns 1 minus the normalized count of element pairs that share a
// partition. A fully discriminated cluster scores 1, a single partition of
// more than one element scores 0.
func Metric(sizes []int) float64 {
	n := total(sizes)
	if n <= 1 {
		return 1
	}
	var same float64
	for _, s := range sizes {
		same += float64(s) * float64(s-1)
	}
	return 1 - same/(float64(n)*float64(n-1))
}

func total(sizes []int) int {
	n := 0
	for _, s := range sizes {
		n += s
	}
	return n
}
