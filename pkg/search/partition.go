package search

// PartitionBudget splits a total trial budget into one contiguous slice per
// worker. Slice sizes always sum to exactly the total; the remainder after
// even division goes to the last worker.
func PartitionBudget(total uint64, workers int) []uint64 {
	if workers < 1 {
		workers = 1
	}
	share := total / uint64(workers)
	slices := make([]uint64, workers)
	for i := range slices {
		slices[i] = share
	}
	slices[workers-1] += total % uint64(workers)
	return slices
}
