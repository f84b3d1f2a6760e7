package alloc

// findBestFit scans the slot table for the smallest free run of at least
// need pages. It returns the run's first slot and its full length.
//
// Runs are evaluated when they end (at an occupied slot or the end of the
// table). A run replaces the current best only when it is strictly shorter,
// so among equally short runs the earliest one wins.
//
// Allocated runs are skipped in one step using the head slot's page count.
func (a *Allocator) findBestFit(need uint32) (start, length uint32, ok bool) {
	n := uint32(len(a.slots))
	if need == 0 || need > n {
		return 0, 0, false
	}

	var (
		best    uint32 = n + 1 // sentinel: longer than any real run
		bestAt  uint32
		runLen  uint32
		runFrom uint32
	)

	consider := func() {
		if runLen >= need && runLen < best {
			best, bestAt = runLen, runFrom
		}
	}

	for i := uint32(0); i < n; {
		s := a.slots[i]
		if s.state == slotFree {
			if runLen == 0 {
				runFrom = i
			}
			runLen++
			i++
			continue
		}

		consider()
		runLen = 0
		if s.state == slotHead && s.pages > 0 {
			i += s.pages
		} else {
			// A tail slot is only reached if the table is inconsistent; step
			// over it rather than trusting it.
			i++
		}

		// An exact fit cannot be beaten.
		if best == need {
			return bestAt, best, true
		}
	}
	consider()

	if best > n {
		return 0, 0, false
	}
	return bestAt, best, true
}
