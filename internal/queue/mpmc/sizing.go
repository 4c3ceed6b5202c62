package mpmc

import (
	"github.com/pbnjay/memory"
)

// Share of free system memory a single queue may claim
const memoryShareDivisor uint64 = 16

// Halves capacity until the whole ring fits within a share of free memory.
// Hosts that cannot report free memory are not limited.
func clampCapacity(capacity int, itemSize uint64) (clamped int) {
	clamped = capacity
	if itemSize == 0 {
		return
	}

	free := memory.FreeMemory()
	if free == 0 {
		return
	}
	budget := free / memoryShareDivisor

	for clamped > 2 && uint64(clamped)*itemSize > budget {
		clamped = prevPowerOfTwo(clamped)
	}
	return
}

func nextPowerOfTwo(start int) (next int) {
	if start <= 1 {
		next = 1
		return
	}
	start--
	start |= start >> 1
	start |= start >> 2
	start |= start >> 4
	start |= start >> 8
	start |= start >> 16
	start |= start >> 32
	next = start + 1
	return
}

func prevPowerOfTwo(start int) (prev int) {
	if start == 0 {
		return
	}
	prev = nextPowerOfTwo(start) >> 1
	return
}
