package config

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/agbru/sinsum/internal/errors"
)

// MaxCompareEntries bounds the length of a -compare list.
const MaxCompareEntries = 32

// DefaultCompareThreads returns the thread counts swept by "-compare auto":
// powers of two up to the number of logical CPUs, followed by the CPU count
// itself when it is not a power of two.
func DefaultCompareThreads() []int {
	return compareThreadsFor(runtime.NumCPU())
}

func compareThreadsFor(numCPU int) []int {
	if numCPU < 1 {
		numCPU = 1
	}
	var counts []int
	for t := 1; t <= numCPU; t *= 2 {
		counts = append(counts, t)
	}
	if counts[len(counts)-1] != numCPU {
		counts = append(counts, numCPU)
	}
	return counts
}

// ParseThreadList parses a -compare value. The empty string yields nil,
// "auto" yields DefaultCompareThreads, otherwise the value must be a
// comma-separated list of positive integers. Duplicates are removed and the
// list is returned in ascending order.
func ParseThreadList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return nil, nil
	case "auto":
		return DefaultCompareThreads(), nil
	}

	parts := strings.Split(s, ",")
	if len(parts) > MaxCompareEntries {
		return nil, apperrors.ValidationError{Field: "compare", Message: fmt.Sprintf("at most %d thread counts, got %d", MaxCompareEntries, len(parts))}
	}
	seen := make(map[int]bool, len(parts))
	counts := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, apperrors.ValidationError{Field: "compare", Message: fmt.Sprintf("%q is not an integer", p)}
		}
		if n < 1 {
			return nil, apperrors.ValidationError{Field: "compare", Message: fmt.Sprintf("thread count must be at least 1, got %d", n)}
		}
		if !seen[n] {
			seen[n] = true
			counts = append(counts, n)
		}
	}
	sort.Ints(counts)
	return counts, nil
}
