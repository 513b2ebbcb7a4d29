package repo

import (
	"fmt"

	"github.com/odvcencio/gitlet/pkg/object"
)

const maxMergeBaseBFSSteps = 1_000_000

// Tests may tighten this; it never exceeds maxMergeBaseBFSSteps.
var mergeBaseBFSStepsLimit = maxMergeBaseBFSSteps

func mergeBaseStepsLimit() int {
	if mergeBaseBFSStepsLimit <= 0 || mergeBaseBFSStepsLimit > maxMergeBaseBFSSteps {
		return maxMergeBaseBFSSteps
	}
	return mergeBaseBFSStepsLimit
}

func mergeBaseStepsLimitError(limit int) error {
	return fmt.Errorf("find merge base: traversal exceeded maximum steps (%d)", limit)
}

// ancestorDistances walks every parent edge breadth-first from start and
// returns each reachable commit with its shortest distance from start.
func (r *Repo) ancestorDistances(start object.Hash) (map[object.Hash]int, error) {
	limit := mergeBaseStepsLimit()
	dist := map[object.Hash]int{start: 0}
	queue := []object.Hash{start}
	steps := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		steps++
		if steps > limit {
			return nil, mergeBaseStepsLimitError(limit)
		}

		c, err := r.Store.ReadCommit(cur)
		if err != nil {
			return nil, fmt.Errorf("find merge base: read commit %s: %w", cur.Short(7), err)
		}
		for _, p := range c.Parents {
			if _, seen := dist[p]; seen {
				continue
			}
			dist[p] = dist[cur] + 1
			queue = append(queue, p)
		}
	}
	return dist, nil
}

// FindMergeBase returns the split point of a and b: the common ancestor
// minimizing distA+distB, ties broken by the smaller distance from a and
// then by the lower id. It returns "" when the histories share nothing.
func (r *Repo) FindMergeBase(a, b object.Hash) (object.Hash, error) {
	if a == "" || b == "" {
		return "", nil
	}
	if a == b {
		return a, nil
	}

	distA, err := r.ancestorDistances(a)
	if err != nil {
		return "", err
	}
	distB, err := r.ancestorDistances(b)
	if err != nil {
		return "", err
	}

	var best object.Hash
	bestSum, bestA := 0, 0
	for h, da := range distA {
		db, common := distB[h]
		if !common {
			continue
		}
		sum := da + db
		if best == "" || sum < bestSum ||
			(sum == bestSum && (da < bestA || (da == bestA && h < best))) {
			best, bestSum, bestA = h, sum, da
		}
	}
	return best, nil
}

// IsAncestor reports whether ancestor is reachable from descendant through
// any parent edge. A commit is its own ancestor.
func (r *Repo) IsAncestor(ancestor, descendant object.Hash) (bool, error) {
	if ancestor == descendant {
		return true, nil
	}
	dist, err := r.ancestorDistances(descendant)
	if err != nil {
		return false, err
	}
	_, ok := dist[ancestor]
	return ok, nil
}
