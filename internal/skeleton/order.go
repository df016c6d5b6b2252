package skeleton

const (
	unvisited = iota
	inProgress
	done
)

// topologicalOrder walks each bone's parent chain iteratively, emitting
// ancestors first. Meeting a bone that is still in progress means the chain
// has looped.
func topologicalOrder(bones []Bone) ([]int, error) {
	state := make([]uint8, len(bones))
	order := make([]int, 0, len(bones))
	chain := make([]int, 0, 8)

	for i := range bones {
		if state[i] == done {
			continue
		}

		chain = chain[:0]
		j := i
		for j >= 0 && state[j] == unvisited {
			state[j] = inProgress
			chain = append(chain, j)
			j = bones[j].Parent
		}

		if j >= 0 && state[j] == inProgress {
			return nil, cycleError(bones, chain, j)
		}

		for k := len(chain) - 1; k >= 0; k-- {
			state[chain[k]] = done
			order = append(order, chain[k])
		}
	}

	return order, nil
}

func cycleError(bones []Bone, chain []int, start int) *CyclicHierarchyError {
	var names []string
	in := false
	for _, idx := range chain {
		if idx == start {
			in = true
		}
		if in {
			names = append(names, bones[idx].Name)
		}
	}
	return &CyclicHierarchyError{Bones: names}
}

// depthWaves buckets bones by depth using an order where parents come first.
func depthWaves(bones []Bone, order []int) [][]int {
	depth := make([]int, len(bones))
	var waves [][]int
	for _, i := range order {
		d := 0
		if p := bones[i].Parent; p >= 0 {
			d = depth[p] + 1
		}
		depth[i] = d
		if d == len(waves) {
			waves = append(waves, nil)
		}
		waves[d] = append(waves[d], i)
	}
	return waves
}
