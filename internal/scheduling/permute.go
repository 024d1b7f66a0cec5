package scheduling

// forEachArrangement invokes fn with every ordered selection of k items, in
// lexicographic index order over the input slice. The slice passed to fn is
// reused between calls; fn must copy it if it retains it. fn returns false
// to stop enumeration early.
func forEachArrangement(items []string, k int, fn func([]string) bool) {
	if k > len(items) {
		k = len(items)
	}
	if k == 0 {
		fn(nil)
		return
	}

	used := make([]bool, len(items))
	arrangement := make([]string, 0, k)

	var walk func() bool
	walk = func() bool {
		if len(arrangement) == k {
			return fn(arrangement)
		}
		for i, item := range items {
			if used[i] {
				continue
			}
			used[i] = true
			arrangement = append(arrangement, item)
			keepGoing := walk()
			arrangement = arrangement[:len(arrangement)-1]
			used[i] = false
			if !keepGoing {
				return false
			}
		}
		return true
	}
	walk()
}
