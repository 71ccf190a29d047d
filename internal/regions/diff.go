package regions

// Plan partitions incoming records against existing ones by key
type Plan[T comparable] struct {
	Inserts []T
	Updates []T
	Deletes []T
}

func (p Plan[T]) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// PrepareQueries compares existing and incoming by key: incoming records with
// an unknown key are inserts, records whose key exists but whose value
// differs are updates, and existing keys missing from incoming are deletes.
// Duplicate incoming keys keep the last occurrence.
func PrepareQueries[T comparable](existing, incoming []T, key func(T) string) Plan[T] {
	current := make(map[string]T, len(existing))
	for _, e := range existing {
		current[key(e)] = e
	}

	latest := make(map[string]T, len(incoming))
	var order []string
	for _, in := range incoming {
		k := key(in)
		if _, seen := latest[k]; !seen {
			order = append(order, k)
		}
		latest[k] = in
	}

	var plan Plan[T]
	for _, k := range order {
		in := latest[k]
		old, ok := current[k]
		switch {
		case !ok:
			plan.Inserts = append(plan.Inserts, in)
		case old != in:
			plan.Updates = append(plan.Updates, in)
		}
	}
	for _, e := range existing {
		if _, ok := latest[key(e)]; !ok {
			plan.Deletes = append(plan.Deletes, e)
		}
	}
	return plan
}
