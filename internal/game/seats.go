package game

import "slices"

// NextPlayer returns the seat that acts after current. Turn order walks the
// seat list backwards with wraparound, so for [A B C D] A is followed by D.
// Returns "" if current is not seated.
func NextPlayer(seats []string, current string) string {
	idx := slices.Index(seats, current)
	if idx < 0 {
		return ""
	}
	n := len(seats)
	return seats[(idx-1+n)%n]
}

// AttackSupportList returns the fixed voting order for an accusation: every
// seat after the attacker in forward order, wrapping around, with attacker
// and defender left out.
func AttackSupportList(seats []string, attacker, defender string) []string {
	start := slices.Index(seats, attacker)
	if start < 0 {
		return nil
	}
	n := len(seats)
	list := make([]string, 0, n)
	for i := 1; i < n; i++ {
		s := seats[(start+i)%n]
		if s == attacker || s == defender {
			continue
		}
		list = append(list, s)
	}
	return list
}
