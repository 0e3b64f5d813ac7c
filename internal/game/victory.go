package game

import "github.com/jason-s-yu/kutschfahrt/internal/models"

// ValidateVictory reports whether announcer and teammates together prove a win
// for the announcer's faction. Every participant must belong to that faction and
// hold at least one qualifying item, and the combined count must reach the
// table's threshold.
func ValidateVictory(s *State, rules Rules, announcer string, teammates []string) bool {
	ap := s.Players[announcer]
	if ap == nil {
		return false
	}
	faction := ap.Faction
	item := models.VictoryItem(faction)

	total := 0
	for _, id := range append([]string{announcer}, teammates...) {
		p := s.Players[id]
		if p == nil || p.Faction != faction {
			return false
		}
		c := CountItems(s, id, item)
		if c == 0 {
			return false
		}
		total += c
	}
	if total < rules.VictoryThreshold {
		return false
	}
	if rules.RequireOddTotal && total%2 == 0 {
		return false
	}
	return true
}

// CountItems counts the copies of item a player holds. Once the item stack is
// exhausted, the matching briefcase counts as well.
func CountItems(s *State, player string, item models.Item) int {
	p := s.Players[player]
	if p == nil {
		return 0
	}
	n := p.Count(item)
	if len(s.ItemStack) == 0 {
		if b := models.Briefcase(item); b != "" {
			n += CountItems(s, player, b)
		}
	}
	return n
}
