package models

// Item identifies a card a player can hold. Items and jobs share one namespace,
// so a swap may carry either.
type Item string

// Job identifies a player's role card.
type Job string

// Victory items and their briefcase substitutes.
const (
	ItemKey              Item = "key"
	ItemChalice          Item = "chalice"
	ItemBriefcaseKey     Item = "briefcase_key"
	ItemBriefcaseChalice Item = "briefcase_chalice"
)

// Remaining item catalog.
const (
	ItemBlackPearl    Item = "black_pearl" // holder may not announce victory
	ItemDagger        Item = "dagger"
	ItemGloves        Item = "gloves"
	ItemPoisonRing    Item = "poison_ring"
	ItemCastingKnives Item = "casting_knives"
	ItemWhip          Item = "whip"
	ItemPrivilege     Item = "privilege"
	ItemMonocle       Item = "monocle"
	ItemBrokenMirror  Item = "broken_mirror"
	ItemSextant       Item = "sextant"
	ItemCoat          Item = "coat"
	ItemTome          Item = "tome"
	ItemCoatOfArms    Item = "coat_of_arms"
)

const (
	JobThug        Job = "thug"
	JobGrandMaster Job = "grand_master"
	JobBodyguard   Job = "bodyguard"
	JobDuelist     Job = "duelist"
	JobPoisonMixer Job = "poison_mixer"
	JobDoctor      Job = "doctor"
	JobPriest      Job = "priest"
	JobHypnotist   Job = "hypnotist"
	JobDiplomat    Job = "diplomat"
	JobClairvoyant Job = "clairvoyant"
)

// VictoryItem returns the item that counts toward f's victory.
func VictoryItem(f Faction) Item {
	if f == FactionOrden {
		return ItemKey
	}
	return ItemChalice
}

// Briefcase returns the briefcase variant standing in for a victory item,
// or "" if item has none.
func Briefcase(item Item) Item {
	switch item {
	case ItemKey:
		return ItemBriefcaseKey
	case ItemChalice:
		return ItemBriefcaseChalice
	}
	return ""
}
