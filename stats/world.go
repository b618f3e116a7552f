package stats

// World is a set of world type flags of the world the local player is on.
type World uint8

const (
	WorldPvp World = 1 << iota
	WorldBounty
	WorldLeague
)

// Has reports whether every flag of f is set.
func (w World) Has(f World) bool {
	return w&f == f
}

// PlayerKillsSuffix returns the category suffix for player kill records
// observed on this world: " Pvp", " Bounty" or "".
func (w World) PlayerKillsSuffix() string {
	switch {
	case w.Has(WorldPvp):
		return " Pvp"
	case w.Has(WorldBounty):
		return " Bounty"
	default:
		return ""
	}
}
