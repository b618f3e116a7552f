package alias

import (
	"maps"
	"strings"
)

var skillAliases = map[string]string{
	"atk":          "Attack",
	"att":          "Attack",
	"def":          "Defence",
	"str":          "Strength",
	"hp":           "Hitpoints",
	"range":        "Ranged",
	"ranging":      "Ranged",
	"rng":          "Ranged",
	"pray":         "Prayer",
	"mag":          "Magic",
	"mage":         "Magic",
	"cook":         "Cooking",
	"wc":           "Woodcutting",
	"wood":         "Woodcutting",
	"woodcut":      "Woodcutting",
	"fletch":       "Fletching",
	"fish":         "Fishing",
	"fm":           "Firemaking",
	"fire":         "Firemaking",
	"craft":        "Crafting",
	"smith":        "Smithing",
	"mine":         "Mining",
	"hlore":        "Herblore",
	"herbi":        "Herblore",
	"agil":         "Agility",
	"thief":        "Thieving",
	"slay":         "Slayer",
	"farm":         "Farming",
	"rc":           "Runecraft",
	"runecrafting": "Runecraft",
	"hunt":         "Hunter",
	"con":          "Construction",
	"construct":    "Construction",
	"all":          "Overall",
	"total":        "Overall",
}

// Skill resolves a skill abbreviation to the hiscore skill name.
func Skill(input string) string {
	key := strings.ToLower(strings.TrimSpace(input))
	if name, ok := skillAliases[key]; ok {
		return name
	}
	return capitalize(strings.TrimSpace(input))
}

// SkillAliases returns a copy of the skill abbreviation table.
func SkillAliases() map[string]string {
	return maps.Clone(skillAliases)
}
