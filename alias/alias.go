// Package alias maps the short names players type in chat commands to the
// canonical boss, activity and skill names used as stat categories.
package alias

import (
	"maps"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// bossAliases is keyed by the lower-cased, trimmed alias.
var bossAliases = map[string]string{
	"corp":          "Corporeal Beast",
	"jad":           "TzTok-Jad",
	"kq":            "Kalphite Queen",
	"chaos ele":     "Chaos Elemental",
	"dusk":          "Grotesque Guardians",
	"dawn":          "Grotesque Guardians",
	"gargs":         "Grotesque Guardians",
	"crazy arch":    "Crazy Archaeologist",
	"deranged arch": "Deranged Archaeologist",
	"mole":          "Giant Mole",
	"vetion":        "Vet'ion",
	"vene":          "Venenatis",
	"kbd":           "King Black Dragon",
	"vork":          "Vorkath",
	"sire":          "Abyssal Sire",
	"smoke devil":   "Thermonuclear Smoke Devil",
	"thermy":        "Thermonuclear Smoke Devil",
	"cerb":          "Cerberus",
	"zuk":           "TzKal-Zuk",
	"inferno":       "TzKal-Zuk",
	"hydra":         "Alchemical Hydra",

	// gwd
	"sara":            "Commander Zilyana",
	"saradomin":       "Commander Zilyana",
	"zilyana":         "Commander Zilyana",
	"zily":            "Commander Zilyana",
	"zammy":           "K'ril Tsutsaroth",
	"zamorak":         "K'ril Tsutsaroth",
	"kril":            "K'ril Tsutsaroth",
	"kril trutsaroth": "K'ril Tsutsaroth",
	"arma":            "Kree'arra",
	"kree":            "Kree'arra",
	"kreearra":        "Kree'arra",
	"armadyl":         "Kree'arra",
	"bando":           "General Graardor",
	"bandos":          "General Graardor",
	"graardor":        "General Graardor",

	// dks
	"supreme": "Dagannoth Supreme",
	"rex":     "Dagannoth Rex",
	"prime":   "Dagannoth Prime",

	"wt":      "Wintertodt",
	"barrows": "Barrows Chests",
	"herbi":   "Herbiboar",

	// cox
	"cox":      "Chambers of Xeric",
	"xeric":    "Chambers of Xeric",
	"chambers": "Chambers of Xeric",
	"olm":      "Chambers of Xeric",
	"raids":    "Chambers of Xeric",

	// cox cm
	"cox cm":      "Chambers of Xeric Challenge Mode",
	"xeric cm":    "Chambers of Xeric Challenge Mode",
	"chambers cm": "Chambers of Xeric Challenge Mode",
	"olm cm":      "Chambers of Xeric Challenge Mode",
	"raids cm":    "Chambers of Xeric Challenge Mode",

	// tob
	"tob":          "Theatre of Blood",
	"theatre":      "Theatre of Blood",
	"verzik":       "Theatre of Blood",
	"verzik vitur": "Theatre of Blood",
	"raids 2":      "Theatre of Blood",

	// agility courses
	"prif":       "Prifddinas Agility Course",
	"prifddinas": "Prifddinas Agility Course",

	"gaunt":     "Gauntlet",
	"gauntlet":  "Gauntlet",
	"cgaunt":    "Corrupted Gauntlet",
	"cgauntlet": "Corrupted Gauntlet",

	"pks":     "Player Kills",
	"pks bh":  "Player Kills Bounty",
	"pks pvp": "Player Kills Pvp",
}

// Boss resolves a user-typed boss or activity alias to its canonical name.
// Unknown input is returned with the first letter of each word upper-cased.
func Boss(input string) string {
	key := strings.ToLower(strings.TrimSpace(input))
	if name, ok := bossAliases[key]; ok {
		return name
	}
	return capitalize(strings.TrimSpace(input))
}

// BossAliases returns a copy of the alias table.
func BossAliases() map[string]string {
	return maps.Clone(bossAliases)
}

// capitalize upper-cases the first letter of every whitespace separated word
// and leaves the rest of the word as typed, so "3rd age" becomes "3rd Age" and
// "dagannoth-kings" becomes "Dagannoth-kings".
func capitalize(s string) string {
	if s == "" {
		return s
	}
	upper := cases.Upper(language.Und)
	var b strings.Builder
	b.Grow(len(s))
	wordStart := true
	for _, r := range s {
		if wordStart && !unicode.IsSpace(r) {
			b.WriteString(upper.String(string(r)))
		} else {
			b.WriteRune(r)
		}
		wordStart = unicode.IsSpace(r)
	}
	return b.String()
}
