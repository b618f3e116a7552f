package alias

import (
	"strings"
	"testing"
)

func TestBoss_KnownAliases(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"jad", "TzTok-Jad"},
		{"JAD", "TzTok-Jad"},
		{"  jad  ", "TzTok-Jad"},
		{"corp", "Corporeal Beast"},
		{"vork", "Vorkath"},
		{"zammy", "K'ril Tsutsaroth"},
		{"kril", "K'ril Tsutsaroth"},
		{"bandos", "General Graardor"},
		{"cox cm", "Chambers of Xeric Challenge Mode"},
		{"raids 2", "Theatre of Blood"},
		{"wt", "Wintertodt"},
		{"barrows", "Barrows Chests"},
		{"pks bh", "Player Kills Bounty"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Boss(tt.input); got != tt.want {
				t.Errorf("Boss(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBoss_ManyToOne(t *testing.T) {
	for _, a := range []string{"dusk", "dawn", "gargs"} {
		if got := Boss(a); got != "Grotesque Guardians" {
			t.Errorf("Boss(%q) = %q, want Grotesque Guardians", a, got)
		}
	}
	for _, a := range []string{"sara", "saradomin", "zilyana", "zily"} {
		if got := Boss(a); got != "Commander Zilyana" {
			t.Errorf("Boss(%q) = %q, want Commander Zilyana", a, got)
		}
	}
}

func TestBoss_EveryAliasResolves(t *testing.T) {
	for a, want := range BossAliases() {
		if got := Boss(a); got != want {
			t.Errorf("Boss(%q) = %q, want %q", a, got, want)
		}
		if got := Boss(strings.ToUpper(a)); got != want {
			t.Errorf("Boss(%q) = %q, want %q", strings.ToUpper(a), got, want)
		}
	}
}

func TestBoss_UnknownIsCapitalized(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"zulrah", "Zulrah"},
		{"the nightmare", "The Nightmare"},
		{"Zulrah", "Zulrah"},
		{"raids 3", "Raids 3"},
		{"3rd age", "3rd Age"},
		{"dagannoth-kings", "Dagannoth-kings"},
		{"tzhaar-ket-rak's challenges", "Tzhaar-ket-rak's Challenges"},
		{"  ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Boss(tt.input); got != tt.want {
			t.Errorf("Boss(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBossAliases_ReturnsCopy(t *testing.T) {
	m := BossAliases()
	m["jad"] = "changed"
	if Boss("jad") != "TzTok-Jad" {
		t.Fatal("mutating the returned map changed the alias table")
	}
}

func TestSkill(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"att", "Attack"},
		{"WC", "Woodcutting"},
		{"rc", "Runecraft"},
		{"total", "Overall"},
		{"slayer", "Slayer"},
		{"magic", "Magic"},
	}

	for _, tt := range tests {
		if got := Skill(tt.input); got != tt.want {
			t.Errorf("Skill(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
	for a, want := range SkillAliases() {
		if got := Skill(a); got != want {
			t.Errorf("Skill(%q) = %q, want %q", a, got, want)
		}
	}
}
