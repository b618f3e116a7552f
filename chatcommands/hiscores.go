package chatcommands

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/onnwee/kc-tender/alias"
	"github.com/onnwee/kc-tender/command"
	"github.com/onnwee/kc-tender/statsapi"
)

// hiscoreSkills are the skill rows !lvl answers for.
var hiscoreSkills = map[string]bool{
	"Overall": true, "Attack": true, "Defence": true, "Strength": true,
	"Hitpoints": true, "Ranged": true, "Prayer": true, "Magic": true,
	"Cooking": true, "Woodcutting": true, "Fletching": true, "Fishing": true,
	"Firemaking": true, "Crafting": true, "Smithing": true, "Mining": true,
	"Herblore": true, "Agility": true, "Thieving": true, "Slayer": true,
	"Farming": true, "Runecraft": true, "Hunter": true, "Construction": true,
}

func (s *Service) totalLevelLookup(ctx context.Context, msg *command.Message, text string) {
	s.levelLookup(ctx, msg, "Overall")
}

func (s *Service) skillLookup(ctx context.Context, msg *command.Message, text string) {
	search := argument(text, LevelCommand)
	if search == "" {
		return
	}
	s.levelLookup(ctx, msg, alias.Skill(search))
}

func (s *Service) levelLookup(ctx context.Context, msg *command.Message, skill string) {
	if !s.Flags.Level || !hiscoreSkills[skill] {
		return
	}
	player, endpoint := s.hiscoreTarget(msg)

	ctx, cancel := s.lookupContext(ctx)
	defer cancel()
	res, err := s.Hiscores.Lookup(ctx, player, endpoint)
	if err != nil {
		s.lookupFailed(ctx, LevelCommand, "skill level", err)
		return
	}
	row, ok := res.Skill(skill)
	if !ok {
		return
	}
	s.respond(ctx, msg, fmt.Sprintf("Level %s: %s Experience: %s Rank: %s",
		skill, humanize.Comma(int64(row.Level)), humanize.Comma(row.Experience), humanize.Comma(int64(row.Rank))))
}

func (s *Service) combatLevelLookup(ctx context.Context, msg *command.Message, text string) {
	if !s.Flags.Level {
		return
	}
	player := s.player(msg)

	ctx, cancel := s.lookupContext(ctx)
	defer cancel()
	res, err := s.Hiscores.Lookup(ctx, player, statsapi.EndpointNormal)
	if err != nil {
		s.lookupFailed(ctx, CombatCommand, "combat levels", err)
		return
	}

	lv := CombatLevels{
		Attack:    res.Level("attack"),
		Strength:  res.Level("strength"),
		Defence:   res.Level("defence"),
		Hitpoints: res.Level("hitpoints"),
		Ranged:    res.Level("ranged"),
		Prayer:    res.Level("prayer"),
		Magic:     res.Level("magic"),
	}
	s.respond(ctx, msg, fmt.Sprintf("Combat Level: %d A: %d S: %d D: %d H: %d R: %d P: %d M: %d",
		lv.Combat(), lv.Attack, lv.Strength, lv.Defence, lv.Hitpoints, lv.Ranged, lv.Prayer, lv.Magic))
}

// CombatLevels are the skill levels combat level is derived from.
type CombatLevels struct {
	Attack, Strength, Defence, Hitpoints, Ranged, Prayer, Magic int
}

// Combat returns the combat level.
func (l CombatLevels) Combat() int {
	base := 0.25 * float64(l.Defence+l.Hitpoints+l.Prayer/2)
	melee := 0.325 * float64(l.Attack+l.Strength)
	ranged := 0.325 * math.Floor(float64(3*l.Ranged)/2)
	magic := 0.325 * math.Floor(float64(3*l.Magic)/2)
	return int(math.Floor(base + max(melee, ranged, magic)))
}

// clueTier maps a !clues argument to its hiscore tier.
func clueTier(search string) (string, bool) {
	switch search {
	case "all", "total":
		return "all", true
	case "beginner", "easy", "medium", "hard", "elite", "master":
		return search, true
	default:
		return "", false
	}
}

func (s *Service) clueLookup(ctx context.Context, msg *command.Message, text string) {
	if !s.Flags.Clue {
		return
	}
	search := strings.ToLower(argument(text, CluesCommand))
	if search == "" {
		search = "total"
	}
	tier, ok := clueTier(search)
	if !ok {
		return
	}
	player, endpoint := s.hiscoreTarget(msg)

	ctx, cancel := s.lookupContext(ctx)
	defer cancel()
	res, err := s.Hiscores.Lookup(ctx, player, endpoint)
	if err != nil {
		s.lookupFailed(ctx, CluesCommand, "clue scrolls", err)
		return
	}
	row, ok := res.Clue(tier)
	if !ok || row.Level == -1 {
		return
	}

	response := fmt.Sprintf("Clue scroll (%s): %s", search, humanize.Comma(int64(row.Level)))
	if row.Rank != -1 {
		response += " Rank: " + humanize.Comma(int64(row.Rank))
	}
	s.respond(ctx, msg, response)
}

func (s *Service) itemPriceLookup(ctx context.Context, msg *command.Message, text string) {
	if !s.Flags.Price {
		return
	}
	search := argument(text, PriceCommand)
	if search == "" {
		return
	}

	ctx, cancel := s.lookupContext(ctx)
	defer cancel()
	items, err := s.Items.Search(ctx, search)
	if err != nil {
		s.lookupFailed(ctx, PriceCommand, "item price", err)
		return
	}
	item, ok := statsapi.BestMatch(items, search)
	if !ok {
		return
	}
	s.respond(ctx, msg, fmt.Sprintf("Price of %s: GE average %s HA value %s",
		item.Name, humanize.Comma(int64(item.Price)), humanize.Comma(int64(item.HighAlchemy()))))
}
