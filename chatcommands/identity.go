package chatcommands

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/onnwee/kc-tender/command"
	"github.com/onnwee/kc-tender/statsapi"
	"github.com/onnwee/kc-tender/stats"
)

// AccountType is the local player's account type.
type AccountType string

const (
	AccountNormal          AccountType = "normal"
	AccountIronman         AccountType = "ironman"
	AccountUltimateIronman AccountType = "ultimate_ironman"
	AccountHardcoreIronman AccountType = "hardcore_ironman"
)

// Endpoint returns the hiscore leaderboard of the account type.
func (a AccountType) Endpoint() statsapi.Endpoint {
	switch a {
	case AccountIronman:
		return statsapi.EndpointIronman
	case AccountUltimateIronman:
		return statsapi.EndpointUltimateIronman
	case AccountHardcoreIronman:
		return statsapi.EndpointHardcoreIronman
	default:
		return statsapi.EndpointNormal
	}
}

// ParseAccountType parses an account type name. Empty means normal.
func ParseAccountType(s string) (AccountType, error) {
	switch a := AccountType(strings.ToLower(strings.TrimSpace(s))); a {
	case "", AccountNormal:
		return AccountNormal, nil
	case AccountIronman, AccountUltimateIronman, AccountHardcoreIronman:
		return a, nil
	default:
		return "", fmt.Errorf("unknown account type %q", s)
	}
}

// ParseWorld parses world type names ("pvp", "bounty", "league") into flags.
// Empty names are ignored.
func ParseWorld(names []string) (stats.World, error) {
	var w stats.World
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "":
		case "pvp":
			w |= stats.WorldPvp
		case "bounty":
			w |= stats.WorldBounty
		case "league":
			w |= stats.WorldLeague
		default:
			return 0, fmt.Errorf("unknown world type %q", n)
		}
	}
	return w, nil
}

// LocalPlayer is the logged-in player the statistics belong to.
type LocalPlayer struct {
	Name    string
	Account AccountType
	World   stats.World
}

// Endpoint returns the leaderboard the local player is ranked on.
func (p LocalPlayer) Endpoint() statsapi.Endpoint {
	if p.World.Has(stats.WorldLeague) {
		return statsapi.EndpointLeague
	}
	return p.Account.Endpoint()
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// Sanitize strips icon and color tags from a displayed name and replaces
// non-breaking spaces.
func Sanitize(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(tagRe.ReplaceAllString(name, ""), "\u00a0", " "))
}

// IconEndpoint returns the leaderboard implied by the account icon in a
// displayed name.
func IconEndpoint(name string) statsapi.Endpoint {
	switch {
	case strings.Contains(name, "<img=2>"):
		return statsapi.EndpointIronman
	case strings.Contains(name, "<img=3>"):
		return statsapi.EndpointUltimateIronman
	case strings.Contains(name, "<img=10>"):
		return statsapi.EndpointHardcoreIronman
	default:
		return statsapi.EndpointNormal
	}
}

// player returns who a message's lookup is about. Outgoing private messages
// are sent by the local player.
func (s *Service) player(msg *command.Message) string {
	if msg.Type == command.PrivateChatOut {
		return s.Local().Name
	}
	return Sanitize(msg.Name)
}

// hiscoreTarget returns the player and leaderboard for a hiscore lookup.
func (s *Service) hiscoreTarget(msg *command.Message) (string, statsapi.Endpoint) {
	local := s.Local()
	if msg.Type == command.PrivateChatOut {
		return local.Name, local.Endpoint()
	}
	player := Sanitize(msg.Name)
	if local.Name != "" && player == local.Name {
		return local.Name, local.Endpoint()
	}
	if (msg.Type == command.PublicChat || msg.Type == command.ModChat) && local.World.Has(stats.WorldLeague) {
		return player, statsapi.EndpointLeague
	}
	return player, IconEndpoint(msg.Name)
}
