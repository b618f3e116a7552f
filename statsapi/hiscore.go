package statsapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Endpoint selects which hiscore leaderboard a player is looked up on.
type Endpoint string

const (
	EndpointNormal          Endpoint = "normal"
	EndpointIronman         Endpoint = "ironman"
	EndpointUltimateIronman Endpoint = "ultimate_ironman"
	EndpointHardcoreIronman Endpoint = "hardcore_ironman"
	EndpointLeague          Endpoint = "league"
)

// ErrPlayerNotFound is returned when the hiscores have no entry for a player.
var ErrPlayerNotFound = errors.New("player not found on hiscores")

// Skill is one hiscore row. Unranked rows report -1.
type Skill struct {
	Rank       int   `json:"rank"`
	Level      int   `json:"level"`
	Experience int64 `json:"experience"`
}

// HiscoreResult holds every row of a player's hiscore entry keyed by the
// lower-cased row name, for example "attack", "overall" or "clue_scroll_all".
type HiscoreResult struct {
	Player string           `json:"player"`
	Skills map[string]Skill `json:"skills"`
}

// Skill returns the row for a skill or activity name.
func (r *HiscoreResult) Skill(name string) (Skill, bool) {
	if r == nil {
		return Skill{}, false
	}
	s, ok := r.Skills[strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))]
	return s, ok
}

// Level returns the level of a skill, or 1 when the row is missing or
// unranked.
func (r *HiscoreResult) Level(name string) int {
	s, ok := r.Skill(name)
	if !ok || s.Level < 1 {
		return 1
	}
	return s.Level
}

// ClueTiers are the clue scroll rows in display order; "all" is the total.
var ClueTiers = []string{"beginner", "easy", "medium", "hard", "elite", "master", "all"}

// Clue returns the clue scroll row for tier ("beginner" ... "master", "all").
func (r *HiscoreResult) Clue(tier string) (Skill, bool) {
	return r.Skill("clue_scroll_" + strings.ToLower(tier))
}

// HiscoreClient looks players up on the hiscores.
type HiscoreClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Lookup returns the hiscore entry of player on endpoint.
func (c *HiscoreClient) Lookup(ctx context.Context, player string, endpoint Endpoint) (*HiscoreResult, error) {
	if player == "" {
		return nil, fmt.Errorf("player empty")
	}
	if endpoint == "" {
		endpoint = EndpointNormal
	}
	hc := http.DefaultClient
	if c.HTTPClient != nil {
		hc = c.HTTPClient
	}
	base := DefaultBaseURL
	if c.BaseURL != "" {
		base = strings.TrimRight(c.BaseURL, "/")
	}

	var out HiscoreResult
	err := do(ctx, hc, http.MethodGet, base+"/hiscore/"+string(endpoint), "hiscore_lookup",
		url.Values{"username": {player}}, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, player)
		}
		return nil, err
	}
	return &out, nil
}
