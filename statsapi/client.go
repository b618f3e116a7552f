// Package statsapi is a client for the remote statistics service that shares
// player kill counts, personal bests and other chat command data, plus the
// hiscore and item price lookups the commands consume.
//
// Every transport failure and every non-2xx answer wraps ErrNetwork:
//
//	kc, err := c.KillCount(ctx, "alice", "Zulrah")
//	if errors.Is(err, statsapi.ErrNetwork) { ... }
package statsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/onnwee/kc-tender/telemetry"
)

// ErrNetwork is wrapped by every error caused by the remote service being
// unreachable or answering with a failure status.
var ErrNetwork = errors.New("stats service unavailable")

// DefaultBaseURL is used when Client.BaseURL is empty.
const DefaultBaseURL = "https://api.runelite.net/runelite-1.6.0"

// StatusError reports a non-2xx answer. It wraps ErrNetwork.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s: status %d: %s", ErrNetwork, e.Op, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrNetwork }

// Duels is a player's duel arena record.
type Duels struct {
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
	WinningStreak int `json:"winningStreak"`
	LosingStreak  int `json:"losingStreak"`
}

// PlayerKills is a player's kill/death record, overall and per world type.
type PlayerKills struct {
	Kills        int `json:"kills"`
	Deaths       int `json:"deaths"`
	KillsBounty  int `json:"killsBounty"`
	DeathsBounty int `json:"deathsBounty"`
	KillsPvp     int `json:"killsPvp"`
	DeathsPvp    int `json:"deathsPvp"`
}

// Client talks to the chat endpoints of the statistics service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) http() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return DefaultBaseURL
}

// KillCount returns the shared kill count of player for boss.
func (c *Client) KillCount(ctx context.Context, player, boss string) (int, error) {
	var kc int
	err := c.get(ctx, "kc", url.Values{"name": {player}, "boss": {boss}}, &kc)
	return kc, err
}

// SubmitKillCount shares the kill count of player for boss.
func (c *Client) SubmitKillCount(ctx context.Context, player, boss string, kc int) error {
	return c.post(ctx, "kc", url.Values{"name": {player}, "boss": {boss}, "kc": {strconv.Itoa(kc)}})
}

// PersonalBest returns the shared personal best of player for boss in seconds.
func (c *Client) PersonalBest(ctx context.Context, player, boss string) (int, error) {
	var pb int
	err := c.get(ctx, "pb", url.Values{"name": {player}, "boss": {boss}}, &pb)
	return pb, err
}

// SubmitPersonalBest shares the personal best of player for boss in seconds.
func (c *Client) SubmitPersonalBest(ctx context.Context, player, boss string, seconds int) error {
	return c.post(ctx, "pb", url.Values{"name": {player}, "boss": {boss}, "pb": {strconv.Itoa(seconds)}})
}

// QuestPoints returns the shared quest points of player.
func (c *Client) QuestPoints(ctx context.Context, player string) (int, error) {
	var qp int
	err := c.get(ctx, "qp", url.Values{"name": {player}}, &qp)
	return qp, err
}

// SubmitQuestPoints shares the quest points of player.
func (c *Client) SubmitQuestPoints(ctx context.Context, player string, qp int) error {
	return c.post(ctx, "qp", url.Values{"name": {player}, "qp": {strconv.Itoa(qp)}})
}

// GambleCount returns the shared Barbarian Assault gamble count of player.
func (c *Client) GambleCount(ctx context.Context, player string) (int, error) {
	var gc int
	err := c.get(ctx, "gc", url.Values{"name": {player}}, &gc)
	return gc, err
}

// SubmitGambleCount shares the gamble count of player.
func (c *Client) SubmitGambleCount(ctx context.Context, player string, gc int) error {
	return c.post(ctx, "gc", url.Values{"name": {player}, "gc": {strconv.Itoa(gc)}})
}

// Duels returns the shared duel arena record of player.
func (c *Client) Duels(ctx context.Context, player string) (Duels, error) {
	var d Duels
	err := c.get(ctx, "duels", url.Values{"name": {player}}, &d)
	return d, err
}

// SubmitDuels shares the duel arena record of player.
func (c *Client) SubmitDuels(ctx context.Context, player string, d Duels) error {
	return c.post(ctx, "duels", url.Values{
		"name":          {player},
		"wins":          {strconv.Itoa(d.Wins)},
		"losses":        {strconv.Itoa(d.Losses)},
		"winningStreak": {strconv.Itoa(d.WinningStreak)},
		"losingStreak":  {strconv.Itoa(d.LosingStreak)},
	})
}

// PlayerKills returns the shared kill/death record of player.
func (c *Client) PlayerKills(ctx context.Context, player string) (PlayerKills, error) {
	var pk PlayerKills
	err := c.get(ctx, "pks", url.Values{"name": {player}}, &pk)
	return pk, err
}

// SubmitPlayerKills shares the kill/death record of player.
func (c *Client) SubmitPlayerKills(ctx context.Context, player string, pk PlayerKills) error {
	return c.post(ctx, "pks", url.Values{
		"name":         {player},
		"kills":        {strconv.Itoa(pk.Kills)},
		"deaths":       {strconv.Itoa(pk.Deaths)},
		"killsBounty":  {strconv.Itoa(pk.KillsBounty)},
		"deathsBounty": {strconv.Itoa(pk.DeathsBounty)},
		"killsPvp":     {strconv.Itoa(pk.KillsPvp)},
		"deathsPvp":    {strconv.Itoa(pk.DeathsPvp)},
	})
}

func (c *Client) get(ctx context.Context, op string, q url.Values, out any) error {
	return do(ctx, c.http(), http.MethodGet, c.base()+"/chat/"+op, "chat_get_"+op, q, out)
}

func (c *Client) post(ctx context.Context, op string, q url.Values) error {
	return do(ctx, c.http(), http.MethodPost, c.base()+"/chat/"+op, "chat_submit_"+op, q, nil)
}

// do performs one request and decodes a JSON answer into out when out is
// non-nil. metric names the request in the remote duration histogram.
func do(ctx context.Context, hc *http.Client, method, endpoint, metric string, q url.Values, out any) error {
	start := time.Now()
	defer func() { telemetry.ObserveRemote(metric, time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", metric, err)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNetwork, metric, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Op: metric, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode: %v", ErrNetwork, metric, err)
	}
	return nil
}
