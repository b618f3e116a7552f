package chatcommands

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/onnwee/kc-tender/command"
	"github.com/onnwee/kc-tender/statsapi"
	"github.com/onnwee/kc-tender/stats"
)

// fakeChat is an in-memory statistics service.
type fakeChat struct {
	mu      sync.Mutex
	fail    bool
	kc      map[string]int
	pb      map[string]int
	qp      int
	gc      int
	duels   statsapi.Duels
	pks     statsapi.PlayerKills
	submits []string
}

func newFakeChat() *fakeChat {
	return &fakeChat{kc: map[string]int{}, pb: map[string]int{}}
}

func (f *fakeChat) err() error {
	if f.fail {
		return statsapi.ErrNetwork
	}
	return nil
}

func key(player, boss string) string { return strings.ToLower(player + "|" + boss) }

func (f *fakeChat) KillCount(_ context.Context, player, boss string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.kc[key(player, boss)], f.err()
}

func (f *fakeChat) SubmitKillCount(_ context.Context, player, boss string, kc int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return err
	}
	f.kc[key(player, boss)] = kc
	f.submits = append(f.submits, "kc")
	return nil
}

func (f *fakeChat) PersonalBest(_ context.Context, player, boss string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pb[key(player, boss)], f.err()
}

func (f *fakeChat) SubmitPersonalBest(_ context.Context, player, boss string, seconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pb[key(player, boss)] = seconds
	f.submits = append(f.submits, "pb")
	return f.err()
}

func (f *fakeChat) QuestPoints(context.Context, string) (int, error) { return f.qp, f.err() }

func (f *fakeChat) SubmitQuestPoints(_ context.Context, _ string, qp int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.qp = qp
	f.submits = append(f.submits, "qp")
	return f.err()
}

func (f *fakeChat) GambleCount(context.Context, string) (int, error) { return f.gc, f.err() }

func (f *fakeChat) SubmitGambleCount(_ context.Context, _ string, gc int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gc = gc
	f.submits = append(f.submits, "gc")
	return f.err()
}

func (f *fakeChat) Duels(context.Context, string) (statsapi.Duels, error) { return f.duels, f.err() }

func (f *fakeChat) SubmitDuels(_ context.Context, _ string, d statsapi.Duels) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.duels = d
	f.submits = append(f.submits, "duels")
	return f.err()
}

func (f *fakeChat) PlayerKills(context.Context, string) (statsapi.PlayerKills, error) {
	return f.pks, f.err()
}

func (f *fakeChat) SubmitPlayerKills(_ context.Context, _ string, pk statsapi.PlayerKills) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pks = pk
	f.submits = append(f.submits, "pks")
	return f.err()
}

type fakeHiscores struct {
	res      *statsapi.HiscoreResult
	err      error
	player   string
	endpoint statsapi.Endpoint
}

func (f *fakeHiscores) Lookup(_ context.Context, player string, endpoint statsapi.Endpoint) (*statsapi.HiscoreResult, error) {
	f.player, f.endpoint = player, endpoint
	return f.res, f.err
}

type fakeItems struct {
	items []statsapi.ItemPrice
	err   error
}

func (f *fakeItems) Search(context.Context, string) ([]statsapi.ItemPrice, error) {
	return f.items, f.err
}

type fixture struct {
	svc      *Service
	chat     *fakeChat
	hiscores *fakeHiscores
	items    *fakeItems
	reg      *command.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		chat:     newFakeChat(),
		hiscores: &fakeHiscores{},
		items:    &fakeItems{},
	}
	f.svc = &Service{
		Flags:    AllEnabled(),
		Stats:    stats.New(stats.NewMemoryStore()),
		Chat:     f.chat,
		Hiscores: f.hiscores,
		Items:    f.items,
	}
	f.svc.SetLocal(LocalPlayer{Name: "Zezima", Account: AccountNormal})
	p := command.NewPipeline(2, nil)
	t.Cleanup(p.Wait)
	f.reg = command.NewRegistry(p, nil)
	f.svc.Register(f.reg)
	return f
}

func (f *fixture) lookup(typ command.ChatType, name, text string) (string, bool) {
	msg := command.NewMessage(typ, name, text)
	f.reg.Dispatch(context.Background(), msg)
	return msg.Response()
}

func (f *fixture) submit(t *testing.T, text string) bool {
	t.Helper()
	task, ok := f.reg.Submit(context.Background(), command.NewInput(text, nil))
	if ok {
		if err := task.Err(); err != nil {
			t.Fatalf("submit %q: %v", text, err)
		}
	}
	return ok
}

// wantReply dispatches text and checks the rewritten message.
func (f *fixture) wantReply(t *testing.T, typ command.ChatType, name, text, want string) {
	t.Helper()
	got, ok := f.lookup(typ, name, text)
	if !ok {
		t.Fatalf("%q: message not rewritten", text)
	}
	if got != want {
		t.Errorf("%q: reply = %q, want %q", text, got, want)
	}
}

// wantUnchanged dispatches text and checks the message was left alone.
func (f *fixture) wantUnchanged(t *testing.T, typ command.ChatType, name, text string) {
	t.Helper()
	if got, ok := f.lookup(typ, name, text); ok {
		t.Errorf("%q: rewritten to %q, want unchanged", text, got)
	}
}

func (f *fixture) setKC(t *testing.T, category string, n int) {
	t.Helper()
	if err := f.svc.Stats.SetKillCount(context.Background(), "Zezima", category, n); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) wantLookup(t *testing.T, player string, endpoint statsapi.Endpoint) {
	t.Helper()
	if f.hiscores.player != player || f.hiscores.endpoint != endpoint {
		t.Errorf("hiscore lookup = %q on %v, want %q on %v",
			f.hiscores.player, f.hiscores.endpoint, player, endpoint)
	}
}

func TestRegister_Order(t *testing.T) {
	f := newFixture(t)
	want := []string{"!total", "!cmb", "!price", "!lvl", "!clues", "!kc", "!qp", "!pb", "!gc", "!duels", "!pks"}
	if got := f.reg.Prefixes(); !slices.Equal(got, want) {
		t.Errorf("Prefixes() = %v, want %v", got, want)
	}
}

func TestKillCount_SubmitThenLookup(t *testing.T) {
	f := newFixture(t)
	f.setKC(t, "Zulrah", 42)

	if !f.submit(t, "!kc zulrah") {
		t.Fatal("!kc zulrah: nothing submitted")
	}
	if got := f.chat.kc[key("Zezima", "Zulrah")]; got != 42 {
		t.Errorf("submitted kc = %d, want 42", got)
	}
	f.wantReply(t, command.PrivateChatOut, "", "!kc zulrah", "Zulrah kill count: 42")
}

func TestKillCount_AliasResolution(t *testing.T) {
	f := newFixture(t)
	f.chat.kc[key("Lynx Titan", "TzTok-Jad")] = 7

	f.wantReply(t, command.PublicChat, "<img=2>Lynx Titan", "!kc jad", "TzTok-Jad kill count: 7")
}

func TestSubmit_NothingStored(t *testing.T) {
	f := newFixture(t)
	for _, text := range []string{"!kc zulrah", "!pb zulrah", "!qp", "!gc", "!duels", "!pks"} {
		if f.submit(t, text) {
			t.Errorf("%q: submitted with nothing stored", text)
		}
	}
	if len(f.chat.submits) != 0 {
		t.Errorf("submits = %v, want none", f.chat.submits)
	}
}

func TestSubmit_LookupOnlyCommands(t *testing.T) {
	f := newFixture(t)
	resumed := 0
	_, ok := f.reg.Submit(context.Background(), command.NewInput("!lvl attack", func() { resumed++ }))
	if ok {
		t.Error("!lvl initiated a submission")
	}
	if resumed != 1 {
		t.Errorf("resumed %d times, want 1", resumed)
	}
}

func TestPersonalBest(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.Stats.SetPersonalBest(context.Background(), "Zezima", "Zulrah", 150); err != nil {
		t.Fatal(err)
	}

	if !f.submit(t, "!pb zulrah") {
		t.Fatal("!pb zulrah: nothing submitted")
	}
	f.wantReply(t, command.PrivateChatOut, "", "!pb zulrah", "Zulrah personal best: 2:30")
}

func TestQuestPointsAndGambles(t *testing.T) {
	f := newFixture(t)
	f.setKC(t, stats.QuestPoints, 250)
	f.setKC(t, stats.GambleCount, 1200)

	for _, text := range []string{"!qp", "!gc"} {
		if !f.submit(t, text) {
			t.Errorf("%q: nothing submitted", text)
		}
	}
	f.wantReply(t, command.FriendsChat, "Zezima", "!qp", "Quest points: 250")
	f.wantReply(t, command.FriendsChat, "Zezima", "!gc", "Barbarian Assault High-level gambles: 1,200")
}

func TestDuels(t *testing.T) {
	f := newFixture(t)
	f.setKC(t, stats.DuelWins, 5)
	f.setKC(t, stats.DuelLosses, 2)
	f.setKC(t, stats.DuelLoseStreak, 3)

	if !f.submit(t, "!duels") {
		t.Fatal("!duels: nothing submitted")
	}
	if want := (statsapi.Duels{Wins: 5, Losses: 2, LosingStreak: 3}); f.chat.duels != want {
		t.Errorf("submitted duels = %+v, want %+v", f.chat.duels, want)
	}
	f.wantReply(t, command.PublicChat, "Zezima", "!duels", "Duel Arena wins: 5   losses: 2   streak: -3")
}

func TestPlayerKills(t *testing.T) {
	f := newFixture(t)
	f.setKC(t, "Player Kills Pvp", 5)
	f.setKC(t, "Player Deaths Pvp", 2)

	if !f.submit(t, "!pks") {
		t.Fatal("!pks: nothing submitted")
	}
	if want := (statsapi.PlayerKills{KillsPvp: 5, DeathsPvp: 2}); f.chat.pks != want {
		t.Errorf("submitted pks = %+v, want %+v", f.chat.pks, want)
	}

	f.wantReply(t, command.PublicChat, "Zezima", "!pks", "Player kills: 0   deaths: 0   ratio: N/A")

	f.svc.SetLocal(LocalPlayer{Name: "Zezima", World: stats.WorldPvp})
	f.wantReply(t, command.PublicChat, "Zezima", "!pks", "Player kills (Pvp): 5   deaths (Pvp): 2   ratio: 2.5")
}

func TestKillDeathRatio(t *testing.T) {
	tests := []struct {
		kills, deaths int
		want          string
	}{
		{0, 0, "N/A"},
		{7, 0, "N/A"},
		{5, 2, "2.5"},
		{10, 5, "2"},
		{1, 3, "0.33"},
	}
	for _, tt := range tests {
		if got := KillDeathRatio(tt.kills, tt.deaths); got != tt.want {
			t.Errorf("KillDeathRatio(%d, %d) = %q, want %q", tt.kills, tt.deaths, got, tt.want)
		}
	}
}

func TestLookup_FailureKeepsMessage(t *testing.T) {
	f := newFixture(t)
	f.chat.fail = true
	for _, text := range []string{"!kc zulrah", "!pb zulrah", "!qp", "!gc", "!duels", "!pks"} {
		f.wantUnchanged(t, command.PublicChat, "Zezima", text)
	}
}

func TestLookup_Disabled(t *testing.T) {
	f := newFixture(t)
	f.svc.Flags = Flags{}
	f.chat.kc[key("Zezima", "Zulrah")] = 3
	f.wantUnchanged(t, command.PublicChat, "Zezima", "!kc zulrah")
}

func TestLookup_MissingArgument(t *testing.T) {
	f := newFixture(t)
	for _, text := range []string{"!kc", "!kc   ", "!pb", "!price", "!lvl"} {
		f.wantUnchanged(t, command.PublicChat, "Zezima", text)
	}
}

func hiscore(rows map[string]statsapi.Skill) *statsapi.HiscoreResult {
	return &statsapi.HiscoreResult{Player: "x", Skills: rows}
}

func TestLevelLookup(t *testing.T) {
	f := newFixture(t)
	f.hiscores.res = hiscore(map[string]statsapi.Skill{
		"overall": {Rank: 1200, Level: 1850, Experience: 123456789},
		"attack":  {Rank: 5, Level: 99, Experience: 13034431},
	})

	f.wantReply(t, command.PublicChat, "<img=10>Hc Bob", "!lvl att", "Level Attack: 99 Experience: 13,034,431 Rank: 5")
	f.wantLookup(t, "Hc Bob", statsapi.EndpointHardcoreIronman)

	f.wantReply(t, command.PublicChat, "Bob", "!total", "Level Overall: 1,850 Experience: 123,456,789 Rank: 1,200")
	f.wantUnchanged(t, command.PublicChat, "Bob", "!lvl sailing")
}

func TestHiscoreTarget(t *testing.T) {
	f := newFixture(t)
	f.hiscores.res = hiscore(map[string]statsapi.Skill{"overall": {Level: 32}})
	f.svc.SetLocal(LocalPlayer{Name: "Zezima", Account: AccountUltimateIronman})

	f.lookup(command.PrivateChatOut, "Someone", "!total")
	f.wantLookup(t, "Zezima", statsapi.EndpointUltimateIronman)

	f.lookup(command.PublicChat, "<img=2>Zezima", "!total")
	f.wantLookup(t, "Zezima", statsapi.EndpointUltimateIronman)

	f.svc.SetLocal(LocalPlayer{Name: "Zezima", World: stats.WorldLeague})
	f.lookup(command.ModChat, "<img=3>Other", "!total")
	f.wantLookup(t, "Other", statsapi.EndpointLeague)

	f.lookup(command.FriendsChat, "<img=3>Other", "!total")
	f.wantLookup(t, "Other", statsapi.EndpointUltimateIronman)
}

func TestCombatLookup(t *testing.T) {
	f := newFixture(t)
	rows := map[string]statsapi.Skill{}
	for _, s := range []string{"attack", "strength", "defence", "hitpoints", "ranged", "prayer", "magic"} {
		rows[s] = statsapi.Skill{Level: 99}
	}
	f.hiscores.res = hiscore(rows)

	f.wantReply(t, command.PublicChat, "<img=2>Bob", "!cmb", "Combat Level: 126 A: 99 S: 99 D: 99 H: 99 R: 99 P: 99 M: 99")
	f.wantLookup(t, "Bob", statsapi.EndpointNormal)
}

func TestCombatLevels(t *testing.T) {
	tests := []struct {
		name string
		lv   CombatLevels
		want int
	}{
		{"fresh account", CombatLevels{1, 1, 1, 10, 1, 1, 1}, 3},
		{"maxed", CombatLevels{99, 99, 99, 99, 99, 99, 99}, 126},
		{"pure ranger", CombatLevels{1, 1, 1, 99, 99, 1, 1}, 73},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.lv.Combat(); got != tt.want {
				t.Errorf("Combat() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClueLookup(t *testing.T) {
	f := newFixture(t)
	f.hiscores.res = hiscore(map[string]statsapi.Skill{
		"clue_scroll_all":    {Rank: 300, Level: 55},
		"clue_scroll_hard":   {Rank: -1, Level: 4},
		"clue_scroll_master": {Rank: -1, Level: -1},
	})

	f.wantReply(t, command.PublicChat, "Bob", "!clues", "Clue scroll (total): 55 Rank: 300")
	f.wantReply(t, command.PublicChat, "Bob", "!clues Hard", "Clue scroll (hard): 4")
	f.wantUnchanged(t, command.PublicChat, "Bob", "!clues master")
	f.wantUnchanged(t, command.PublicChat, "Bob", "!clues mythic")
}

func TestPriceLookup(t *testing.T) {
	f := newFixture(t)
	f.items.items = []statsapi.ItemPrice{
		{ID: 12006, Name: "Abyssal tentacle", Price: 2000000},
		{ID: 4151, Name: "Abyssal whip", Price: 1500000, StorePrice: 120001},
	}

	f.wantReply(t, command.PublicChat, "Bob", "!price abyssal whip", "Price of Abyssal whip: GE average 1,500,000 HA value 72,001")

	f.items.items = nil
	f.wantUnchanged(t, command.PublicChat, "Bob", "!price nothing")

	f.items.err = errors.New("boom")
	f.wantUnchanged(t, command.PublicChat, "Bob", "!price abyssal whip")
}

func TestSanitize(t *testing.T) {
	names := map[string]string{
		"<img=2>Lynx Titan":     "Lynx Titan",
		"<col=ff0000>Bob</col>": "Bob",
	}
	for in, want := range names {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
	if got := IconEndpoint("<img=2>x"); got != statsapi.EndpointIronman {
		t.Errorf("IconEndpoint(ironman icon) = %v", got)
	}
	if got := IconEndpoint("x"); got != statsapi.EndpointNormal {
		t.Errorf("IconEndpoint(no icon) = %v", got)
	}
}
