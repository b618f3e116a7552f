package session

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/onnwee/kc-tender/chatcommands"
	"github.com/onnwee/kc-tender/command"
	"github.com/onnwee/kc-tender/stats"
	"github.com/onnwee/kc-tender/statsapi"
	"github.com/onnwee/kc-tender/testutil"
	"github.com/onnwee/kc-tender/tracker"
)

type harness struct {
	loop  *Loop
	stats *stats.Stats
	svc   *chatcommands.Service
	reg   *command.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := stats.New(stats.NewMemoryStore())
	svc := &chatcommands.Service{Flags: chatcommands.AllEnabled(), Stats: st}
	svc.SetLocal(chatcommands.LocalPlayer{Name: "Zezima"})
	p := command.NewPipeline(2, nil)
	t.Cleanup(p.Wait)
	reg := command.NewRegistry(p, nil)
	loop := New(Config{Tracker: tracker.New(st, nil), Registry: reg, Players: svc})
	return &harness{loop: loop, stats: st, svc: svc, reg: reg}
}

func (h *harness) game(text string) {
	h.loop.Handle(context.Background(), Chat{Message: command.NewMessage(command.GameMessage, "", text)})
}

func (h *harness) kc(t *testing.T, category string) int {
	t.Helper()
	n, err := h.stats.KillCount(context.Background(), "Zezima", category)
	if err != nil {
		t.Fatalf("KillCount(%s): %v", category, err)
	}
	return n
}

func (h *harness) wantKC(t *testing.T, category string, want int) {
	t.Helper()
	if got := h.kc(t, category); got != want {
		t.Errorf("kill count of %s = %d, want %d", category, got, want)
	}
}

func (h *harness) pb(t *testing.T, category string) int {
	t.Helper()
	n, err := h.stats.PersonalBest(context.Background(), "Zezima", category)
	if err != nil {
		t.Fatalf("PersonalBest(%s): %v", category, err)
	}
	return n
}

func TestLoop_CorrelatesCountThenDuration(t *testing.T) {
	h := newHarness(t)
	h.game("Your Zulrah kill count is: <col=ff0000>42</col>.")
	h.game("Fight duration: <col=ff0000>2:30</col>. Personal best: 1:58")

	h.wantKC(t, "Zulrah", 42)
	if got := h.pb(t, "Zulrah"); got != 118 {
		t.Errorf("personal best = %d, want 118", got)
	}
	if h.loop.State().Pending() {
		t.Error("correlation still pending")
	}
}

func TestLoop_CorrelatesDurationThenCount(t *testing.T) {
	h := newHarness(t)
	h.game("Fight duration: <col=ff0000>1:45</col> (new personal best)")
	h.game("Your Vorkath kill count is: <col=ff0000>12</col>.")

	h.wantKC(t, "Vorkath", 12)
	if got := h.pb(t, "Vorkath"); got != 105 {
		t.Errorf("personal best = %d, want 105", got)
	}
}

func TestLoop_OnlyGameLinesReachExtraction(t *testing.T) {
	h := newHarness(t)
	h.loop.Handle(context.Background(), Chat{
		Message: command.NewMessage(command.PublicChat, "Troll", "Your Zulrah kill count is: <col=ff0000>9999</col>."),
	})
	h.wantKC(t, "Zulrah", 0)
}

func TestLoop_NoLocalPlayer(t *testing.T) {
	h := newHarness(t)
	h.svc.SetLocal(chatcommands.LocalPlayer{})
	h.game("Your Zulrah kill count is: <col=ff0000>42</col>.")

	all, err := h.stats.KillCounts(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("stored %v without a local player", all)
	}
}

func TestLoop_AccountChangeResetsCorrelation(t *testing.T) {
	h := newHarness(t)
	h.game("Your Zulrah kill count is: <col=ff0000>42</col>.")
	if !h.loop.State().HasPendingSubject {
		t.Fatal("kill count did not leave a pending subject")
	}

	h.loop.Handle(context.Background(), AccountChanged{Player: chatcommands.LocalPlayer{Name: "Alt", Account: chatcommands.AccountIronman}})
	if h.loop.State().Pending() {
		t.Error("correlation survived an account change")
	}
	if got := h.svc.Local().Name; got != "Alt" {
		t.Errorf("local player = %q, want Alt", got)
	}

	h.loop.Handle(context.Background(), AccountChanged{Player: chatcommands.LocalPlayer{Name: "Alt", World: stats.WorldPvp}})
	if got := h.svc.Local().World; got != stats.WorldPvp {
		t.Errorf("world = %v, want %v", got, stats.WorldPvp)
	}
}

func TestLoop_Widgets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.loop.Handle(ctx, KillLog{Entries: []tracker.KillLogEntry{{Name: "Zulrah:", Count: "1,234"}}})
	h.wantKC(t, "Zulrah", 1234)

	h.loop.Handle(ctx, PlayerVars{QuestPoints: 250, GambleCount: 7})
	h.wantKC(t, stats.QuestPoints, 250)
	h.wantKC(t, stats.GambleCount, 7)

	h.loop.Handle(ctx, AccountChanged{Player: chatcommands.LocalPlayer{Name: "Zezima", World: stats.WorldPvp}})
	h.loop.Handle(ctx, PlayerKills{Kills: 10, Deaths: 4})
	h.wantKC(t, "Player Kills Pvp", 10)
	h.wantKC(t, "Player Deaths Pvp", 4)

	h.loop.Handle(ctx, AccountChanged{Player: chatcommands.LocalPlayer{Name: "Zezima"}})
	h.loop.Handle(ctx, WildernessStats{Text: "Kills: <col=ffffff>1,002</col><br>Deaths: <col=ffffff>3</col>"})
	h.wantKC(t, stats.PlayerKills, 1002)
	h.wantKC(t, stats.PlayerDeaths, 3)

	h.loop.Handle(ctx, WildernessStats{Text: "nothing here"})
	h.wantKC(t, stats.PlayerKills, 1002)
}

func TestLoop_DispatchReplies(t *testing.T) {
	h := newHarness(t)
	h.reg.Register(command.Command{
		Prefix: "!ping",
		Lookup: func(_ context.Context, msg *command.Message, _ string) { msg.SetResponse("pong") },
	})

	var replies []string
	reply := func(s string) { replies = append(replies, s) }
	h.loop.Handle(context.Background(), Chat{Message: command.NewMessage(command.PublicChat, "Bob", "!PING"), Reply: reply})
	h.loop.Handle(context.Background(), Chat{Message: command.NewMessage(command.PublicChat, "Bob", "hello"), Reply: reply})

	if !slices.Equal(replies, []string{"pong"}) {
		t.Errorf("replies = %q, want [pong]", replies)
	}
}

func TestLoop_InputWithoutSubmissionIsSentImmediately(t *testing.T) {
	h := newHarness(t)
	h.reg.Register(command.Command{
		Prefix: "!ping",
		Lookup: func(_ context.Context, msg *command.Message, _ string) { msg.SetResponse("pong from " + msg.Name) },
	})

	result := make(chan Submission, 1)
	var replies []string
	h.loop.Handle(context.Background(), Input{
		Text:   "!ping",
		Reply:  func(s string) { replies = append(replies, s) },
		Result: result,
	})

	if (<-result).Initiated {
		t.Error("submission initiated without a submit operation")
	}
	if !slices.Equal(replies, []string{"pong from Zezima"}) {
		t.Errorf("replies = %q", replies)
	}
}

func TestEnqueue_AfterStop(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.loop.Run(ctx) }()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() = %v", err)
	}

	if err := h.loop.Enqueue(context.Background(), PlayerVars{}); !errors.Is(err, ErrStopped) {
		t.Errorf("Enqueue() after stop = %v, want ErrStopped", err)
	}
}

func TestLoop_SubmitThenEchoLookup(t *testing.T) {
	h := newHarness(t)
	srv := testutil.NewMockStatsServer(t)
	h.svc.Chat = &statsapi.Client{BaseURL: srv.URL}
	h.svc.Register(h.reg)
	if err := h.stats.SetKillCount(context.Background(), "Zezima", "Zulrah", 42); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = h.loop.Run(ctx) }()

	replies := make(chan string, 1)
	result := make(chan Submission, 1)
	err := h.loop.Enqueue(ctx, Input{
		Text:   "!kc zulrah",
		Reply:  func(s string) { replies <- s },
		Result: result,
	})
	if err != nil {
		t.Fatalf("Enqueue() = %v", err)
	}

	sub := <-result
	if !sub.Initiated {
		t.Fatal("submission not initiated")
	}
	if err := sub.Task.Err(); err != nil {
		t.Fatalf("submission failed: %v", err)
	}

	select {
	case got := <-replies:
		if got != "Zulrah kill count: 42" {
			t.Errorf("reply = %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reply after submission")
	}
	subs := srv.Submissions()
	if len(subs) != 1 {
		t.Fatalf("submissions = %d, want 1", len(subs))
	}
	if got := subs[0].Query.Get("kc"); got != "42" {
		t.Errorf("submitted kc = %q, want 42", got)
	}
}

func TestLoop_SubmitNothingStored(t *testing.T) {
	h := newHarness(t)
	h.svc.Chat = &statsapi.Client{BaseURL: testutil.NewMockStatsServer(t).URL}
	h.svc.Register(h.reg)

	result := make(chan Submission, 1)
	h.loop.Handle(context.Background(), Input{Text: "!kc zulrah", Result: result})
	if (<-result).Initiated {
		t.Error("submission initiated with nothing stored")
	}
}
