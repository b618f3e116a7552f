package chat

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/onnwee/kc-tender/session"
)

// recordingSink collects enqueued events.
type recordingSink struct {
	mu     sync.Mutex
	events []session.Event
	got    chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{got: make(chan struct{}, 64)}
}

func (s *recordingSink) Enqueue(_ context.Context, ev session.Event) error {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	s.got <- struct{}{}
	return nil
}

func (s *recordingSink) wait(t *testing.T, n int) []session.Event {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.got:
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for event %d", i+1)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]session.Event(nil), s.events...)
}

func TestFollower_NewLines(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "chat.log")

	f, err := os.Create(logFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sink := newRecordingSink()
	fol := &Follower{Path: logFile, Config: FollowerConfig{MustExist: true, Poll: true, FromStart: true}}
	done := make(chan error, 1)
	go func() { done <- fol.Run(ctx, sink) }()

	if _, err := f.WriteString("12:00:01 [GAMEMESSAGE] : Your Zulrah kill count is: <col=ff0000>42</col>.\nnot a chat line\n[VARS] : 250 7\n"); err != nil {
		t.Fatal(err)
	}
	if err := f.Sync(); err != nil {
		t.Fatal(err)
	}

	events := sink.wait(t, 2)
	if _, ok := events[0].(session.Chat); !ok {
		t.Errorf("first event = %T, want session.Chat", events[0])
	}
	if v, ok := events[1].(session.PlayerVars); !ok || v.QuestPoints != 250 {
		t.Errorf("second event = %#v, want PlayerVars", events[1])
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("follower did not stop")
	}
}

func TestFollower_MissingFile(t *testing.T) {
	fol := &Follower{Path: filepath.Join(t.TempDir(), "missing.log"), Config: FollowerConfig{MustExist: true}}
	if err := fol.Run(context.Background(), newRecordingSink()); err == nil {
		t.Error("expected error for missing file")
	}
}
