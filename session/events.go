// Package session runs the single event loop that owns correlation state.
//
// Every source (chat log follower, Twitch bridge, HTTP submit endpoint,
// batch replay) turns what it observes into an Event and enqueues it. The
// loop handles events strictly in arrival order: game lines go through
// extraction and correlation into the stat store, command lines are
// dispatched to their lookups, and confirmed inputs start submissions whose
// completion re-enqueues the sent text.
package session

import (
	"github.com/onnwee/kc-tender/chatcommands"
	"github.com/onnwee/kc-tender/command"
	"github.com/onnwee/kc-tender/tracker"
)

// Event is something the loop handles.
type Event interface {
	event()
}

// Chat is one incoming chat line. When a lookup rewrites the message and
// Reply is set, Reply receives the rewritten text.
type Chat struct {
	Message *command.Message
	Reply   func(response string)
}

// Input is text the local player is about to send. It is held until any
// submission it triggers completes, then handled as a Chat line of type Type
// sent by the local player.
type Input struct {
	Text  string
	Type  command.ChatType // PublicChat when empty
	Reply func(response string)
	// Result, when set, receives whether a submission was initiated. It must
	// be buffered.
	Result chan<- Submission
}

// Submission reports the outcome of handling an Input.
type Submission struct {
	Initiated bool
	Task      *command.Task // nil unless Initiated
}

// KillLog carries the rows of the boss kill log.
type KillLog struct {
	Entries []tracker.KillLogEntry
}

// PlayerKills carries kills and deaths read from the K/D overlay.
type PlayerKills struct {
	Kills  int
	Deaths int
}

// WildernessStats carries the raw text of the wilderness statistics board.
type WildernessStats struct {
	Text string
}

// PlayerVars carries the local player's quest points and gamble count.
type PlayerVars struct {
	QuestPoints int
	GambleCount int
}

// AccountChanged replaces the local player state.
type AccountChanged struct {
	Player chatcommands.LocalPlayer
}

func (Chat) event()            {}
func (Input) event()           {}
func (KillLog) event()         {}
func (PlayerKills) event()     {}
func (WildernessStats) event() {}
func (PlayerVars) event()      {}
func (AccountChanged) event()  {}
