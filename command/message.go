// Package command dispatches chat commands to lookup operations and runs
// confirmed submissions on a bounded worker pipeline.
//
// A command is registered once with a prefix, a lookup that may rewrite the
// incoming message, and an optional submit that pushes locally observed
// statistics to the remote service:
//
//	reg.Register(command.Command{Prefix: "!kc", Lookup: svc.killCountLookup, Submit: svc.killCountSubmit})
//	reg.Dispatch(ctx, msg)           // always, on every incoming chat line
//	task, ok := reg.Submit(ctx, in)  // when the user confirms sending in
//
// Prefixes match case-insensitively against the start of the text and the
// first registered match wins.
package command

import (
	"sync"
)

// ChatType identifies where a chat line was sent.
type ChatType string

const (
	GameMessage    ChatType = "GAMEMESSAGE"
	Spam           ChatType = "SPAM"
	Trade          ChatType = "TRADE"
	PublicChat     ChatType = "PUBLICCHAT"
	ModChat        ChatType = "MODCHAT"
	FriendsChat    ChatType = "FRIENDSCHAT"
	PrivateChat    ChatType = "PRIVATECHAT"
	PrivateChatOut ChatType = "PRIVATECHATOUT"
	ModPrivateChat ChatType = "MODPRIVATECHAT"
)

// IsGame reports whether lines of this type carry game statistics.
func (t ChatType) IsGame() bool {
	return t == GameMessage || t == Spam || t == Trade
}

// IsCommandSource reports whether lines of this type may carry chat commands.
func (t ChatType) IsCommandSource() bool {
	switch t {
	case PublicChat, ModChat, FriendsChat, PrivateChat, PrivateChatOut, ModPrivateChat:
		return true
	default:
		return false
	}
}

// Message is one incoming chat line. Name is the sender as displayed,
// including any account icon tags such as "<img=2>".
type Message struct {
	Type ChatType
	Name string
	Text string

	mu        sync.Mutex
	response  string
	rewritten bool
}

// NewMessage builds a message.
func NewMessage(typ ChatType, name, text string) *Message {
	return &Message{Type: typ, Name: name, Text: text}
}

// SetResponse replaces the displayed text of the message.
func (m *Message) SetResponse(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response, m.rewritten = s, true
}

// Response returns the rewritten text and whether a lookup set one.
func (m *Message) Response() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.response, m.rewritten
}

// Display returns the rewritten text, or the original text when no lookup
// rewrote it.
func (m *Message) Display() string {
	if r, ok := m.Response(); ok {
		return r
	}
	return m.Text
}

// Input is a chat line the user is about to send, suspended until a
// submission finishes. Resume releases it and runs at most once.
type Input struct {
	Text string

	once   sync.Once
	resume func()
}

// NewInput suspends text; resume is called when the input is released.
// resume may be nil.
func NewInput(text string, resume func()) *Input {
	return &Input{Text: text, resume: resume}
}

// Resume releases the input. Only the first call has an effect.
func (in *Input) Resume() {
	in.once.Do(func() {
		if in.resume != nil {
			in.resume()
		}
	})
}
