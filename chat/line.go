package chat

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/onnwee/kc-tender/chatcommands"
	"github.com/onnwee/kc-tender/command"
	"github.com/onnwee/kc-tender/session"
	"github.com/onnwee/kc-tender/tracker"
)

// Line types that carry session state rather than chat.
const (
	TypeInput       = "INPUT"       // text the local player sends
	TypeAccount     = "ACCOUNT"     // "<name>: <account type> [world,...]"
	TypeKillLog     = "KILLLOG"     // "<boss>: <count>"
	TypePlayerKills = "PLAYERKILLS" // ": <kills> <deaths>"
	TypeWilderness  = "WILDERNESS"  // ": <board text>"
	TypeVars        = "VARS"        // ": <quest points> <gamble count>"
)

// lineRe matches "<ts> [TYPE] rest". The timestamp is optional and may span
// several whitespace separated tokens.
var lineRe = regexp.MustCompile(`^(?:.*?\s)?\[([A-Z_]+)\]\s*(.*)$`)

// ParseLine converts one chat log line into a session event. It reports false
// for blank lines; malformed lines return an error.
//
// rest is "name: text" with a possibly empty name. Game lines carry no
// sender, so their name field must be empty: "[GAMEMESSAGE] : text".
func ParseLine(line string) (session.Event, bool, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, false, nil
	}
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false, fmt.Errorf("malformed chat line %q", line)
	}
	typ := m[1]
	name, text, ok := strings.Cut(m[2], ":")
	if !ok {
		return nil, false, fmt.Errorf("malformed chat line %q: missing name separator", line)
	}
	name = strings.TrimSpace(name)
	text = strings.TrimPrefix(text, " ")
	if command.ChatType(typ).IsGame() && name != "" {
		return nil, false, fmt.Errorf("malformed %s line %q: want \"[%s] : text\"", typ, line, typ)
	}

	switch typ {
	case TypeInput:
		return session.Input{Text: text}, true, nil
	case TypeAccount:
		fields := strings.Fields(text)
		var account string
		if len(fields) > 0 {
			account = fields[0]
		}
		a, err := chatcommands.ParseAccountType(account)
		if err != nil {
			return nil, false, err
		}
		var worlds []string
		if len(fields) > 1 {
			worlds = strings.Split(fields[1], ",")
		}
		w, err := chatcommands.ParseWorld(worlds)
		if err != nil {
			return nil, false, err
		}
		return session.AccountChanged{Player: chatcommands.LocalPlayer{Name: name, Account: a, World: w}}, true, nil
	case TypeKillLog:
		return session.KillLog{Entries: []tracker.KillLogEntry{{Name: name, Count: text}}}, true, nil
	case TypePlayerKills:
		k, d, err := twoInts(text)
		if err != nil {
			return nil, false, fmt.Errorf("player kills line: %w", err)
		}
		return session.PlayerKills{Kills: k, Deaths: d}, true, nil
	case TypeWilderness:
		return session.WildernessStats{Text: text}, true, nil
	case TypeVars:
		qp, gc, err := twoInts(text)
		if err != nil {
			return nil, false, fmt.Errorf("vars line: %w", err)
		}
		return session.PlayerVars{QuestPoints: qp, GambleCount: gc}, true, nil
	}

	return session.Chat{Message: command.NewMessage(command.ChatType(typ), name, text)}, true, nil
}

func twoInts(s string) (int, int, error) {
	f := strings.Fields(strings.ReplaceAll(s, ",", ""))
	if len(f) != 2 {
		return 0, 0, fmt.Errorf("want 2 numbers, got %q", s)
	}
	a, err := strconv.Atoi(f[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(f[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// ParseFile reads every line of r. Malformed lines are collected in skipped
// and do not stop the parse.
func ParseFile(r io.Reader) (events []session.Event, skipped []error, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		ev, ok, perr := ParseLine(sc.Text())
		if perr != nil {
			skipped = append(skipped, fmt.Errorf("line %d: %w", n, perr))
			continue
		}
		if ok {
			events = append(events, ev)
		}
	}
	if err := sc.Err(); err != nil {
		return events, skipped, fmt.Errorf("read chat log: %w", err)
	}
	return events, skipped, nil
}
