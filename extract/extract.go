// Package extract recognizes the fixed set of game chat lines that report
// statistics and turns each line into a typed Result.
//
// Rules are tried in a fixed priority order and the first matching rule wins:
//
//	line := "Your Zulrah kill count is: <col=ff0000>42</col>"
//	r := extract.Extract(line)
//	// r.Kind == extract.KillCount, r.Subject == "Zulrah", r.Count == 42
//
// A line that matches no rule yields a Result with Kind NoMatch; that is not
// an error.
package extract

import (
	"regexp"
	"strconv"
)

// Kind identifies which variant of Result is populated.
type Kind int

const (
	// NoMatch means no rule recognized the line.
	NoMatch Kind = iota
	// KillCount carries a boss/activity subject and its cumulative count.
	// It takes part in personal best correlation.
	KillCount
	// FixedCount carries a count for a rule-defined subject (Wintertodt,
	// Barrows Chests). It never takes part in correlation.
	FixedCount
	// Duration carries a personal best duration in seconds.
	Duration
	// DuelWin carries a duel outcome and the cumulative win count.
	DuelWin
	// DuelLoss carries the cumulative loss count.
	DuelLoss
)

// String returns the metric/log label for the kind.
func (k Kind) String() string {
	switch k {
	case KillCount:
		return "kill_count"
	case FixedCount:
		return "fixed_count"
	case Duration:
		return "duration"
	case DuelWin:
		return "duel_win"
	case DuelLoss:
		return "duel_loss"
	default:
		return "no_match"
	}
}

// Result is the outcome of extracting one line.
type Result struct {
	Kind Kind

	// Subject is the boss/activity name (KillCount, FixedCount).
	Subject string

	// Count is the cumulative count (KillCount, FixedCount, DuelWin, DuelLoss).
	Count int

	// Seconds is the personal best in seconds (Duration).
	Seconds int

	// NewBest reports whether the duration was just achieved (Duration).
	NewBest bool

	// Won is true for "You won!" and false for "You were defeated!" (DuelWin).
	Won bool
}

// Matched reports whether any rule recognized the line.
func (r Result) Matched() bool {
	return r.Kind != NoMatch
}

// rule is one (pattern, extractor) pair of the priority table. extract
// returns false to reject a textual match, which lets later rules run.
type rule struct {
	name    string
	pattern *regexp.Regexp
	extract func(m []string) (Result, bool)
}

const durationPrefix = `(?i)^(?:Fight |Lap |Challenge |Corrupted challenge )?duration: `

var rules = []rule{
	{
		name:    "kill_count",
		pattern: regexp.MustCompile(`Your (.+) (?:kill|harvest|lap|completion) count is: <col=ff0000>(\d+)</col>`),
		extract: subjectCount(KillCount),
	},
	{
		name:    "raid_count",
		pattern: regexp.MustCompile(`Your completed (.+) count is: <col=ff0000>(\d+)</col>`),
		extract: subjectCount(KillCount),
	},
	{
		name:    "wintertodt",
		pattern: regexp.MustCompile(`Your subdued Wintertodt count is: <col=ff0000>(\d+)</col>`),
		extract: fixedCount("Wintertodt"),
	},
	{
		name:    "barrows",
		pattern: regexp.MustCompile(`Your Barrows chest count is: <col=ff0000>(\d+)</col>`),
		extract: fixedCount("Barrows Chests"),
	},
	{
		name:    "duel_win",
		pattern: regexp.MustCompile(`You (were defeated|won)! You have(?: now)? won (\d+) duels?`),
		extract: func(m []string) (Result, bool) {
			n, ok := atoi(m[2])
			if !ok {
				return Result{}, false
			}
			return Result{Kind: DuelWin, Won: m[1] == "won", Count: n}, true
		},
	},
	{
		name:    "duel_loss",
		pattern: regexp.MustCompile(`You have(?: now)? lost (\d+) duels?`),
		extract: func(m []string) (Result, bool) {
			n, ok := atoi(m[1])
			if !ok {
				return Result{}, false
			}
			return Result{Kind: DuelLoss, Count: n}, true
		},
	},
	{
		// The just-achieved time is ignored; the stored best is reported.
		name:    "personal_best",
		pattern: regexp.MustCompile(durationPrefix + `<col=ff0000>[0-9:]+</col>\. Personal best: ([0-9:]+)`),
		extract: duration(false),
	},
	{
		name:    "new_personal_best",
		pattern: regexp.MustCompile(durationPrefix + `<col=ff0000>([0-9:]+)</col> \(new personal best\)`),
		extract: duration(true),
	},
}

// Extract runs the rule table against line and returns the first match.
func Extract(line string) Result {
	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if res, ok := r.extract(m); ok {
			return res
		}
	}
	return Result{Kind: NoMatch}
}

// Rules returns the rule names in priority order.
func Rules() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.name
	}
	return names
}

func subjectCount(kind Kind) func([]string) (Result, bool) {
	return func(m []string) (Result, bool) {
		n, ok := atoi(m[2])
		if !ok {
			return Result{}, false
		}
		return Result{Kind: kind, Subject: m[1], Count: n}, true
	}
}

func fixedCount(subject string) func([]string) (Result, bool) {
	return func(m []string) (Result, bool) {
		n, ok := atoi(m[1])
		if !ok {
			return Result{}, false
		}
		return Result{Kind: FixedCount, Subject: subject, Count: n}, true
	}
}

func duration(newBest bool) func([]string) (Result, bool) {
	return func(m []string) (Result, bool) {
		secs, ok := ParseDuration(m[1])
		if !ok {
			return Result{}, false
		}
		return Result{Kind: Duration, Seconds: secs, NewBest: newBest}, true
	}
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
