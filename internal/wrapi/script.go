package wrapi

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Command is one parsed WRAPI instruction.
type Command interface {
	// apply executes the command against msg, appending any non-fatal
	// warnings (e.g. a COPY source that could not be resolved) to warn.
	apply(msg *textMessage, createMissing bool, warn *[]string)
}

// Script is a parsed WRAPI program: an ordered list of commands, already
// truncated at the first SAVE per the language's "SAVE terminates" rule.
type Script struct {
	Commands []Command
	Source   string
}

var (
	setPattern    = regexp.MustCompile(`(?i)^SET\s+([A-Za-z][A-Za-z0-9]{2})-(\d+)\s+"(.*)"$`)
	copyPattern   = regexp.MustCompile(`(?i)^COPY\s+(\S+)\s*->\s*(\S+)$`)
	clearPattern  = regexp.MustCompile(`(?i)^CLEAR\s+([A-Za-z][A-Za-z0-9]{2})-(\d+)$`)
	delsegPattern = regexp.MustCompile(`(?i)^DELSEG\s+([A-Za-z][A-Za-z0-9]{2})$`)
	truncPattern  = regexp.MustCompile(`(?i)^TRUNC\s+([A-Za-z][A-Za-z0-9]{2})(?:-(\d+))?\s*,\s*(\d+)$`)
	addsegPattern = regexp.MustCompile(`(?is)^ADDSEG\s+(?:after\s+([A-Za-z][A-Za-z0-9]{2})\s+)?"(.*)"$`)
	savePattern   = regexp.MustCompile(`(?i)^SAVE\s*$`)
)

// Parse parses a WRAPI script. Blank lines and lines beginning with "#" are
// ignored; the first SAVE line terminates parsing (lines after it are
// dropped). Syntax errors are load-time-fatal.
func Parse(text string) (*Script, error) {
	s := &Script{Source: text}
	for n, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if savePattern.MatchString(line) {
			break
		}

		cmd, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("wrapi: line %d: %w", n+1, err)
		}
		s.Commands = append(s.Commands, cmd)
	}
	return s, nil
}

func parseLine(line string) (Command, error) {
	switch {
	case setPattern.MatchString(line):
		m := setPattern.FindStringSubmatch(line)
		field, _ := strconv.Atoi(m[2])
		return &setCmd{seg: strings.ToUpper(m[1]), field: field, literal: m[3]}, nil
	case copyPattern.MatchString(line):
		m := copyPattern.FindStringSubmatch(line)
		from, err := parsePath(m[1])
		if err != nil {
			return nil, fmt.Errorf("COPY source: %w", err)
		}
		to, err := parsePath(m[2])
		if err != nil {
			return nil, fmt.Errorf("COPY destination: %w", err)
		}
		return &copyCmd{from: from, to: to}, nil
	case clearPattern.MatchString(line):
		m := clearPattern.FindStringSubmatch(line)
		field, _ := strconv.Atoi(m[2])
		return &clearCmd{seg: strings.ToUpper(m[1]), field: field}, nil
	case delsegPattern.MatchString(line):
		m := delsegPattern.FindStringSubmatch(line)
		return &delSegCmd{seg: strings.ToUpper(m[1])}, nil
	case truncPattern.MatchString(line):
		m := truncPattern.FindStringSubmatch(line)
		n, _ := strconv.Atoi(m[3])
		field := 0
		if m[2] != "" {
			field, _ = strconv.Atoi(m[2])
		}
		return &truncCmd{seg: strings.ToUpper(m[1]), field: field, n: n}, nil
	case addsegPattern.MatchString(line):
		m := addsegPattern.FindStringSubmatch(line)
		return &addSegCmd{anchor: strings.ToUpper(m[1]), segText: m[2]}, nil
	default:
		return nil, fmt.Errorf("unrecognized command: %q", line)
	}
}

// Execute runs the script against raw HL7 message text and returns the
// resulting text. Per-message runtime errors are not expected from any
// command other than COPY, which downgrades unreadable/unwritable paths to
// warnings instead of aborting.
func (s *Script) Execute(raw string, createMissing bool) (string, []string, error) {
	msg, err := parseTextMessage(raw)
	if err != nil {
		return raw, nil, err
	}

	var warnings []string
	for _, cmd := range s.Commands {
		cmd.apply(msg, createMissing, &warnings)
	}
	return msg.String(), warnings, nil
}
