package wrapi

import (
	"fmt"
	"strings"

	"github.com/williamray70/localbridge/internal/escape"
)

// setCmd implements SET <SEG>-<n> "<literal>".
type setCmd struct {
	seg     string
	field   int
	literal string
}

func (c *setCmd) apply(msg *textMessage, createMissing bool, warn *[]string) {
	esc := escape.New(msg.delims).Escape(c.literal)

	idxs := msg.indicesOf(c.seg)
	if len(idxs) == 0 {
		if !createMissing {
			return
		}
		line := c.seg + string(msg.delims.Field)
		msg.lines = append(msg.lines, line)
		idxs = msg.indicesOf(c.seg)
	}
	for _, idx := range idxs {
		msg.setField(idx, c.field, esc)
	}
}

// copyCmd implements COPY <fromPath> -> <toPath>.
type copyCmd struct {
	from, to *path
}

func (c *copyCmd) apply(msg *textMessage, createMissing bool, warn *[]string) {
	val, ok := msg.getPath(c.from)
	if !ok {
		*warn = append(*warn, fmt.Sprintf("COPY: source %s%s not found", c.from.segment, pathSuffix(c.from)))
		return
	}
	if !msg.setPath(c.to, val) {
		*warn = append(*warn, fmt.Sprintf("COPY: destination %s%s not writable", c.to.segment, pathSuffix(c.to)))
	}
}

func pathSuffix(p *path) string {
	if p.field == 0 {
		return ""
	}
	return fmt.Sprintf("-%d", p.field)
}

// clearCmd implements CLEAR <SEG>-<n>.
type clearCmd struct {
	seg   string
	field int
}

func (c *clearCmd) apply(msg *textMessage, createMissing bool, warn *[]string) {
	msg.clearField(c.seg, c.field)
}

// delSegCmd implements DELSEG <SEG>.
type delSegCmd struct {
	seg string
}

func (c *delSegCmd) apply(msg *textMessage, createMissing bool, warn *[]string) {
	msg.removeSegments(c.seg)
}

// truncCmd implements TRUNC <SEG>,<n> (segment form, field==0) and
// TRUNC <SEG>-<f>,<n> (field-repetition form).
type truncCmd struct {
	seg   string
	field int
	n     int
}

func (c *truncCmd) apply(msg *textMessage, createMissing bool, warn *[]string) {
	if c.field == 0 {
		idxs := msg.indicesOf(c.seg)
		if len(idxs) <= c.n {
			return
		}
		drop := make(map[int]bool, len(idxs)-c.n)
		for _, idx := range idxs[c.n:] {
			drop[idx] = true
		}
		kept := msg.lines[:0:0]
		for i, l := range msg.lines {
			if !drop[i] {
				kept = append(kept, l)
			}
		}
		msg.lines = kept
		return
	}

	for _, idx := range msg.indicesOf(c.seg) {
		val, ok := msg.getField(idx, c.field)
		if !ok {
			continue
		}
		reps := strings.Split(val, string(msg.delims.Repetition))
		if len(reps) <= c.n {
			continue
		}
		msg.setField(idx, c.field, strings.Join(reps[:c.n], string(msg.delims.Repetition)))
	}
}

// addSegCmd implements ADDSEG after <SEG> "<segText>" and ADDSEG "<segText>".
type addSegCmd struct {
	anchor  string // "" means append at end of message
	segText string
}

func (c *addSegCmd) apply(msg *textMessage, createMissing bool, warn *[]string) {
	// Idempotent dedupe: remove every prior occurrence of the exact text
	// before (re)inserting it.
	kept := msg.lines[:0:0]
	for _, l := range msg.lines {
		if l != c.segText {
			kept = append(kept, l)
		}
	}
	msg.lines = kept

	if c.anchor == "" {
		msg.lines = append(msg.lines, c.segText)
		return
	}

	idxs := msg.indicesOf(c.anchor)
	if len(idxs) == 0 {
		return // anchor not found: skip silently
	}
	at := idxs[0]
	out := make([]string, 0, len(msg.lines)+1)
	out = append(out, msg.lines[:at+1]...)
	out = append(out, c.segText)
	out = append(out, msg.lines[at+1:]...)
	msg.lines = out
}
