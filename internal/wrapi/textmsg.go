package wrapi

import (
	"strings"

	"github.com/williamray70/localbridge/hl7"
)

// textMessage is the WRAPI engine's working representation of an HL7
// message: the segment lines in order, plus the delimiters in force. All
// WRAPI commands operate on this text form directly (spec-mandated text
// splicing), never through the full structural parser.
type textMessage struct {
	lines  []string
	delims *hl7.Delimiters
}

// parseTextMessage splits raw HL7 text into CR-terminated segment lines and
// derives delimiters from the first MSH segment, reusing the codec's own
// MSH delimiter scan (hl7.ParseDelimiters) instead of re-deriving it.
func parseTextMessage(raw string) (*textMessage, error) {
	raw = strings.ReplaceAll(raw, "\r\n", "\r")
	raw = strings.ReplaceAll(raw, "\n", "\r")
	parts := strings.Split(raw, "\r")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		lines = append(lines, p)
	}

	delims := hl7.DefaultDelimiters()
	for _, l := range lines {
		if strings.HasPrefix(l, "MSH") {
			if d, err := hl7.ParseDelimiters([]byte(l)); err == nil {
				delims = d
			}
			break
		}
	}
	return &textMessage{lines: lines, delims: delims}, nil
}

// String re-joins the segment lines with CR terminators, per HL7 convention.
func (t *textMessage) String() string {
	var sb strings.Builder
	for _, l := range t.lines {
		sb.WriteString(l)
		sb.WriteByte('\r')
	}
	return sb.String()
}

func (t *textMessage) segmentID(line string) string {
	if len(line) < 3 {
		return strings.ToUpper(line)
	}
	return strings.ToUpper(line[:3])
}

// indicesOf returns the positions in t.lines whose segment ID matches seg
// (case-insensitive), in order.
func (t *textMessage) indicesOf(seg string) []int {
	seg = strings.ToUpper(seg)
	var out []int
	for i, l := range t.lines {
		if t.segmentID(l) == seg {
			out = append(out, i)
		}
	}
	return out
}

// fieldToken maps an HL7 field number to a token index in the segment's
// field-separator-split form, applying the MSH field indexing rule: for
// MSH, field 1 is the separator itself (no token) and field n>=2 maps to
// token n-1; for every other segment, field n maps to token n (token 0 is
// the segment ID).
func fieldToken(segID string, field int) (idx int, ok bool) {
	if segID == "MSH" {
		if field == 1 {
			return 0, false
		}
		if field < 1 {
			return 0, false
		}
		return field - 1, true
	}
	if field < 0 {
		return 0, false
	}
	return field, true
}

// getField returns the raw (un-escaped) value of field n within segment
// line idx, plus whether it was present.
func (t *textMessage) getField(idx int, field int) (string, bool) {
	if idx < 0 || idx >= len(t.lines) {
		return "", false
	}
	line := t.lines[idx]
	segID := t.segmentID(line)
	tok, ok := fieldToken(segID, field)
	if !ok {
		return "", false
	}
	tokens := strings.Split(line, string(t.delims.Field))
	if tok < 0 || tok >= len(tokens) {
		return "", false
	}
	return tokens[tok], true
}

// setField sets field n within segment line idx to value, extending the
// segment with empty fields as needed. Returns false if the field position
// cannot be addressed (e.g. MSH-1).
func (t *textMessage) setField(idx int, field int, value string) bool {
	if idx < 0 || idx >= len(t.lines) {
		return false
	}
	line := t.lines[idx]
	segID := t.segmentID(line)
	tok, ok := fieldToken(segID, field)
	if !ok {
		return false
	}
	tokens := strings.Split(line, string(t.delims.Field))
	for len(tokens) <= tok {
		tokens = append(tokens, "")
	}
	tokens[tok] = value
	t.lines[idx] = strings.Join(tokens, string(t.delims.Field))
	return true
}

// clearField blanks field n in every occurrence of segment seg.
func (t *textMessage) clearField(seg string, field int) {
	for _, idx := range t.indicesOf(seg) {
		t.setField(idx, field, "")
	}
}

// removeSegments drops every line whose segment ID matches seg.
func (t *textMessage) removeSegments(seg string) {
	seg = strings.ToUpper(seg)
	kept := t.lines[:0:0]
	for _, l := range t.lines {
		if t.segmentID(l) != seg {
			kept = append(kept, l)
		}
	}
	t.lines = kept
}

// getPath resolves a full structured path (segment/occurrence/field/
// component/subcomponent) down to whatever depth it specifies, returning the
// raw text and whether every step resolved.
func (t *textMessage) getPath(p *path) (string, bool) {
	idxs := t.indicesOf(p.segment)
	if len(idxs) == 0 {
		return "", false
	}
	occ := p.occurrence
	if occ <= 0 {
		occ = 1
	}
	if occ > len(idxs) {
		return "", false
	}
	idx := idxs[occ-1]

	if p.field == 0 {
		return t.lines[idx], true
	}
	val, ok := t.getField(idx, p.field)
	if !ok {
		return "", false
	}
	if p.component == 0 {
		return val, true
	}
	comps := strings.Split(val, string(t.delims.Component))
	if p.component < 1 || p.component > len(comps) {
		return "", false
	}
	comp := comps[p.component-1]
	if p.subComponent == 0 {
		return comp, true
	}
	subs := strings.Split(comp, string(t.delims.SubComponent))
	if p.subComponent < 1 || p.subComponent > len(subs) {
		return "", false
	}
	return subs[p.subComponent-1], true
}

// setPath writes value at the depth specified by p, extending components/
// subcomponents as needed. Returns false if the destination segment
// occurrence does not exist (COPY never creates segments).
func (t *textMessage) setPath(p *path, value string) bool {
	idxs := t.indicesOf(p.segment)
	if len(idxs) == 0 {
		return false
	}
	occ := p.occurrence
	if occ <= 0 {
		occ = 1
	}
	if occ > len(idxs) {
		return false
	}
	idx := idxs[occ-1]

	if p.field == 0 {
		return false
	}
	if p.component == 0 {
		return t.setField(idx, p.field, value)
	}
	cur, _ := t.getField(idx, p.field)
	comps := strings.Split(cur, string(t.delims.Component))
	for len(comps) < p.component {
		comps = append(comps, "")
	}
	if p.subComponent == 0 {
		comps[p.component-1] = value
	} else {
		subs := strings.Split(comps[p.component-1], string(t.delims.SubComponent))
		for len(subs) < p.subComponent {
			subs = append(subs, "")
		}
		subs[p.subComponent-1] = value
		comps[p.component-1] = strings.Join(subs, string(t.delims.SubComponent))
	}
	return t.setField(idx, p.field, strings.Join(comps, string(t.delims.Component)))
}
