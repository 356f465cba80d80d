// Package wrapi implements the WRAPI transformation mini-language: a
// line-oriented script of SET/COPY/CLEAR/DELSEG/TRUNC/ADDSEG/SAVE commands
// that edit HL7 v2 messages by splicing their encoded text form.
package wrapi

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// pathPattern parses a WRAPI structured path: SEG(occ)-field-component-subcomponent.
// Segment index and field are required together with the dash form; component
// and subcomponent are optional refinements. Modeled on the same
// regexp-driven, 1-based-with-sentinel approach as hl7.ParseLocation, but
// using WRAPI's own dash/paren grammar instead of the codec's dot/bracket one.
var pathPattern = regexp.MustCompile(
	`^([A-Za-z][A-Za-z0-9]{2})` + // segment name
		`(?:\((\d+)\))?` + // optional (occurrence), 1-based
		`(?:-(\d+)` + // optional -field
		`(?:-(\d+)` + // optional -component
		`(?:-(\d+))?)?)?$`, // optional -subcomponent
)

// path is a resolved reference into an HL7 message's text form.
type path struct {
	segment      string // upper-cased 3-char segment ID
	occurrence   int    // 1-based occurrence of the segment; 0 means "first"
	field        int    // 1-based HL7 field number; 0 means "segment only"
	component    int    // 1-based component number; 0 means "whole field"
	subComponent int     // 1-based subcomponent number; 0 means "whole component"
}

// parsePath parses a WRAPI path string such as "PID-5", "PID(2)-5-1", or
// "PID-5-1-2".
func parsePath(s string) (*path, error) {
	s = strings.TrimSpace(s)
	m := pathPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("wrapi: invalid path %q", s)
	}
	p := &path{segment: strings.ToUpper(m[1])}
	if m[2] != "" {
		n, _ := strconv.Atoi(m[2])
		p.occurrence = n
	}
	if m[3] != "" {
		n, _ := strconv.Atoi(m[3])
		p.field = n
	}
	if m[4] != "" {
		n, _ := strconv.Atoi(m[4])
		p.component = n
	}
	if m[5] != "" {
		n, _ := strconv.Atoi(m[5])
		p.subComponent = n
	}
	return p, nil
}
