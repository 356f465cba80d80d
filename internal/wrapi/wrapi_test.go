package wrapi

import (
	"strings"
	"testing"
)

// buildMSH returns a minimal well-formed test message with the given
// segments appended after MSH, CR-terminated.
func buildMSH(extra ...string) string {
	lines := []string{"MSH|^~\\&|SEND|FAC||DEST|20240101120000||ADT^A01|MSG001|P|2.5"}
	lines = append(lines, extra...)
	return strings.Join(lines, "\r") + "\r"
}

func mustParse(t *testing.T, text string) *Script {
	t.Helper()
	s, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return s
}
