// Package audit captures a structured record of each message a channel
// handles, independent of the free-form log line the channel itself
// writes. It exists so an operator can reconstruct "what passed through
// this broker" from typed fields rather than parsing prose log text.
package audit

import (
	"time"

	"github.com/williamray70/localbridge/hl7"
	"github.com/williamray70/localbridge/marshal"
)

// Record is a typed snapshot of the header fields worth keeping for
// traceability: who sent what, about which patient, and when.
type Record struct {
	MessageCode     string `hl7:"MSH.9.1"`
	TriggerEvent    string `hl7:"MSH.9.2"`
	ControlID       string `hl7:"MSH.10"`
	SendingApp      string `hl7:"MSH.3"`
	SendingFacility string `hl7:"MSH.4"`
	PatientID       string `hl7:"PID.3.1,omitempty"`

	// CapturedAt is stamped by Capture, not read from the message.
	CapturedAt time.Time `hl7:"-"`
}

// Capture builds a Record from msg using the marshal package's struct-tag
// unmarshaler. A message with no PID segment still produces a Record;
// PatientID is left empty.
func Capture(msg hl7.Message, now time.Time) (Record, error) {
	var rec Record
	u := marshal.NewUnmarshaler()
	if err := u.Unmarshal(msg, &rec); err != nil {
		return Record{}, err
	}
	rec.CapturedAt = now
	return rec, nil
}
