// Package hl7codec adapts the parse/encode/ack packages to the three
// operations the channel engines need: parse, encode, and generateAck,
// plus a textual fallback ACK for when parsing itself fails.
package hl7codec

import (
	"fmt"
	"time"

	"github.com/williamray70/localbridge/ack"
	"github.com/williamray70/localbridge/encode"
	"github.com/williamray70/localbridge/hl7"
	"github.com/williamray70/localbridge/parse"
	"github.com/williamray70/localbridge/segments"
)

// Codec wraps the HL7 parse/encode/ACK-generation operations used
// throughout the engine.
type Codec struct {
	parser  parse.Parser
	encoder encode.Encoder
	builder ack.Builder
}

// New builds a Codec with the default parser/encoder/ACK builder.
func New() *Codec {
	return &Codec{
		parser:  parse.New(),
		encoder: encode.New(),
		builder: ack.NewBuilder(),
	}
}

// Parse parses raw HL7 text into a Message.
func (c *Codec) Parse(data []byte) (hl7.Message, error) {
	return c.parser.Parse(data)
}

// Encode encodes a Message back into CR-terminated HL7 text.
func (c *Codec) Encode(msg hl7.Message) ([]byte, error) {
	return c.encoder.Encode(msg)
}

// GenerateAck builds an accept (AA) ACK for msg: MSA-1=AA,
// MSA-2 echoes MSH-10 of the source.
func (c *Codec) GenerateAck(msg hl7.Message) (hl7.Message, error) {
	return c.builder.Accept(msg)
}

// HeaderSummary pulls the fields worth putting on a log line beyond
// Type()/ControlID() (which hl7.Message already exposes directly): sending
// and receiving application/facility from MSH, plus the patient identifier
// from PID when the message carries one. Fields default to the zero value
// when the corresponding segment is absent or malformed.
type HeaderSummary struct {
	SendingApplication   string
	SendingFacility      string
	ReceivingApplication string
	ReceivingFacility    string
	PatientID            string
	MessageCode          string
	TriggerEvent         string
}

func (c *Codec) HeaderSummary(msg hl7.Message) HeaderSummary {
	out := HeaderSummary{
		MessageCode:  msg.MessageCode(),
		TriggerEvent: msg.TriggerEvent(),
	}

	if seg, ok := msg.Segment("MSH"); ok {
		if msh, err := segments.ParseMSH(seg); err == nil {
			out.SendingApplication = msh.SendingApplication
			out.SendingFacility = msh.SendingFacility
			out.ReceivingApplication = msh.ReceivingApplication
			out.ReceivingFacility = msh.ReceivingFacility
		}
	}
	if seg, ok := msg.Segment("PID"); ok {
		if pid, err := segments.ParsePID(seg); err == nil {
			out.PatientID = pid.PatientIDList
		}
	}
	return out
}

// Reason codes for FallbackACK.
const (
	ReasonEmpty      = "EMPTY"
	ReasonParseFail  = "PARSEFAIL"
)

// FallbackACK synthesizes an ACK textually without going through the
// parser/builder, for use when the inbound message could not be parsed (or
// was empty) and a real ACK cannot be generated. The exact template is
// so that the inbound channel never withholds an ACK.
func FallbackACK(controlID, reason string, now time.Time) []byte {
	if controlID == "" {
		controlID = "UNKNOWN"
	}
	ts := now.Format("20060102150405")
	ackID := fmt.Sprintf("ACK-%s%03d", now.Format("20060102150405"), now.Nanosecond()/1_000_000)

	msh := fmt.Sprintf("MSH|^~\\&|LOCALBRIDGE|ENGINE|||%s||ACK^A01|%s|P|2.5\r", ts, ackID)
	msa := fmt.Sprintf("MSA|AA|%s|%s\r", controlID, reason)
	return []byte(msh + msa)
}
