// Package ack provides HL7 v2.x acknowledgment (ACK) message generation.
//
// The ack package creates ACK messages in response to incoming HL7 messages.
// It supports both positive acknowledgments (AA - Application Accept) and
// negative acknowledgments (AE - Application Error, AR - Application Reject).
//
// # ACK Message Structure
//
// An ACK message consists of:
//   - MSH: Message header (mirrored from original with swapped sender/receiver)
//   - MSA: Message acknowledgment segment containing:
//   - MSA.1: Acknowledgment code (AA, AE, AR)
//   - MSA.2: Message control ID (from original MSH.10)
//   - MSA.3: Text message (optional description)
//   - ERR: Error segment (optional, for AE/AR responses)
//
// # Basic Usage
//
// Generate a positive acknowledgment:
//
//	// Parse incoming message
//	msg, err := parser.Parse(incomingData)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Generate ACK
//	builder := ack.NewBuilder()
//	ackMsg, err := builder.Accept(msg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Encode and send response
//	response, _ := encoder.Encode(ackMsg)
//	conn.Write(response)
//
// Generate a negative acknowledgment (error code 207, severity E):
//
//	ackMsg, err := builder.Error(msg, errors.New("Patient ID not found"))
//
// Generate a rejection:
//
//	ackMsg, err := builder.Reject(msg, "Invalid message format")
//
// # Acknowledgment Codes
//
// HL7 defines three acknowledgment codes:
//
//	AA - Application Accept
//	    Message was received, validated, and accepted for processing.
//
//	AE - Application Error
//	    Message was received but contained errors. The sending application
//	    should review and correct the message.
//
//	AR - Application Reject
//	    Message was rejected due to system or communication errors.
//	    The sending application may retry the transmission.
//
// # Builder Options
//
// Configure the builder with functional options:
//
//	builder := ack.NewBuilder(
//	    ack.WithTimeFunc(func() time.Time { return fixedTime }), // MSH-7 timestamp
//	    ack.WithControlIDFunc(func() string { return "ACK-12345" }),
//	    ack.WithMessageFactory(factory), // custom message/segment types
//	)
//
// # Error Segments
//
// Use Custom with an ACK value to set the error code, location and text:
//
//	ackMsg, err := builder.Custom(msg, ack.ACK{
//	    Code:          ack.ApplicationError,
//	    ControlID:     msg.ControlID(),
//	    TextMessage:   "Validation error",       // MSA-3
//	    ErrorCode:     "101",                    // ERR-3
//	    ErrorLocation: "PID-3-1",                // ERR-1 and ERR-2
//	    ErrorMessage:  "Patient ID is required", // ERR-7
//	    Severity:      "E",                      // ERR-4
//	})
//
// An ERR segment is added only for error or reject codes (AE, AR, CE, CR)
// that carry an error code, location or message.
//
// # Acknowledgment Modes
//
// The builder writes a single ACK with one MSA segment. Custom accepts the
// commit codes (CA, CE, CR) in ACK.Code; Accept, Error and Reject always use
// the application codes (AA, AE, AR).
//
// # Message Control ID
//
// The ACK message control ID (MSH-10) is "ACK" followed by the current time
// in nanoseconds, unless WithControlIDFunc supplies a generator:
//
//	// Default generation
//	ackMsg, err := ack.NewBuilder().Accept(msg)
//
//	// Custom generator
//	ackMsg, err := ack.NewBuilder(
//	    ack.WithControlIDFunc(func() string { return "ACK-12345" }),
//	).Accept(msg)
//
// # Example: Complete ACK Workflow
//
//	func handleHL7Message(data []byte) ([]byte, error) {
//	    // Parse incoming message
//	    parser := parse.New()
//	    msg, err := parser.Parse(data)
//	    if err != nil {
//	        // The builder needs the original MSH, so parse errors are
//	        // returned to the caller instead
//	        return nil, fmt.Errorf("parse error: %w", err)
//	    }
//
//	    builder := ack.NewBuilder()
//
//	    // Process message...
//	    if err := processMessage(msg); err != nil {
//	        // Generate error ACK for processing errors
//	        ackMsg, _ := builder.Error(msg, err)
//	        return encode.New().Encode(ackMsg)
//	    }
//
//	    // Generate success ACK
//	    ackMsg, _ := builder.Accept(msg)
//	    return encode.New().Encode(ackMsg)
//	}
//
// # Example ACK Message
//
// For an incoming ADT^A01 message, a successful ACK looks like:
//
//	MSH|^~\&|RECEIVING_APP|RECEIVING_FAC|SENDING_APP|SENDING_FAC|20240115120000||ACK^A01|ACK12345|P|2.5.1
//	MSA|AA|MSG12345
//
// An error ACK from Error(msg, errors.New("Patient ID not found")):
//
//	MSH|^~\&|RECEIVING_APP|RECEIVING_FAC|SENDING_APP|SENDING_FAC|20240115120000||ACK^A01|ACK12346|P|2.5.1
//	MSA|AE|MSG12345|Patient ID not found
//	ERR|||207|E|||Patient ID not found
package ack
