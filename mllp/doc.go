// Package mllp provides MLLP (Minimal Lower Layer Protocol) framing and a
// client for sending HL7 v2.x messages over TCP/IP.
//
// MLLP is the standard transport protocol for HL7 messages over TCP/IP. It
// defines a simple framing mechanism using control characters to delimit
// message boundaries.
//
// # MLLP Frame Format
//
// An MLLP frame consists of:
//   - Start Block: 0x0B (vertical tab, VT)
//   - HL7 Message Data
//   - End Block: 0x1C (file separator, FS)
//   - Carriage Return: 0x0D (CR)
//
// Frame structure:
//
//	<VT>...HL7 Message Data...<FS><CR>
//	 |                        |   |
//	 0x0B                   0x1C 0x0D
//
// # Client Usage
//
// Create an MLLP client to send HL7 messages:
//
//	client, err := mllp.NewClient("hospital.local:2575",
//	    mllp.WithTimeout(30*time.Second),
//	    mllp.WithRetry(3, time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	ackMsg, err := client.Send(ctx, msg)
//
// # Reading and Writing Frames
//
// For low-level control, use the Reader and Writer types directly:
//
//	reader := mllp.NewReader(conn, mllp.MaxMessageSize)
//	data, err := reader.ReadMessage()
//
//	writer := mllp.NewWriter(conn)
//	err := writer.WriteMessage(hl7Data)
//
// ReadMessageDeadline wraps a read with a per-call deadline, for callers
// (such as an accept loop) that bound each frame individually rather than
// relying on the connection's ambient deadline.
//
// # Server Usage
//
// Create a Server to accept MLLP connections and answer each frame with a
// Handler-produced response:
//
//	srv := mllp.NewServer(
//	    mllp.WithHandler(handler),
//	    mllp.WithRawFrameHook(persistBeforeParse),
//	    mllp.WithFallbackACK(buildFallbackACK),
//	    mllp.WithLogger(log),
//	)
//	err := srv.Serve(listener)
//
// WithRawFrameHook and WithFallbackACK exist for brokers that must save
// every frame verbatim before attempting to parse it, and must answer
// every frame exactly once even when parsing or handling fails.
//
// # Constants
//
// MLLP framing constants are exported for custom implementations:
//
//	mllp.StartBlock      // 0x0B - vertical tab
//	mllp.EndBlock        // 0x1C - file separator
//	mllp.CarriageReturn  // 0x0D - carriage return
package mllp
