// Package segments provides typed helper structs for HL7 v2.x segments that
// LocalBridge's engine needs to inspect beyond what hl7.Message exposes
// directly (Type, ControlID).
//
// Each segment type provides:
//   - A struct with fields corresponding to HL7 field positions, tagged with `hl7:"SEG.N"` tags
//   - A ParseXXX function to extract data from an hl7.Segment interface into the typed struct
//   - A ToSegment method to convert the typed struct back into an hl7.Segment
//
// # Supported Segments
//
//   - MSH (Message Header) - msh.go, used by internal/hl7codec for the
//     sending/receiving application and facility fields surfaced in channel
//     log lines.
//   - PID (Patient Identification) - pid.go, used by internal/hl7codec to
//     surface the patient identifier on channel log lines.
//   - PV1, OBR, OBX, ORC - pv1.go, obr.go, obx.go, orc.go, kept for their
//     ParseXXX/ToSegment pair and for the matching rule sets in validate
//     (PV1Rules, OBRRules, OBXRules). Not otherwise read by the engine,
//     since the broker's transformation step operates on raw HL7 text via
//     WRAPI rather than typed segment structs.
//
// # Field Numbering
//
// Field numbers follow the HL7 standard where MSH-1 is the field separator
// character itself (|) and MSH-2 is the encoding characters (^~\&).
package segments
