// Package protocol implements the binary wire protocol between a live
// session and its remote client.
//
// # Wire Format
//
// All messages are framed with a 6-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHello (0x00): version negotiation, both directions
//   - FrameEvent (0x01): client → server handler firing
//   - FramePatches (0x02): server → client diff
//   - FrameControl (0x03): ping, pong, close
//   - FrameError (0x05): error report
//
// # Encoding
//
//   - Varint: protobuf-style unsigned integers
//   - Length-prefixed: strings and byte slices prefixed with a varint length
//   - Big-endian: fixed-width integers
//
// # Patches
//
// A Patches frame carries a sequence number and at most one diff, exactly
// as produced by one render. A diff is encoded as its op byte followed by
// the op's fields; AddChild and ReplaceChild embed a node, PatchChild embeds
// its nested diffs.
//
//	SetAttribute:  [0x01][key][value]
//	RemoveChild:   [0x05][index]
//	PatchChild:    [0x06][index][count][diff...]
//
// # Events
//
// An Event frame names a handler id and carries its argument as JSON:
//
//	[Seq: varint][HandlerID: len-prefixed][Arg: len-prefixed JSON]
//
// Decoding never trusts the peer: lengths, collection counts and nesting
// depth are bounded, and failures are returned as errors.
package protocol
