// Package emlstream is a streaming email library. Messages are read a chunk at
// a time, so a message never has to be held in memory as a whole, and the
// result never depends on how the input happened to be chunked.
//
// The code is split according to part of message. The message package parses
// a message into an opaque header and body with message.Parse, or into a tree
// of parts with message.ParseMultipart. Bodies can be handed off as they
// arrive to decoders picked by matching the header against a chain of
// factories. The message/multipart package splits multipart bodies, nesting
// further decoders inside each part, and the message/transfer package decodes
// base64 and quoted-printable bodies.
//
// Going the other way, message.Serialize writes a message.Part, passing each
// body through an encoder picked the same way. The multipart encoder frames
// nested parts with boundaries and the base64 encoder wraps encoded lines.
// A message.Buffer helps build the parts.
//
// For dealing with message headers, the high-level interface is provided via
// header.Header. Low-level access can be granted by using header.Header to
// work directly with field.Field objects, but typically, just working with
// fields as part of the header object is probably all most end users will need.
//
// As much as possible, round-tripping is preserved. A message parsed into a
// tree and serialized again comes out byte-for-byte identical when it is
// already in a canonical layout. The emlstream command's roundtrip subcommand
// shows the difference when it is not.
package emlstream
