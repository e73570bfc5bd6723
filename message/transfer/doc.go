// Package transfer provides decoders and encoders for the
// Content-transfer-encoding of a message part. Only base64 and
// quoted-printable change the bytes. Other settings such as binary, 7bit, or
// 8bit leave the bytes as-is.
//
// The factories here plug into the codec chains used by message.Parse and
// message.Serialize. The base64 decoders accept input split anywhere, even in
// the middle of a four character quantum, and the base64 encoder keeps its
// line wrapping column across chunks.
//
// For the sake of this module, the term "decoded" means that the content has
// been transformed from the named Content-transfer-encoding to the charset
// encoded form. Meanwhile, "encoded" means that the content has been
// transformed from the charset encoding to the named Content-transfer-encoding.
package transfer
