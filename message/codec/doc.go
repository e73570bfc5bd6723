// Package codec defines the protocol shared by the parser and the serializer
// for interpreting message bodies.
//
// While parsing, a Decoders chain is consulted each time a header block has
// been read. Each DecoderFactory looks at the header and either returns a
// Decoder to take over the body or nil to pass. The first non-nil Decoder in
// list order wins. A Decoder receives raw body bytes through Decode() in
// whatever chunks arrive and is told the body is complete by exactly one call
// to Close().
//
// Serializing mirrors this with an Encoders chain. An Encoder turns each Chunk
// of the body into zero or more Pieces to write and may emit trailing Pieces
// from Close().
package codec
