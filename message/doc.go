// Package message is the heart of this library. It provides a streaming parser
// for email messages (that survives even when the input is not strictly
// correct) and a serializer for generating new messages. You can pair the two
// to perform advanced email transformations.
//
// Parse reads a message a chunk at a time and returns an Opaque message: the
// header and the raw body. The body may instead be handed to a decoder as it
// arrives. Decoders are chosen by consulting a chain of codec.DecoderFactory
// values with the header:
//
//	onPart := func(ctx *codec.Context, p *multipart.Part) error {
//		fmt.Println(p.ID, p.Parent, len(p.Body))
//		return nil
//	}
//
//	m, err := message.Parse(ctx, in,
//		message.WithDecoders(multipart.NewDecoderFactory(onPart)))
//
// ParseMultipart does that for you and returns the message as a tree of
// Multipart parts with base64 bodies decoded.
//
// To generate a message, build a Part, either directly or with a Buffer, and
// pass it to Serialize or NewReader. The body of each part goes through an
// encoder chosen from a chain of codec.EncoderFactory values. The default
// chain frames nested parts with multipart boundaries.
package message
