// Package multipart splits multipart bodies into parts while they stream in
// and frames parts with boundaries when they are written out.
//
// The decoder works a line at a time and matches boundary lines exactly. Each
// part it finds is reported through an OnPart callback once the part ends.
// Unless disabled with WithoutDeep, the body of each part is also handed to
// a nested decoder resolved through the codec.Context, which is how nested
// multipart bodies and base64 attachments inside them are handled in the
// same pass.
package multipart
