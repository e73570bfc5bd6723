// Package header provides the ordered header model used by the parser and the
// serializer. A Header keeps fields in the order read, keeps duplicates, and
// looks names up without regard to case.
//
// Parse() is tolerant. It folds continuation lines, skips blank lines, and
// never returns an error, so whatever header bytes were read can always be
// turned into something usable. Typed getters on Header interpret the most
// common fields: content type, boundary, transfer encoding, disposition,
// dates, and address lists.
package header
