// Package walk provides tools for processing a tree of message parts built by
// message.ParseMultipart and for transforming it into new parts to serialize.
package walk
