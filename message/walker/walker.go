package walker

import (
	"github.com/zostay/go-emlstream/message"
)

// PartWalker is a function that can be processed for each part of a message.
type PartWalker func(depth, i int, part *message.Multipart) error

// Walk performs a depth first search for all the parts of a message starting
// with the message itself. It calls the PartWalker for each part of the
// message. If the PartWalker returns an error, then processing stops
// immediately and the error is returned.
func (w PartWalker) Walk(msg *message.Multipart) error {
	type part struct {
		depth int
		i     int
		part  *message.Multipart
	}

	openStack := make([]part, 0, 10)

	pushStack := func(depth int, msg *message.Multipart) {
		parts := msg.GetParts()
		for i := len(parts) - 1; i >= 0; i-- {
			openStack = append(openStack, part{depth, i, parts[i]})
		}
	}

	popStack := func() part {
		end := len(openStack) - 1
		p := openStack[end]
		openStack = openStack[:end]
		return p
	}

	openStack = append(openStack, part{0, 0, msg})
	for len(openStack) > 0 {
		p := popStack()
		if err := w(p.depth, p.i, p.part); err != nil {
			return err
		}
		pushStack(p.depth+1, p.part)
	}

	return nil
}

// WalkLeaves will call the PartWalker function for each part without nested
// parts using a depth first traversal. It will terminate the walk immediately
// if the PartWalker returns an error and will return the error.
func (w PartWalker) WalkLeaves(msg *message.Multipart) error {
	var lw PartWalker = func(depth, i int, part *message.Multipart) error {
		if !part.IsMultipart() {
			return w(depth, i, part)
		}
		return nil
	}
	return lw.Walk(msg)
}

// WalkMultipart will call the PartWalker function for each part with nested
// parts using a depth first traversal. It will terminate the walk immediately
// if the PartWalker returns an error and will return that error.
func (w PartWalker) WalkMultipart(msg *message.Multipart) error {
	var mw PartWalker = func(depth, i int, part *message.Multipart) error {
		if part.IsMultipart() {
			return w(depth, i, part)
		}
		return nil
	}
	return mw.Walk(msg)
}
