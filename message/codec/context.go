package codec

import "github.com/rs/zerolog"

// Context is the scratch state for a single parse. It is handed by pointer to
// every decoder factory and decoder involved in that parse so a nested decoder
// can tell where it is in the part tree.
//
// A decoder that calls into a nested decoder sets the fields it needs first
// with Enter() and calls the returned function afterward to put back what was
// there before.
type Context struct {
	// Boundary is the boundary of the multipart body currently being split,
	// or empty outside of any multipart body.
	Boundary string

	// Part is the ID of the part whose body is being decoded. The message
	// itself is part 0.
	Part int

	// Depth is the multipart nesting level. The message body is depth 0.
	Depth int

	// Decoders is the chain used to resolve decoders for nested parts.
	Decoders Decoders

	// Logger receives debug output. Nil disables logging.
	Logger *zerolog.Logger

	lastID int
}

// NewContext returns a fresh Context for a parse using the given decoder
// chain.
func NewContext(ds Decoders) *Context {
	return &Context{Decoders: ds}
}

// Log returns the Logger or a disabled logger if none is set.
func (c *Context) Log() *zerolog.Logger {
	if c.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return c.Logger
}

// NextID allocates a new part ID. IDs are unique within a Context and start
// at 1, since 0 names the message itself.
func (c *Context) NextID() int {
	c.lastID++
	return c.lastID
}

// Enter sets Boundary, Part, and Depth and returns a function that restores
// the values they held before the call.
func (c *Context) Enter(boundary string, part, depth int) func() {
	ob, op, od := c.Boundary, c.Part, c.Depth
	c.Boundary, c.Part, c.Depth = boundary, part, depth
	return func() {
		c.Boundary, c.Part, c.Depth = ob, op, od
	}
}
