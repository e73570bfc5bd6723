package message_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-emlstream/message"
	"github.com/zostay/go-emlstream/message/header"
)

func TestBuffer_Single(t *testing.T) {
	t.Parallel()

	buf := &message.Buffer{}
	assert.Equal(t, message.ModeUnset, buf.Mode())

	_, err := buf.Part()
	assert.ErrorIs(t, err, message.ErrModeUnset)

	buf.Header.Set(header.Subject, "test simple")
	buf.Header.Set(header.ContentType, "text/plain")
	_, err = fmt.Fprintln(buf, "This is a simple message.")
	require.NoError(t, err)
	assert.Equal(t, message.ModeSingle, buf.Mode())

	assert.ErrorIs(t, buf.Add(textPart("nope")), message.ErrOpaqueBuffer)

	p, err := buf.Part()
	require.NoError(t, err)

	out := &bytes.Buffer{}
	_, err = message.Serialize(context.Background(), out, p)
	require.NoError(t, err)

	const expect = "Subject: test simple\nContent-type: text/plain\n\nThis is a simple message.\n"
	assert.Equal(t, expect, out.String())
}

func TestBuffer_Multipart(t *testing.T) {
	t.Parallel()

	buf := &message.Buffer{}
	buf.Header.Set(header.Subject, "test multipart")
	require.NoError(t, buf.Add(textPart("one"), textPart("two")))
	assert.Equal(t, message.ModeMultipart, buf.Mode())

	_, err := fmt.Fprint(buf, "nope")
	assert.ErrorIs(t, err, message.ErrPartsBuffer)

	p, err := buf.Part()
	require.NoError(t, err)

	mt, err := p.Header.GetMediaType()
	require.NoError(t, err)
	assert.Equal(t, message.DefaultMultipartContentType, mt)

	out := &bytes.Buffer{}
	_, err = message.Serialize(context.Background(), out, p)
	require.NoError(t, err)

	root, err := message.ParseMultipart(context.Background(), out)
	require.NoError(t, err)
	require.Len(t, root.Parts, 2)
	assert.Equal(t, "one", string(root.Parts[0].Body))
	assert.Equal(t, "two", string(root.Parts[1].Body))
}

func TestMultipartAlternative(t *testing.T) {
	t.Parallel()

	p := message.MultipartAlternative(textPart("plain"))
	mt, err := p.Header.GetMediaType()
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mt)
	assert.Len(t, p.Parts, 1)

	p = message.MultipartMixed()
	mt, err = p.Header.GetMediaType()
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mt)
	assert.True(t, strings.HasPrefix(p.Header.First(header.ContentType).Value, "multipart/mixed"))
}
