package message_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-emlstream/message"
	"github.com/zostay/go-emlstream/message/transfer"
)

func TestOpaque_WriteTo(t *testing.T) {
	t.Parallel()

	const msg = "Subject: crlf\r\nTo: someone\r\n\r\nLine 1\r\nLine 2"

	m, err := message.Parse(context.Background(), strings.NewReader(msg))
	require.NoError(t, err)

	out := &bytes.Buffer{}
	n, err := m.WriteTo(out)
	require.NoError(t, err)
	assert.Equal(t, int64(len(msg)), n)
	assert.Equal(t, msg, out.String())
}

func TestOpaque_Part(t *testing.T) {
	t.Parallel()

	m, err := message.Parse(context.Background(), strings.NewReader(basicMessage))
	require.NoError(t, err)

	p := m.Part()
	assert.Same(t, m.Header, p.Header)
	assert.Equal(t, m.Body, p.Content)
	assert.Nil(t, p.Parts)
}

func TestAttachmentFile(t *testing.T) {
	t.Parallel()

	fn := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(fn, []byte("Hello World"), 0o600))

	p, err := message.AttachmentFile(fn, "text/plain")
	require.NoError(t, err)
	defer p.Reader.(io.Closer).Close()

	got, err := p.Header.GetFilename()
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", got)

	out := &bytes.Buffer{}
	_, err = message.Serialize(context.Background(), out, p,
		message.WithEncoders(transfer.NewBase64EncoderFactory()))
	require.NoError(t, err)

	root, err := message.ParseMultipart(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", root.Attachment)
	assert.Equal(t, "Hello World", string(root.Content))

	_, err = message.AttachmentFile(filepath.Join(t.TempDir(), "missing"), "text/plain")
	assert.Error(t, err)
}
