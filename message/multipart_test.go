package message_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-emlstream/message"
	"github.com/zostay/go-emlstream/message/codec"
	"github.com/zostay/go-emlstream/message/header"
	"github.com/zostay/go-emlstream/message/multipart"
	"github.com/zostay/go-emlstream/message/transfer"
)

const treeMessage = "Subject: tree\n" +
	"Content-Type: multipart/mixed; boundary=\"outer\"\n" +
	"\n" +
	"This is the preamble.\n" +
	"--outer\n" +
	"Content-Type: multipart/alternative; boundary=inner\n" +
	"\n" +
	"--inner\n" +
	"Content-Type: text/plain\n" +
	"\n" +
	"Hello\n" +
	"--inner\n" +
	"Content-Type: text/html\n" +
	"\n" +
	"<p>Hello</p>\n" +
	"--inner--\n" +
	"--outer\n" +
	"Content-Type: application/octet-stream\n" +
	"Content-Disposition: attachment; filename=\"hello.txt\"\n" +
	"Content-Transfer-Encoding: base64\n" +
	"\n" +
	"SGVsbG8g\n" +
	"V29ybGQ=\n" +
	"--outer--\n" +
	"This is the epilogue.\n"

// flatten lists the nodes of a tree depth first. Bodies are only listed for
// leaves.
func flatten(mm *message.Multipart) []string {
	out := []string{}
	var visit func(n *message.Multipart)
	visit = func(n *message.Multipart) {
		desc := fmt.Sprintf("%d %s %d", n.ID, n.ContentType, len(n.Parts))
		if !n.IsMultipart() {
			desc += fmt.Sprintf(" %q %q", n.Body, n.Content)
		}
		out = append(out, desc)
		for _, p := range n.Parts {
			visit(p)
		}
	}
	visit(mm)
	return out
}

func TestParseMultipart(t *testing.T) {
	t.Parallel()

	root, err := message.ParseMultipart(context.Background(), strings.NewReader(treeMessage))
	require.NoError(t, err)

	assert.Equal(t, 0, root.ID)
	assert.Equal(t, "multipart/mixed", root.ContentType)
	assert.Empty(t, root.Body)
	require.Len(t, root.Parts, 2)

	alt := root.Parts[0]
	assert.Equal(t, 1, alt.ID)
	assert.Equal(t, "outer", alt.Boundary)
	assert.Equal(t, "multipart/alternative", alt.ContentType)
	assert.True(t, alt.IsMultipart())
	assert.True(t, strings.HasPrefix(string(alt.Body), "--inner\n"))
	assert.True(t, strings.HasSuffix(string(alt.Body), "--inner--"))
	require.Len(t, alt.GetParts(), 2)

	plain, html := alt.Parts[0], alt.Parts[1]
	assert.Equal(t, 2, plain.ID)
	assert.Equal(t, "inner", plain.Boundary)
	assert.Equal(t, "text/plain", plain.ContentType)
	assert.Equal(t, "Hello", string(plain.Body))
	assert.Equal(t, "Content-Type: text/plain\n", string(plain.RawHeader))
	assert.Equal(t, 3, html.ID)
	assert.Equal(t, "<p>Hello</p>", string(html.Body))

	att := root.Parts[1]
	assert.Equal(t, 4, att.ID)
	assert.False(t, att.IsMultipart())
	assert.Equal(t, "hello.txt", att.Attachment)
	assert.Equal(t, "application/octet-stream", att.ContentType)
	assert.Equal(t, "SGVsbG8g\nV29ybGQ=", string(att.Body))
	assert.Equal(t, "Hello World", string(att.Content))

	data, err := io.ReadAll(att.GetReader())
	require.NoError(t, err)
	assert.Equal(t, "Hello World", string(data))

	data, err = io.ReadAll(plain.GetReader())
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(data))

	subj, err := root.GetHeader().Get(header.Subject)
	require.NoError(t, err)
	assert.Equal(t, "tree", subj)
}

func TestParseMultipart_ChunkIndependent(t *testing.T) {
	t.Parallel()

	want, err := message.ParseMultipart(context.Background(), strings.NewReader(treeMessage))
	require.NoError(t, err)

	for size := 1; size <= len(treeMessage); size += 7 {
		got, err := message.ParseMultipart(context.Background(),
			strings.NewReader(treeMessage), message.WithChunkSize(size))
		require.NoError(t, err)
		assert.Equal(t, flatten(want), flatten(got), "size %d", size)
	}
}

func TestParseMultipart_SinglePart(t *testing.T) {
	t.Parallel()

	const b64 = "Content-Type: text/plain\nContent-Transfer-Encoding: base64\n\nSGVsbG8gV29ybGQ=\n"
	root, err := message.ParseMultipart(context.Background(), strings.NewReader(b64))
	require.NoError(t, err)
	assert.Empty(t, root.Body)
	assert.Empty(t, root.Parts)
	assert.Equal(t, "Hello World", string(root.Content))

	root, err = message.ParseMultipart(context.Background(), strings.NewReader(basicMessage))
	require.NoError(t, err)
	assert.Equal(t, "Hello World\n\nEnd of message.", string(root.Body))
	assert.Nil(t, root.Content)
	assert.False(t, root.IsMultipart())
}

func TestParseMultipart_WithoutDeep(t *testing.T) {
	t.Parallel()

	root, err := message.ParseMultipart(context.Background(),
		strings.NewReader(treeMessage),
		message.WithMultipartOptions(multipart.WithoutDeep()))
	require.NoError(t, err)

	require.Len(t, root.Parts, 2)
	assert.Empty(t, root.Parts[0].Parts)
	assert.True(t, strings.HasPrefix(string(root.Parts[0].Body), "\n--inner\n"))
	assert.Nil(t, root.Parts[1].Content)
}

func TestParseMultipart_MaxDepth(t *testing.T) {
	t.Parallel()

	root, err := message.ParseMultipart(context.Background(),
		strings.NewReader(treeMessage),
		message.WithMultipartOptions(multipart.WithMaxDepth(1)))
	require.NoError(t, err)

	require.Len(t, root.Parts, 2)
	assert.Empty(t, root.Parts[0].Parts)
	assert.True(t, strings.HasPrefix(string(root.Parts[0].Body), "--inner\n"))
	assert.Equal(t, "Hello World", string(root.Parts[1].Content))
}

func TestParseMultipart_ExtraDecoders(t *testing.T) {
	t.Parallel()

	const msg = "Content-Type: multipart/mixed; boundary=b\n\n" +
		"--b\n" +
		"Content-Type: text/plain; charset=utf-8\n" +
		"Content-Transfer-Encoding: quoted-printable\n\n" +
		"caf=C3=A9\n" +
		"--b--\n"

	decoded := map[int]string{}
	qp := transfer.NewQuotedPrintableDecoderFactory(
		func(_ *codec.Context, part int, _ *header.Header, data []byte) error {
			decoded[part] = string(data)
			return nil
		})

	root, err := message.ParseMultipart(context.Background(),
		strings.NewReader(msg), message.WithDecoders(qp))
	require.NoError(t, err)

	require.Len(t, root.Parts, 1)
	assert.Equal(t, "caf=C3=A9", string(root.Parts[0].Body))
	assert.Equal(t, map[int]string{1: "café"}, decoded)

	data, err := io.ReadAll(root.Parts[0].GetReader())
	require.NoError(t, err)
	assert.Equal(t, "café", string(data))
}

func TestParse_MultipartDecoder(t *testing.T) {
	t.Parallel()

	const msg = "Content-Type: multipart/mixed; boundary=\"abc123\"\n\n" +
		"--abc123\n" +
		"Content-Type: text/plain\n\n" +
		"Part 1\n" +
		"--abc123\n" +
		"Content-Type: text/plain\n\n" +
		"Part 2\n" +
		"--abc123--\n"

	var bodies []string
	onPart := func(_ *codec.Context, p *multipart.Part) error {
		bodies = append(bodies, string(p.Body))
		return nil
	}

	m, err := message.Parse(context.Background(), strings.NewReader(msg),
		message.WithDecoders(multipart.NewDecoderFactory(onPart)))
	require.NoError(t, err)

	assert.Empty(t, m.Body)
	assert.Equal(t, []string{"Part 1", "Part 2"}, bodies)
}

func TestMultipart_Part(t *testing.T) {
	t.Parallel()

	root, err := message.ParseMultipart(context.Background(), strings.NewReader(treeMessage))
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	_, err = message.Serialize(context.Background(), buf, root.Part())
	require.NoError(t, err)

	again, err := message.ParseMultipart(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, flatten(root), flatten(again))
}
