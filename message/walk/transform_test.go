package walk_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-emlstream/message"
	"github.com/zostay/go-emlstream/message/walk"
)

func leaves(t *testing.T, parts []*message.Part) []*message.Multipart {
	t.Helper()

	require.Len(t, parts, 1)

	buf := &bytes.Buffer{}
	_, err := message.Serialize(context.Background(), buf, parts[0])
	require.NoError(t, err)

	m, err := message.ParseMultipart(context.Background(), buf)
	require.NoError(t, err)

	var out []*message.Multipart
	err = walk.AndProcessLeaves(
		func(part *message.Multipart, _ []*message.Multipart) error {
			out = append(out, part)
			return nil
		}, m)
	require.NoError(t, err)
	return out
}

func TestAndTransform_Copy(t *testing.T) {
	t.Parallel()

	m := parse(t, complexMsg)
	parts, err := walk.AndTransform(
		func(*message.Multipart, []*message.Multipart) ([]*message.Part, error) {
			return nil, walk.ErrCopy
		}, m)
	require.NoError(t, err)

	got := leaves(t, parts)
	require.Len(t, got, 4)
	assert.Equal(t, "Hello World!", string(got[1].Body))
	assert.Equal(t, "micro.pdf", got[2].Attachment)
	assert.Equal(t, m.Parts[2].Content, got[3].Content)
}

func TestAndTransform_SkipAndReplace(t *testing.T) {
	t.Parallel()

	m := parse(t, complexMsg)
	parts, err := walk.AndTransform(
		func(part *message.Multipart, _ []*message.Multipart) ([]*message.Part, error) {
			switch part.ContentType {
			case "application/pdf":
				return nil, walk.ErrSkip
			case "text/plain":
				return []*message.Part{{
					Header:  part.GetHeader().Clone(),
					Content: []byte("Goodbye World!"),
				}}, nil
			}
			return nil, walk.ErrCopy
		}, m)
	require.NoError(t, err)

	got := leaves(t, parts)
	require.Len(t, got, 3)
	assert.Equal(t, "text/html", got[0].ContentType)
	assert.Equal(t, "Goodbye World!", string(got[1].Body))
	assert.Equal(t, "att-1.gif", got[2].Attachment)
}

func TestAndTransform_EmptyMultipartSkipped(t *testing.T) {
	t.Parallel()

	m := parse(t, complexMsg)
	parts, err := walk.AndTransform(
		func(part *message.Multipart, parents []*message.Multipart) ([]*message.Part, error) {
			if len(parents) == 2 {
				return nil, walk.ErrSkip
			}
			return nil, walk.ErrCopy
		}, m)
	require.NoError(t, err)

	require.Len(t, parts, 1)
	assert.Len(t, parts[0].Parts, 2)

	parts, err = walk.AndTransform(
		func(*message.Multipart, []*message.Multipart) ([]*message.Part, error) {
			return nil, walk.ErrSkip
		}, m)
	assert.NoError(t, err)
	assert.Nil(t, parts)
}

func TestAndTransform_Errors(t *testing.T) {
	t.Parallel()

	m := parse(t, complexMsg)

	_, err := walk.AndTransform(
		func(*message.Multipart, []*message.Multipart) ([]*message.Part, error) {
			return nil, nil
		}, m)
	var bte *walk.BadTransformationError
	require.ErrorAs(t, err, &bte)
	assert.ErrorIs(t, err, walk.ErrNilNil)

	boom := errors.New("boom")
	_, err = walk.AndTransform(
		func(part *message.Multipart, _ []*message.Multipart) ([]*message.Part, error) {
			return []*message.Part{walk.CopyPart(part)}, boom
		}, m)
	require.ErrorAs(t, err, &bte)
	assert.ErrorIs(t, err, boom)

	_, err = walk.AndTransform(
		func(part *message.Multipart, parents []*message.Multipart) ([]*message.Part, error) {
			if len(parents) > 0 {
				return nil, boom
			}
			return nil, walk.ErrCopy
		}, m)
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.As(err, &bte))
}

func TestCopyPart(t *testing.T) {
	t.Parallel()

	m := parse(t, complexMsg)

	p := walk.CopyPart(m)
	assert.Nil(t, p.Parts)
	assert.Nil(t, p.Content)
	assert.NotSame(t, m.Header, p.Header)
	assert.Equal(t, m.Header.Bytes(m.Header.Break()), p.Header.Bytes(p.Header.Break()))

	pdf := m.Parts[1]
	p = walk.CopyPart(pdf)
	assert.Equal(t, pdf.Body, p.Content)
}
