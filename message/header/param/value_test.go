package param_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zostay/go-emlstream/message/header/param"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		value  string
		params map[string]string
	}{
		{"no params", "text/plain", "text/plain", nil},
		{"quoted boundary", `multipart/mixed; boundary="xxxxxx"`, "multipart/mixed", map[string]string{"boundary": "xxxxxx"}},
		{"mixed", `value/test:123;param1=123; param2="test=12;33"; param3=999`, "value/test:123", map[string]string{
			"param1": "123",
			"param2": "test=12;33",
			"param3": "999",
		}},
		{"escaped quote", `attachment; filename="say \"hi\".txt"`, "attachment", map[string]string{"filename": `say "hi".txt`}},
		{"comma separator", `inline, name=x`, "inline", map[string]string{"name": "x"}},
		{"only params", `charset=utf-8`, "", map[string]string{"charset": "utf-8"}},
		{"unterminated quote", `text/plain; name="abc`, "text/plain", map[string]string{"name": "abc"}},
		{"empty value", `text/plain; p3=`, "text/plain", map[string]string{"p3": ""}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v, ps := param.Split(tc.in)
			assert.Equal(t, tc.value, v)
			assert.Equal(t, tc.params, ps)
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `p="hello world"`, param.Format(map[string]string{"p": "hello world"}))
	assert.Equal(t, `p="hello;world"`, param.Format(map[string]string{"p": "hello;world"}))
	assert.Equal(t, `p="\"hello\""`, param.Format(map[string]string{"p": `"hello"`}))
	assert.Equal(t, `p1=abc; p2="uvw xyz"; p3=`, param.Format(map[string]string{
		"p1": "abc",
		"p2": "uvw xyz",
		"p3": "",
	}))
}

func TestParse(t *testing.T) {
	t.Parallel()

	mt := param.Parse("text")
	assert.Equal(t, "text", mt.MediaType())
	assert.Equal(t, "", mt.Type())
	assert.Equal(t, "", mt.Subtype())
	assert.Equal(t, map[string]string{}, mt.Parameters())

	mt = param.Parse("Image/JPEG")
	assert.Equal(t, "Image/JPEG", mt.MediaType())
	assert.Equal(t, "image", mt.Type())
	assert.Equal(t, "jpeg", mt.Subtype())

	mt = param.Parse("application/json; charset=UTF-8; foo=bar")
	assert.Equal(t, "application/json", mt.MediaType())
	assert.Equal(t, map[string]string{
		"charset": "UTF-8",
		"foo":     "bar",
	}, mt.Parameters())
	assert.Equal(t, "UTF-8", mt.Charset())
}

func TestModify(t *testing.T) {
	t.Parallel()

	mt := param.New("text/json")
	assert.Equal(t, "text/json", mt.String())

	mt = param.Modify(mt,
		param.Set(param.Boundary, "abc123"),
		param.Change("application/json"),
	)
	assert.Equal(t, "application/json; boundary=abc123", mt.String())

	mt = param.Modify(mt,
		param.Change("text/x-json"),
		param.Set(param.Charset, "utf-8"),
		param.Delete(param.Boundary),
	)
	assert.Equal(t, `text/x-json; charset="utf-8"`, mt.String())
	assert.Equal(t, []byte(`text/x-json; charset="utf-8"`), mt.Bytes())
}

func TestValue_Parameter(t *testing.T) {
	t.Parallel()

	mt := param.New("text/plain", map[string]string{
		"Boundary": "abc123",
		"charset":  "latin1",
		"blah":     "BLOOP",
	})

	assert.Equal(t, "abc123", mt.Parameter(param.Boundary))
	assert.Equal(t, "abc123", mt.Boundary())
	assert.Equal(t, "latin1", mt.Charset())
	assert.Equal(t, "BLOOP", mt.Parameter("blah"))
	assert.Equal(t, "", mt.Parameter(param.Filename))
	assert.Equal(t, "", mt.Filename())
}
