package internal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type contentReply struct {
	Content string
}

type methodReply struct{ text string }

func (m methodReply) Content() string { return m.text }

type messageReply struct {
	Role    string
	Content any
}

type panickyReply struct{}

func (panickyReply) Content() string { panic("boom") }

func TestNormalize(t *testing.T) {
	unrelated := map[string]any{"unrelated": 1}

	tests := []struct {
		name string
		in   RawOutput
		want string
	}{
		{"nil", nil, ""},
		{"none", NoOutput{}, ""},
		{"text", TextOutput("hi"), "hi"},
		{"answer key", FieldsOutput{"answer": "x"}, "x"},
		{"answer beats result", FieldsOutput{"result": "r", "answer": "a"}, "a"},
		{"result key", FieldsOutput{"result": "r", "content": "c"}, "r"},
		{"output_text key", FieldsOutput{"output_text": "ot", "output": "o"}, "ot"},
		{"content key", FieldsOutput{"content": "c"}, "c"},
		{"non string value", FieldsOutput{"answer": 42}, "42"},
		{"no known key", FieldsOutput(unrelated), fmt.Sprint(unrelated)},
		{"nil fields", FieldsOutput(nil), ""},
		{"content object", ContentOutput{Content: "body"}, "body"},
		{"content non string", ContentOutput{Content: 1, Value: messageReply{Content: 1}}, "{ 1}"},
		{"content empty", ContentOutput{}, ""},
		{"unknown", UnknownOutput{Value: 3.5}, "3.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestClassifyOutput(t *testing.T) {
	assert.Equal(t, NoOutput{}, ClassifyOutput(nil))
	assert.Equal(t, TextOutput("hi"), ClassifyOutput("hi"))
	assert.Equal(t, FieldsOutput{"answer": "x"}, ClassifyOutput(map[string]any{"answer": "x"}))
	assert.Equal(t, FieldsOutput{"answer": "x"}, ClassifyOutput(map[string]string{"answer": "x"}))
	assert.Equal(t, ContentOutput{Content: "s", Value: contentReply{Content: "s"}}, ClassifyOutput(contentReply{Content: "s"}))
	ptr := &contentReply{Content: "p"}
	assert.Equal(t, ContentOutput{Content: "p", Value: ptr}, ClassifyOutput(ptr))
	assert.Equal(t, ContentOutput{Content: "m", Value: methodReply{text: "m"}}, ClassifyOutput(methodReply{text: "m"}))
	assert.Equal(t, UnknownOutput{Value: panickyReply{}}, ClassifyOutput(panickyReply{}))
	assert.Equal(t, UnknownOutput{Value: 7}, ClassifyOutput(7))
	assert.Equal(t, TextOutput("kept"), ClassifyOutput(TextOutput("kept")))
}

func TestNormalizeAny(t *testing.T) {
	assert.Equal(t, "", NormalizeAny(nil))
	assert.Equal(t, "hi", NormalizeAny("hi"))
	assert.Equal(t, "x", NormalizeAny(map[string]any{"answer": "x"}))
	assert.Equal(t, "s", NormalizeAny(&contentReply{Content: "s"}))
	assert.Equal(t, "[1 2]", NormalizeAny([]int{1, 2}))

	var nilPtr *contentReply
	assert.NotPanics(t, func() { NormalizeAny(nilPtr) })
}

func TestNormalizeAnyContentObjects(t *testing.T) {
	msg := messageReply{Role: "assistant", Content: []string{"a", "b"}}
	assert.Equal(t, fmt.Sprint(msg), NormalizeAny(msg))

	empty := struct{ Content any }{}
	assert.Equal(t, fmt.Sprint(empty), NormalizeAny(empty))

	assert.Equal(t, "ok", NormalizeAny(messageReply{Role: "assistant", Content: "ok"}))
}

func TestNormalizeAnyPanickingContent(t *testing.T) {
	var nilMethod *methodReply
	assert.NotPanics(t, func() { NormalizeAny(nilMethod) })
	assert.Equal(t, "<nil>", NormalizeAny(nilMethod))

	assert.NotPanics(t, func() { NormalizeAny(panickyReply{}) })
	assert.Equal(t, "{}", NormalizeAny(panickyReply{}))
}
