package internal

import (
	"fmt"
	"reflect"
)

// RawOutput is what a Generator returns. The concrete variants are
// NoOutput, TextOutput, FieldsOutput, ContentOutput and UnknownOutput.
type RawOutput interface {
	rawOutput()
}

type (
	// NoOutput means the backend produced nothing.
	NoOutput struct{}
	// TextOutput is plain generated text.
	TextOutput string
	// FieldsOutput is a keyed structure such as a decoded JSON object.
	FieldsOutput map[string]any
	// ContentOutput is an object exposing a content field. Value holds the
	// object itself.
	ContentOutput struct {
		Content any
		Value   any
	}
	// UnknownOutput wraps anything else.
	UnknownOutput struct{ Value any }
)

func (NoOutput) rawOutput()      {}
func (TextOutput) rawOutput()    {}
func (FieldsOutput) rawOutput()  {}
func (ContentOutput) rawOutput() {}
func (UnknownOutput) rawOutput() {}

// answerKeys are probed in order on keyed outputs.
var answerKeys = []string{"answer", "result", "output_text", "output", "content"}

// Normalize reduces any generator output to display text. It never panics;
// a panicking payload normalises to "".
func Normalize(out RawOutput) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	switch v := out.(type) {
	case nil, NoOutput:
		return ""
	case TextOutput:
		return string(v)
	case FieldsOutput:
		if v == nil {
			return ""
		}
		for _, key := range answerKeys {
			if val, ok := v[key]; ok {
				return stringify(val)
			}
		}
		return fmt.Sprint(map[string]any(v))
	case ContentOutput:
		if content, ok := v.Content.(string); ok {
			return content
		}
		if v.Value == nil {
			return ""
		}
		return fmt.Sprint(v.Value)
	case UnknownOutput:
		return stringify(v.Value)
	default:
		return fmt.Sprint(v)
	}
}

// NormalizeAny classifies v and normalises it. Like Normalize it never
// panics.
func NormalizeAny(v any) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()
	return Normalize(ClassifyOutput(v))
}

// ClassifyOutput lifts an arbitrary value into the RawOutput union.
func ClassifyOutput(v any) RawOutput {
	switch x := v.(type) {
	case nil:
		return NoOutput{}
	case RawOutput:
		return x
	case string:
		return TextOutput(x)
	case map[string]any:
		return FieldsOutput(x)
	case map[string]string:
		fields := make(FieldsOutput, len(x))
		for k, s := range x {
			fields[k] = s
		}
		return fields
	}

	if content, ok := contentField(v); ok {
		return ContentOutput{Content: content, Value: v}
	}
	return UnknownOutput{Value: v}
}

// contentField finds an exported Content field or a Content() method. A
// method that panics, including one called through a nil pointer, counts
// as no content.
func contentField(v any) (content any, ok bool) {
	rv := reflect.ValueOf(v)
	if m := rv.MethodByName("Content"); m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() == 1 {
		defer func() {
			if r := recover(); r != nil {
				content, ok = nil, false
			}
		}()
		return m.Call(nil)[0].Interface(), true
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}

	f := rv.FieldByName("Content")
	if !f.IsValid() || !f.CanInterface() {
		return nil, false
	}
	return f.Interface(), true
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
