package extractor

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jmylchreest/postmap/pkg/expr"
	"github.com/jmylchreest/postmap/pkg/plugin"
	"github.com/jmylchreest/postmap/pkg/record"
)

func newExtractor(t *testing.T, fields ...plugin.Field) *Extractor {
	t.Helper()
	e, err := New(plugin.Plugin{PluginName: "test", Version: "1.0", Fields: fields})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestExtract_HashtagScenario(t *testing.T) {
	e := newExtractor(t, plugin.Field{Name: "tags", Extractor: "extractHashtags(post.body)"})

	res, err := e.Extract(record.Record{"body": "hello #foo bar #baz", "title": "T"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	got, _ := res.Get("tags")
	if !reflect.DeepEqual(got, []any{"#foo", "#baz"}) {
		t.Errorf("tags = %#v", got)
	}
}

func TestExtract_ShortCircuit(t *testing.T) {
	calls := 0
	reg := NewRegistry()
	_ = reg.RegisterFunc("extractSpy", func(record.Record) (any, error) {
		calls++
		return "spy", nil
	})

	e, err := New(plugin.Plugin{Fields: []plugin.Field{
		{Name: "author", Extractor: "post.author || extractSpy()"},
	}}, WithRegistry(reg))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := e.Extract(record.Record{"author": "ali"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got, _ := res.Get("author"); got != "ali" {
		t.Errorf("author = %v, want ali", got)
	}
	if calls != 0 {
		t.Errorf("second alternative evaluated %d times, want 0", calls)
	}

	res, err = e.Extract(record.Record{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got, _ := res.Get("author"); got != "spy" {
		t.Errorf("author = %v, want spy", got)
	}
}

func TestExtract_FallbackOrder(t *testing.T) {
	e := newExtractor(t, plugin.Field{Name: "author", Extractor: "post.author || post.meta.author"})

	tests := []struct {
		name string
		rec  record.Record
		want any
	}{
		{"first wins", record.Record{"author": "a", "meta": map[string]any{"author": "b"}}, "a"},
		{"falls through", record.Record{"meta": map[string]any{"author": "b"}}, "b"},
		{"nil first falls through", record.Record{"author": nil, "meta": map[string]any{"author": "b"}}, "b"},
		{"none", record.Record{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Extract(tt.rec)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got, _ := res.Get("author"); got != tt.want {
				t.Errorf("author = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtract_DefaultFallback(t *testing.T) {
	e := newExtractor(t,
		plugin.Field{Name: "lang", Extractor: "post.lang || post.meta.lang", Default: "fa"},
		plugin.Field{Name: "editor", Extractor: "post.editor"},
	)

	res, err := e.Extract(record.Record{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got, _ := res.Get("lang"); got != "fa" {
		t.Errorf("lang = %v, want fa", got)
	}
	got, ok := res.Get("editor")
	if !ok || got != nil {
		t.Errorf("editor = %v (present=%v), want nil present", got, ok)
	}
}

func TestExtract_RequiredFieldMissing(t *testing.T) {
	e := newExtractor(t,
		plugin.Field{Name: "title", Extractor: "post.title"},
		plugin.Field{Name: "author", Required: true, Extractor: "post.author || post.meta.author"},
	)

	res, err := e.Extract(record.Record{"title": "T"})
	if res != nil {
		t.Errorf("expected no partial result, got %v", res.Keys())
	}
	if !errors.Is(err, ErrRequiredFieldMissing) {
		t.Fatalf("expected ErrRequiredFieldMissing, got %v", err)
	}
	var rf *RequiredFieldMissingError
	if !errors.As(err, &rf) || rf.Field != "author" {
		t.Fatalf("expected RequiredFieldMissingError for author, got %v", err)
	}
	if rf.Cause != nil {
		t.Errorf("multi-alternative lookups are not strict, got cause %v", rf.Cause)
	}
}

func TestExtract_RequiredSinglePath_StrictCause(t *testing.T) {
	e := newExtractor(t, plugin.Field{Name: "author", Required: true, Extractor: "post.meta.author"})

	_, err := e.Extract(record.Record{"meta": map[string]any{}})
	if !errors.Is(err, ErrRequiredFieldMissing) {
		t.Fatalf("expected ErrRequiredFieldMissing, got %v", err)
	}
	if !errors.Is(err, record.ErrMissingKey) {
		t.Errorf("expected MissingKey cause, got %v", err)
	}
	var mk *record.MissingKeyError
	if !errors.As(err, &mk) || mk.Segment != "author" || mk.Path != "meta.author" {
		t.Errorf("unexpected cause: %v", err)
	}
}

func TestExtract_RequiredWithDefault_NeverFails(t *testing.T) {
	e := newExtractor(t, plugin.Field{Name: "author", Required: true, Extractor: "post.author", Default: "anonymous"})

	res, err := e.Extract(record.Record{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got, _ := res.Get("author"); got != "anonymous" {
		t.Errorf("author = %v, want anonymous", got)
	}
}

func TestExtract_UnknownExtractor(t *testing.T) {
	e := newExtractor(t, plugin.Field{Name: "x", Extractor: "post.x || extractNope(post.body)", Default: "d"})

	// first alternative wins, so the unknown function is never reached
	if _, err := e.Extract(record.Record{"x": 1}); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	_, err := e.Extract(record.Record{})
	if !errors.Is(err, ErrUnknownExtractor) {
		t.Fatalf("expected ErrUnknownExtractor, got %v", err)
	}
	var ue *UnknownExtractorError
	if !errors.As(err, &ue) || ue.Name != "extractNope" || ue.Field != "x" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExtract_CustomFunctionBypassesResolution(t *testing.T) {
	e := newExtractor(t, plugin.Field{Name: "words", Extractor: "extractWordCount(post.body)"})
	err := e.Register("extractWordCount", Func(func(rec record.Record) (any, error) {
		return len(strings.Fields(record.String(rec, "text"))), nil
	}))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// post.body does not exist; the function reads "text" itself
	res, err := e.Extract(record.Record{"text": "one two three"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got, _ := res.Get("words"); got != 3 {
		t.Errorf("words = %v, want 3", got)
	}
}

func TestExtract_FunctionError(t *testing.T) {
	e := newExtractor(t, plugin.Field{Name: "x", Extractor: "extractBoom()"})
	boom := errors.New("boom")
	_ = e.Register("extractBoom", Func(func(record.Record) (any, error) { return nil, boom }))

	_, err := e.Extract(record.Record{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !strings.Contains(err.Error(), `field "x"`) {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestExtract_FunctionNilFallsThrough(t *testing.T) {
	e := newExtractor(t, plugin.Field{Name: "x", Extractor: "extractNil() || post.x"})
	_ = e.Register("extractNil", Func(func(record.Record) (any, error) { return nil, nil }))

	res, err := e.Extract(record.Record{"x": "fallback"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got, _ := res.Get("x"); got != "fallback" {
		t.Errorf("x = %v, want fallback", got)
	}
}

func TestExtract_FieldOrder(t *testing.T) {
	e := newExtractor(t,
		plugin.Field{Name: "z", Extractor: "post.z"},
		plugin.Field{Name: "a", Extractor: "post.a"},
		plugin.Field{Name: "m", Extractor: "post.m"},
	)

	res, err := e.Extract(record.Record{"a": 1, "m": 2, "z": 3})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := strings.Join(res.Keys(), ","); got != "z,a,m" {
		t.Errorf("Keys() = %s, want z,a,m", got)
	}
}

func TestNew_InvalidExpression(t *testing.T) {
	_, err := New(plugin.Plugin{Fields: []plugin.Field{{Name: "bad", Extractor: "title"}}})
	if !errors.Is(err, expr.ErrInvalidExpression) {
		t.Fatalf("expected ErrInvalidExpression, got %v", err)
	}
	if !strings.Contains(err.Error(), `field "bad"`) {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestNew_DuplicateField(t *testing.T) {
	_, err := New(plugin.Plugin{Fields: []plugin.Field{
		{Name: "a", Extractor: "post.a"},
		{Name: "a", Extractor: "post.b"},
	}})
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate field error, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	e := newExtractor(t,
		plugin.Field{Name: "tags", Extractor: "extractHashtags(post.body)"},
		plugin.Field{Name: "a", Extractor: "post.a || extractFoo()"},
		plugin.Field{Name: "b", Extractor: "extractBar()"},
	)

	err := e.Check()
	if !errors.Is(err, ErrUnknownExtractor) {
		t.Fatalf("expected ErrUnknownExtractor, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "extractFoo") || !strings.Contains(msg, "extractBar") {
		t.Errorf("Check() should report every unknown function: %v", msg)
	}

	_ = e.Register("extractFoo", Func(func(record.Record) (any, error) { return nil, nil }))
	_ = e.Register("extractBar", Func(func(record.Record) (any, error) { return nil, nil }))
	if err := e.Check(); err != nil {
		t.Errorf("Check() after registration = %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	e := newExtractor(t, plugin.Field{Name: "a", Required: true, Extractor: "post.a || post.b", Default: nil})

	v, err := e.Evaluate(record.Record{"b": "x"}, "a")
	if err != nil || v != "x" {
		t.Errorf("Evaluate() = %v, %v", v, err)
	}
	if _, err := e.Evaluate(record.Record{}, "missing"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestExtract_CompositeDefaultNotShared(t *testing.T) {
	e := newExtractor(t,
		plugin.Field{Name: "tags", Extractor: "post.tags", Default: []any{"untagged"}},
		plugin.Field{Name: "meta", Extractor: "post.meta", Default: map[string]any{"source": "feed", "flags": []any{"a"}}},
	)

	first, err := e.Extract(record.Record{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	tags, _ := first.Get("tags")
	tags.([]any)[0] = "changed"
	meta, _ := first.Get("meta")
	meta.(map[string]any)["source"] = "changed"
	meta.(map[string]any)["flags"].([]any)[0] = "changed"

	second, err := e.Extract(record.Record{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got, _ := second.Get("tags"); !reflect.DeepEqual(got, []any{"untagged"}) {
		t.Errorf("tags = %#v, want untouched default", got)
	}
	want := map[string]any{"source": "feed", "flags": []any{"a"}}
	if got, _ := second.Get("meta"); !reflect.DeepEqual(got, want) {
		t.Errorf("meta = %#v, want %#v", got, want)
	}
	if got := e.Plugin().Fields[0].Default; !reflect.DeepEqual(got, []any{"untagged"}) {
		t.Errorf("plugin default mutated: %#v", got)
	}
}
