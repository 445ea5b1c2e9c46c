package expr

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Alternative
	}{
		{
			name: "single path",
			in:   "post.title",
			want: []Alternative{PathRef{Path: "title"}},
		},
		{
			name: "fallback chain trims whitespace",
			in:   "  post.author ||post.meta.author  ",
			want: []Alternative{PathRef{Path: "author"}, PathRef{Path: "meta.author"}},
		},
		{
			name: "function call",
			in:   "extractHashtags(post.body)",
			want: []Alternative{Call{Name: "extractHashtags", Args: "post.body"}},
		},
		{
			name: "mixed",
			in:   "post.tags || extractHashtags(post.body)",
			want: []Alternative{PathRef{Path: "tags"}, Call{Name: "extractHashtags", Args: "post.body"}},
		},
		{
			name: "call without args",
			in:   "extractNow()",
			want: []Alternative{Call{Name: "extractNow"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"empty alternative", "post.a || "},
		{"bare post", "post"},
		{"empty segment", "post.meta..author"},
		{"trailing dot", "post.meta."},
		{"unknown form", "title"},
		{"bad function name", "1extract(post.body)"},
		{"unbalanced", "extract)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			if !errors.Is(err, ErrInvalidExpression) {
				t.Fatalf("expected ErrInvalidExpression, got %v", err)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %T", err)
			}
			if se.Expression != tt.in {
				t.Errorf("Expression = %q, want %q", se.Expression, tt.in)
			}
		})
	}
}

func TestAlternative_String(t *testing.T) {
	alts := MustParse("post.meta.author || extractHashtags(post.body)")
	if got := alts[0].String(); got != "post.meta.author" {
		t.Errorf("PathRef.String() = %q", got)
	}
	if got := alts[1].String(); got != "extractHashtags(post.body)" {
		t.Errorf("Call.String() = %q", got)
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustParse("nonsense")
}

func TestIsIdentifier(t *testing.T) {
	for s, want := range map[string]bool{
		"extractHashtags": true,
		"_x1":             true,
		"1x":              false,
		"":                false,
		"a-b":             false,
		"a.b":             false,
	} {
		if got := IsIdentifier(s); got != want {
			t.Errorf("IsIdentifier(%q) = %v, want %v", s, got, want)
		}
	}
}
