package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "parse error",
			code:    CodeParse,
			wantMsg: "Invalid JSON document",
			wantCat: CategoryParse,
		},
		{
			name:    "missing target",
			code:    CodeMissingTarget,
			wantMsg: "Patch target not found",
			wantCat: CategoryPatch,
		},
		{
			name:    "config not found",
			code:    CodeConfigNotFound,
			wantMsg: "Configuration file not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := New(CodeDuplicateID).WithPath("_0_1")
	want := "E003: Duplicate node id at _0_1"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &Error{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestWithSource(t *testing.T) {
	data := []byte("{\n  \"type\": \"View\",\n  \"children\": [,]\n}")
	offset := int64(strings.Index(string(data), ","+"]"))
	err := New(CodeParse).WithSource("layout.json", data, offset)

	if err.Location == nil {
		t.Fatal("Location should be set")
	}
	if err.Location.Line != 3 {
		t.Errorf("Line = %d, want 3", err.Location.Line)
	}
	if err.Location.Column != 16 {
		t.Errorf("Column = %d, want 16", err.Location.Column)
	}
	if got := err.Location.String(); got != "layout.json:3:16" {
		t.Errorf("Location.String() = %q", got)
	}
	if len(err.Context) != 3 {
		t.Fatalf("Context has %d lines, want 3", len(err.Context))
	}
	if !strings.Contains(err.Context[1], "children") {
		t.Errorf("Context[1] = %q, want the offending line", err.Context[1])
	}
}

func TestUnwrapAndHasCode(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := New(CodeStore).Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !HasCode(err, CodeStore) {
		t.Error("HasCode should match the outer code")
	}

	outer := New(CodeSourceFetch).Wrap(New(CodeParse))
	if !HasCode(outer, CodeParse) {
		t.Error("HasCode should match a nested code")
	}
	if HasCode(cause, CodeParse) {
		t.Error("HasCode should be false for plain errors")
	}

	wrapped := fmt.Errorf("loading: %w", New(CodeThemeInvalid))
	if !HasCode(wrapped, CodeThemeInvalid) {
		t.Error("HasCode should see through fmt.Errorf wrapping")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeStore) != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New(CodeParse)
	if FromError(orig, CodeStore) != orig {
		t.Error("FromError should return an existing *Error unchanged")
	}

	got := FromError(fmt.Errorf("boom"), CodeStore)
	if got.Code != CodeStore || got.Wrapped == nil {
		t.Errorf("FromError = %+v, want code %s wrapping the cause", got, CodeStore)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	data := []byte("{\n  \"type\": \"View\",\n  \"children\": [,]\n}")
	err := New(CodeParse).
		WithSource("layout.json", data, 34).
		WithSuggestion("Check for a trailing comma")

	out := err.Format()
	for _, want := range []string{
		"ERROR E001: Invalid JSON document",
		"layout.json:3",
		"→",
		"Hint: Check for a trailing comma",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New(CodeMissingTarget).WithPath("btn3")
	if got := err.FormatCompact(); got != "E020: Patch target not found (btn3)" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestRegistryComplete(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Errorf("GetTemplate(%s) not found", code)
			continue
		}
		if tmpl.Message == "" {
			t.Errorf("%s has empty message", code)
		}
		if tmpl.Category == "" {
			t.Errorf("%s has empty category", code)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	for _, line := range lines {
		if len(line) > 10 {
			t.Errorf("line %q longer than 10", line)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %v", lines)
	}
}
