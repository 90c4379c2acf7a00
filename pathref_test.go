package moderu_test

import (
	"errors"
	"testing"

	moderu "github.com/reoring/moderu"
)

func TestPathRef_Build(t *testing.T) {
	if got := moderu.Path().Pointer(); got != "/" {
		t.Fatalf("root pointer: %q", got)
	}
	if got := moderu.Path().Field("name").Pointer(); got != "/name" {
		t.Fatalf("field pointer: %q", got)
	}
	if got := moderu.Path().Field("pets").Index(2).Field("name").Pointer(); got != "/pets/2/name" {
		t.Fatalf("nested pointer: %q", got)
	}
}

func TestPathRef_Immutable(t *testing.T) {
	base := moderu.Path().Field("a")
	left := base.Field("b")
	right := base.Field("c")
	if left.Pointer() != "/a/b" || right.Pointer() != "/a/c" {
		t.Fatalf("branching mutated the base: %q / %q", left.Pointer(), right.Pointer())
	}
}

func TestEscapeToken_RFC6901(t *testing.T) {
	cases := map[string]string{
		"plain": "plain",
		"a/b":   "a~1b",
		"a~b":   "a~0b",
		"~/":    "~0~1",
	}
	for in, want := range cases {
		if got := moderu.EscapeToken(in); got != want {
			t.Fatalf("escape %q: %q != %q", in, got, want)
		}
	}
	if got := moderu.Path().Field("a/b~c").Pointer(); got != "/a~1b~0c" {
		t.Fatalf("field escaping: %q", got)
	}
}

func TestRebaseIssues_CollapsesChildRoot(t *testing.T) {
	err := moderu.Issues{
		{Path: "/", Code: moderu.CodeInvalidType},
		{Path: "", Code: moderu.CodeRequired},
		{Path: "/street", Code: moderu.CodeInvalidType},
	}
	got := moderu.RebaseIssues("/home", err)
	if len(got) != 3 {
		t.Fatalf("expected 3 issues, got %d", len(got))
	}
	if got[0].Path != "/home" || got[1].Path != "/home" || got[2].Path != "/home/street" {
		t.Fatalf("unexpected paths: %v", got)
	}
}

func TestRebaseIssues_WrapsPlainError(t *testing.T) {
	cause := errors.New("boom")
	got := moderu.RebaseIssues("/home", cause)
	if len(got) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(got))
	}
	if got[0].Path != "/home" || got[0].Code != moderu.CodeParseError || got[0].Cause != cause {
		t.Fatalf("unexpected issue: %+v", got[0])
	}
}

func TestRebaseIssues_Nil(t *testing.T) {
	if got := moderu.RebaseIssues("/x", nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
