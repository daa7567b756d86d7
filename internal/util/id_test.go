package util

import (
	"errors"
	"strings"
	"testing"
)

func TestShortID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		n    int
		want string
	}{
		{name: "default length truncates", id: "3f2a9c1e-77d4-4b8e", n: 0, want: "3f2a9c1e"},
		{name: "negative uses default", id: "3f2a9c1e-77d4-4b8e", n: -1, want: "3f2a9c1e"},
		{name: "explicit length", id: "3f2a9c1e-77d4-4b8e", n: 13, want: "3f2a9c1e-77d4"},
		{name: "length longer than ID", id: "plan_1", n: 20, want: "plan_1"},
		{name: "empty ID", id: "", n: 8, want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShortID(tc.id, tc.n); got != tc.want {
				t.Errorf("ShortID(%q, %d) = %q, want %q", tc.id, tc.n, got, tc.want)
			}
		})
	}
}

func TestResolvePrefix(t *testing.T) {
	ids := []string{"3f2a9c1e-aaaa", "3f2a9c1e-bbbb", "7c00e1d2-cccc", "plan", "plan_launch"}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "full id", input: "7c00e1d2-cccc", want: "7c00e1d2-cccc"},
		{name: "unique prefix", input: "7c", want: "7c00e1d2-cccc"},
		{name: "exact match beats longer ids", input: "plan", want: "plan"},
		{name: "ambiguous", input: "3f2a", wantErr: ErrAmbiguousID},
		{name: "no match", input: "ffff", wantErr: ErrNotFound},
		{name: "empty", input: "  ", wantErr: ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolvePrefix(tc.input, ids)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("ResolvePrefix(%q) error = %v, want %v", tc.input, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolvePrefix(%q) unexpected error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ResolvePrefix(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestResolvePrefix_AmbiguousListsCandidates(t *testing.T) {
	ids := []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7"}

	_, err := ResolvePrefix("a", ids)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "matches 7 IDs") {
		t.Errorf("message should carry the match count: %s", msg)
	}
	if strings.Contains(msg, "a6") {
		t.Errorf("message should cap listed candidates at %d: %s", MaxAmbiguousCandidates, msg)
	}
}
