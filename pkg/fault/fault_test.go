package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "direct fault error",
			err:  New(KindRateLimited, "gemini.Chat", "quota exhausted"),
			want: KindRateLimited,
		},
		{
			name: "wrapped fault error",
			err:  fmt.Errorf("chat request: %w", Wrap(KindUnavailable, "chromem.Query", errors.New("dial tcp: timeout"))),
			want: KindUnavailable,
		},
		{
			name: "plain error",
			err:  errors.New("something else"),
			want: KindUnknown,
		},
		{
			name: "nil-wrapped stays nil",
			err:  Wrap(KindGenerationFailed, "op", nil),
			want: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(KindUnavailable, "op", nil); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestErrorString(t *testing.T) {
	err := Newf(KindInvalidArgument, "chunk.Split", "overlap %d >= chunk size %d", 500, 500)
	want := "chunk.Split: invalid_argument: overlap 500 >= chunk size 500"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsKindUnwrapsChain(t *testing.T) {
	inner := Wrap(KindRateLimited, "gemini.Chat", errors.New("429"))
	outer := fmt.Errorf("session turn: %w", inner)
	if !IsKind(outer, KindRateLimited) {
		t.Error("IsKind() = false, want true through wrap chain")
	}
	if IsKind(outer, KindUnavailable) {
		t.Error("IsKind() matched wrong kind")
	}
}
