package validate

import (
	goerrs "errors"
	"math"
	"strings"
	"testing"

	"github.com/sessamekesh/blockbridge/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestSanitizer(t *testing.T) (*Sanitizer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return CreateSanitizer(SanitizerParams{Logger: zap.New(core)}), logs
}

func TestNumberFallsBackOnInvalidInput(t *testing.T) {
	s, _ := newTestSanitizer(t)

	invalid := []any{nil, math.NaN(), math.Inf(1), math.Inf(-1), "", "abc", []int{1}, struct{}{}}
	for _, v := range invalid {
		if got := s.Number(v, 7); got != 7 {
			t.Fatalf("Number(%#v) = %v, want fallback 7", v, got)
		}
	}
}

func TestNumberAcceptsNumericInput(t *testing.T) {
	s, _ := newTestSanitizer(t)

	cases := []struct {
		in   any
		want float64
	}{
		{12, 12},
		{int64(-3), -3},
		{float32(1.5), 1.5},
		{100.25, 100.25},
		{" 42 ", 42},
		{"-7.5", -7.5},
		{true, 1},
		{false, 0},
	}
	for _, c := range cases {
		if got := s.Number(c.in, 0); got != c.want {
			t.Fatalf("Number(%#v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestIntegerTruncates(t *testing.T) {
	s, _ := newTestSanitizer(t)
	if got := s.Integer(3.9, 1); got != 3 {
		t.Fatalf("Integer(3.9) = %d, want 3", got)
	}
	if got := s.Integer(nil, 1); got != 1 {
		t.Fatalf("Integer(nil) = %d, want 1", got)
	}
}

func TestIntegerClampsOutOfRange(t *testing.T) {
	s, _ := newTestSanitizer(t)

	cases := []struct {
		in   any
		want int
	}{
		{1e20, math.MaxInt32},
		{-1e20, math.MinInt32},
		{"1e300", math.MaxInt32},
		{math.MaxFloat64, math.MaxInt32},
		{-2147483647.5, -2147483647},
	}
	for _, c := range cases {
		if got := s.Integer(c.in, 1); got != c.want {
			t.Fatalf("Integer(%#v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestStringCoercion(t *testing.T) {
	s, _ := newTestSanitizer(t)

	if got := s.String(nil, "stone"); got != "stone" {
		t.Fatalf("String(nil) = %q, want stone", got)
	}
	if got := s.String("", "stone"); got != "" {
		t.Fatalf("String(\"\") = %q, want empty string kept", got)
	}
	if got := s.String(12.0, ""); got != "12" {
		t.Fatalf("String(12.0) = %q, want 12", got)
	}
	if got := s.String(0.1, ""); got != "0.1" {
		t.Fatalf("String(0.1) = %q, want 0.1", got)
	}
	if got := s.String(true, ""); got != "true" {
		t.Fatalf("String(true) = %q, want true", got)
	}
	if got := s.String(7, ""); got != "7" {
		t.Fatalf("String(7) = %q, want 7", got)
	}
}

func TestMessageTruncatesAndWarns(t *testing.T) {
	s, logs := newTestSanitizer(t)

	long := strings.Repeat("a", 300)
	got := s.Message(long)
	if len(got) != 256 {
		t.Fatalf("Message() length = %d, want 256", len(got))
	}
	if logs.FilterMessage("Truncating chat message").Len() != 1 {
		t.Fatalf("expected one truncation warning, got %v", logs.All())
	}

	short := "hello"
	if got := s.Message(short); got != short {
		t.Fatalf("Message(%q) = %q", short, got)
	}
	if logs.FilterMessage("Truncating chat message").Len() != 1 {
		t.Fatalf("short message should not warn")
	}
}

func TestMessageLengthCannotExceedChatLimit(t *testing.T) {
	s := CreateSanitizer(SanitizerParams{MaxMessageLength: 1000, Logger: zap.NewNop()})

	if got := s.Message(strings.Repeat("a", 1000)); len(got) != DefaultMaxMessageLength {
		t.Fatalf("Message() length = %d, want %d", len(got), DefaultMaxMessageLength)
	}

	shorter := CreateSanitizer(SanitizerParams{MaxMessageLength: 10, Logger: zap.NewNop()})
	if got := shorter.Message(strings.Repeat("a", 20)); len(got) != 10 {
		t.Fatalf("Message() length = %d, want 10", len(got))
	}
}

func TestMessageCountsCharactersNotBytes(t *testing.T) {
	s, _ := newTestSanitizer(t)

	got := s.Message(strings.Repeat("é", 257))
	if n := len([]rune(got)); n != 256 {
		t.Fatalf("Message() rune length = %d, want 256", n)
	}
}

func TestNonEmpty(t *testing.T) {
	s, _ := newTestSanitizer(t)

	arg, err := s.NonEmpty("invite", "  alex ")
	if err != nil {
		t.Fatalf("NonEmpty() failed: %v", err)
	}
	if arg != "alex" {
		t.Fatalf("NonEmpty() = %q, want alex", arg)
	}

	for _, v := range []any{nil, "", "   "} {
		_, err := s.NonEmpty("invite", v)
		var emptyErr *errors.EmptyArgument
		if !goerrs.As(err, &emptyErr) {
			t.Fatalf("NonEmpty(%#v) error = %v, want EmptyArgument", v, err)
		}
	}
}
