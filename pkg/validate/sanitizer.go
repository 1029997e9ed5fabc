package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sessamekesh/blockbridge/pkg/errors"
	"go.uber.org/zap"
)

const DefaultMaxMessageLength = 256

type SanitizerParams struct {
	MaxMessageLength int

	Logger *zap.Logger
}

// Sanitizer turns loosely typed block arguments into wire-safe values. It
// never fails: bad input is replaced by the caller's default.
type Sanitizer struct {
	maxMessageLength int

	log *zap.Logger
}

func CreateSanitizer(params SanitizerParams) *Sanitizer {
	logger := params.Logger
	if logger == nil {
		logger = zap.Must(zap.NewDevelopment())
	}

	maxMessageLength := DefaultMaxMessageLength
	if params.MaxMessageLength > 0 && params.MaxMessageLength < DefaultMaxMessageLength {
		maxMessageLength = params.MaxMessageLength
	}

	return &Sanitizer{
		maxMessageLength: maxMessageLength,
		log:              logger.With(zap.String("component", "Sanitizer")),
	}
}

func (s *Sanitizer) Number(v any, fallback float64) float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return fallback
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return fallback
		}
		f = parsed
	default:
		return fallback
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

// Integer is Number truncated toward zero and clamped to the int32 range the
// mod accepts, for counts and step sizes.
func (s *Sanitizer) Integer(v any, fallback int) int {
	f := s.Number(v, float64(fallback))
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	if f <= math.MinInt32 {
		return math.MinInt32
	}
	return int(f)
}

func (s *Sanitizer) String(v any, fallback string) string {
	switch t := v.(type) {
	case nil:
		return fallback
	case string:
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fallback
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

// Message coerces chat text and truncates it to the server's chat limit.
func (s *Sanitizer) Message(v any) string {
	msg := s.String(v, "")
	runes := []rune(msg)
	if len(runes) <= s.maxMessageLength {
		return msg
	}

	s.log.Warn("Truncating chat message",
		zap.Int("length", len(runes)),
		zap.Int("maxLength", s.maxMessageLength))
	return string(runes[:s.maxMessageLength])
}

// NonEmpty is the only check the legacy text path gets.
func (s *Sanitizer) NonEmpty(operation string, v any) (string, error) {
	arg := strings.TrimSpace(s.String(v, ""))
	if arg == "" {
		return "", &errors.EmptyArgument{Operation: operation}
	}
	return arg, nil
}
