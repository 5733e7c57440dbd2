package flats

import "fmt"

// ErrorCode identifies a runtime check failure raised by generated code or
// by this package's contracts. Values mirror the taxonomy in the original
// Flats runtime header one-for-one.
type ErrorCode int

const (
	BadInt ErrorCode = iota
	BadArrayInit
	TailTooBig
	BadSpanIndex
	ArrayInitializer
	SmallBuffer
	OptionalNotPresent
	CstringOverflow
	Truncation
	Narrowing
	VariantTag
	FixedArrayOverflow
)

var errorCodeName = [...]string{
	"bad int",
	"bad array init",
	"tail too big",
	"bad span index",
	"array initializer",
	"buffer too small",
	"optional not present",
	"C-style string too long",
	"C-style string truncation",
	"narrowing",
	"bad variant tag",
	"fixed array overflow",
}

func (c ErrorCode) String() string {
	if int(c) < 0 || int(c) >= len(errorCodeName) {
		return "unknown error"
	}
	return errorCodeName[c]
}

// Error is the error type every runtime check raises. It is a plain
// comparable value so callers can match it with errors.Is against one of
// the package-level sentinels below.
type Error struct {
	Code ErrorCode
}

func (e Error) Error() string {
	return fmt.Sprintf("flats: %s", e.Code)
}

// Sentinels, one per ErrorCode, for errors.Is comparisons.
var (
	ErrBadInt              = Error{BadInt}
	ErrBadArrayInit        = Error{BadArrayInit}
	ErrTailTooBig          = Error{TailTooBig}
	ErrBadSpanIndex        = Error{BadSpanIndex}
	ErrArrayInitializer    = Error{ArrayInitializer}
	ErrSmallBuffer         = Error{SmallBuffer}
	ErrOptionalNotPresent  = Error{OptionalNotPresent}
	ErrCstringOverflow     = Error{CstringOverflow}
	ErrTruncation          = Error{Truncation}
	ErrNarrowing           = Error{Narrowing}
	ErrVariantTag          = Error{VariantTag}
	ErrFixedArrayOverflow  = Error{FixedArrayOverflow}
)

func errorFor(code ErrorCode) error {
	return Error{code}
}

// HandlingMode selects what a runtime check does when its predicate fails.
type HandlingMode int

const (
	Ignoring HandlingMode = iota
	Logging
	Testing
	Throwing
	Terminating
)

// DefaultHandling is the mode every check uses unless told otherwise.
const DefaultHandling = Testing

// Logf is called by the Logging and Testing handling modes before they
// report a failure. It defaults to nothing; cmd/flatc and tests may
// override it to route failures through log/slog.
var Logf = func(code ErrorCode) {}

// Per-concern handling overrides, mirroring the original runtime's
// check_cstring/check_truncation/check_narrowing constexpr knobs: each
// names one check site's mode so a caller can dial it independently of
// DefaultHandling. cstring_overflow is dialed per Allocator instead (see
// Allocator.Handling) since every site raising it already has one to
// hand. tail_too_big, small_buffer, and variant_tag have no entry here
// and never will — every call site raising them is hardcoded to Testing
// because a violation there means memory corruption, not a condition an
// embedder should be able to downgrade to Ignoring.
var (
	SpanIndexHandling  = DefaultHandling // bad_span_index (Span.At/Set, Fixed_vector.Set)
	OptionalHandling   = DefaultHandling // optional_not_present
	NarrowingHandling  = DefaultHandling // narrowing
	FixedArrayHandling = DefaultHandling // fixed_array_overflow
)

// Expect evaluates cond and, on failure, reacts according to mode:
//
//   - Ignoring: does nothing, ever.
//   - Logging: calls Logf and returns nil; never an error.
//   - Testing: calls Logf and returns the error for code (the default mode;
//     tail_too_big, small_buffer, and variant_tag checks must use this,
//     never Ignoring or Logging, because a violation there signals memory
//     corruption rather than a recoverable condition).
//   - Throwing: returns the error for code without logging.
//   - Terminating: panics immediately.
//
// cond is a closure so each call site can capture the state it checks;
// Expect always evaluates it first, whatever the mode.
func Expect(mode HandlingMode, cond func() bool, code ErrorCode) error {
	if cond() {
		return nil
	}
	switch mode {
	case Ignoring:
		return nil
	case Logging:
		Logf(code)
		return nil
	case Testing:
		Logf(code)
		return errorFor(code)
	case Throwing:
		return errorFor(code)
	case Terminating:
		panic(errorFor(code))
	default:
		panic(fmt.Sprintf("flats: bad error handling mode %d", mode))
	}
}

// ExpectDefault is Expect with DefaultHandling.
func ExpectDefault(cond func() bool, code ErrorCode) error {
	return Expect(DefaultHandling, cond, code)
}
