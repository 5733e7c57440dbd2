package flats

// Int24/Uint24 stand in for the original runtime's 24-bit integers, which
// have no native Go width: the schema still calls them int24/uint24 (4
// bytes, aligned like int32 — preset_types.h's own comment calls it "a
// pretty weird type and size"), so the generated accessor reads/writes a
// full int32/uint32 and this type is just the spelling a schema-facing
// signature shows. Nothing in this package narrows the stored value to 24
// bits; callers that care about overflow check it themselves.
type Int24 int32
type Uint24 uint32

// TimeStamp mirrors parser.cpp's own placeholder for an as-yet-unspecified
// application timestamp type ("struct TimeStamp { long x, y; }"): two
// 8-byte fields, 16 bytes total, 8-byte aligned.
type TimeStamp struct {
	X int64
	Y int64
}

// TimePoint mirrors application_types.h's time_point: nanoseconds since
// epoch in a single 8-byte field.
type TimePoint struct {
	Value int64
}

// UKey mirrors application_types.h's ukey_t (a plain uint32_t key, no
// further structure).
type UKey uint32

// ExchangeID mirrors application_types.h's exchange_id enum (backed by a
// uint16_t; the original only names its zero value, "none").
type ExchangeID uint16

const ExchangeNone ExchangeID = 0

// OptionPrice mirrors application_types.h's option_price_t, a
// scaled_decimal<uint32_t, 4>: an unscaled uint32 magnitude plus a fixed
// implied scale of 4 decimal places (the original's own scaled_decimal is
// marked "fake, for now" — there is no richer original to match).
type OptionPrice uint32

const OptionPriceScale = 4

// Float64 returns p's value as a float64, dividing out the implied scale.
func (p OptionPrice) Float64() float64 {
	scale := 1.0
	for i := 0; i < OptionPriceScale; i++ {
		scale *= 10
	}
	return float64(p) / scale
}

// OptionTradeSide mirrors application_types.h's option_trade_side_values
// enum (backed by a single byte, values given as char literals).
type OptionTradeSide byte

const (
	OptionTradeSideBuy  OptionTradeSide = 'B'
	OptionTradeSideSell OptionTradeSide = 'S'
)

// InstrumentStatus mirrors application_types.h's instrument_status enum
// (backed by a uint8_t; the original leaves its values unspecified).
type InstrumentStatus uint8

// OptionBookFlags mirrors application_types.h's option_book_flags enum
// (backed by a uint8_t bitset; the original leaves its bits unspecified).
type OptionBookFlags uint8

// OptionBookFlags1 mirrors application_types.h's option_book_flags1,
// which the original defines as option_book_flags widened to a 16-bit
// bitset ("enum_bitset<option_book_flags, 16>" in its commented-out form).
type OptionBookFlags1 uint16
