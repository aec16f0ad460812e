package entity

import (
	"fmt"
	"regexp"
	"strings"
)

// maxSymbolLength bounds raw input before normalization.
const maxSymbolLength = 24

// symbolPattern accepts tickers like AAPL, BRK-B, M&M.NS, ^NSEI and TCS.BO.
var symbolPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9&\-]{0,19}(\.[A-Z]{1,3})?$`)

// Symbol is a normalized ticker: upper-case, with an optional market suffix
// such as ".NS" (NSE) or ".BO" (BSE).
type Symbol string

// ParseSymbol normalizes free text into a Symbol.
// Surrounding whitespace and a leading '$' (cashtag) are dropped and the result is upper-cased.
// It returns a *ValidationError matching ErrInvalidSymbol when the input is not a ticker.
func ParseSymbol(raw string) (Symbol, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return "", &ValidationError{Field: "symbol", Message: "symbol is required", Kind: ErrInvalidSymbol}
	}
	if len(s) > maxSymbolLength {
		return "", &ValidationError{
			Field:   "symbol",
			Message: fmt.Sprintf("symbol must not exceed %d characters", maxSymbolLength),
			Kind:    ErrInvalidSymbol,
		}
	}

	s = strings.ToUpper(s)
	if !symbolPattern.MatchString(s) {
		return "", &ValidationError{
			Field:   "symbol",
			Message: fmt.Sprintf("invalid ticker %q", s),
			Kind:    ErrInvalidSymbol,
		}
	}
	return Symbol(s), nil
}

// MustParseSymbol is ParseSymbol for constants and tests. It panics on invalid input.
func MustParseSymbol(raw string) Symbol {
	sym, err := ParseSymbol(raw)
	if err != nil {
		panic(err)
	}
	return sym
}

// String returns the canonical form.
func (s Symbol) String() string { return string(s) }

// Suffix returns the market suffix including the dot (".NS"), or "" if none.
func (s Symbol) Suffix() string {
	if i := strings.LastIndexByte(string(s), '.'); i > 0 {
		return string(s[i:])
	}
	return ""
}

// Bare returns the symbol with its market suffix stripped, case-folded.
// "TCS.NS" becomes "tcs"; "^NSEI" becomes "nsei".
func (s Symbol) Bare() string {
	base := strings.TrimSuffix(string(s), s.Suffix())
	base = strings.TrimPrefix(base, "^")
	return strings.ToLower(base)
}
