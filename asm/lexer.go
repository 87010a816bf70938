package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Tokens
// ---------------------------------------------------------------------------

type tokenKind int

const (
	tokenEOL tokenKind = iota
	tokenIdent
	tokenNumber
	tokenString
	tokenPunct
)

type token struct {
	kind tokenKind
	text string // unquoted for strings
}

func (t token) is(punct string) bool {
	return t.kind == tokenPunct && t.text == punct
}

func (t token) String() string {
	switch t.kind {
	case tokenEOL:
		return "end of line"
	case tokenString:
		return strconv.Quote(t.text)
	case tokenPunct:
		return "'" + t.text + "'"
	}
	return t.text
}

// ---------------------------------------------------------------------------
// Line scanner
// ---------------------------------------------------------------------------

const punctuation = "(),[]|@=:*"

// scanLine splits one source line into tokens. A '#' outside a string
// starts a comment that runs to the end of the line.
func scanLine(line string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++

		case c == '#':
			return toks, nil

		case c == '"':
			j, err := scanString(line, i)
			if err != nil {
				return nil, err
			}
			s, err := strconv.Unquote(line[i:j])
			if err != nil {
				return nil, fmt.Errorf("malformed string literal %s", line[i:j])
			}
			toks = append(toks, token{tokenString, s})
			i = j

		case isDigit(c) || (c == '-' || c == '+') && i+1 < len(line) && isDigit(line[i+1]):
			j := i + 1
			for j < len(line) && isNumberChar(line[i:], j-i) {
				j++
			}
			toks = append(toks, token{tokenNumber, line[i:j]})
			i = j

		case isIdentStart(c):
			j := i + 1
			for j < len(line) && isIdentChar(line[j]) {
				j++
			}
			toks = append(toks, token{tokenIdent, line[i:j]})
			i = j

		case strings.IndexByte(punctuation, c) >= 0:
			toks = append(toks, token{tokenPunct, string(c)})
			i++

		default:
			return nil, fmt.Errorf("unexpected character %q", c)
		}
	}
	return toks, nil
}

// scanString returns the offset just past the closing quote of the string
// literal starting at line[start].
func scanString(line string, start int) (int, error) {
	for j := start + 1; j < len(line); j++ {
		switch line[j] {
		case '\\':
			j++
		case '"':
			return j + 1, nil
		}
	}
	return 0, fmt.Errorf("unterminated string literal")
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isIdentStart(c byte) bool { return isLetter(c) || c == '_' || c == '$' || c == '.' }

func isIdentChar(c byte) bool { return isIdentStart(c) || isDigit(c) }

// isNumberChar reports whether lit[j] continues the number literal lit. It
// accepts digits, hex digits and prefixes, a decimal point, and a sign
// directly after a decimal exponent.
func isNumberChar(lit string, j int) bool {
	c := lit[j]
	if isDigit(c) || isLetter(c) || c == '.' || c == '_' {
		return true
	}
	if c == '-' || c == '+' {
		prev := lit[j-1]
		return (prev == 'e' || prev == 'E') && !strings.ContainsAny(lit[:j], "xX")
	}
	return false
}
