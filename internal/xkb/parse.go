package xkb

import (
	"strconv"
	"strings"
)

// ParseError is the single error condition the parser reports, per
// spec.md §4.2: "keymap failed to parse". The Pos field is kept for
// diagnostics only; callers should not branch on it.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string { return "keymap failed to parse: " + e.Msg }

// Parse consumes an XKB text keymap and returns its typed model. Trailing
// NUL bytes are not stripped here (keymap.Manager strips them before
// calling Parse). Any non-empty remainder after a successful parse,
// including trailing whitespace or NULs, is not an error (per spec.md §4.2
// the parser only warns), and Parse returns it via the second return value
// for the caller to log.
func Parse(input string) (Keymap, string, error) {
	p := &parser{s: input}
	p.skipWS()
	if !p.consume("xkb_keymap") {
		return Keymap{}, "", &ParseError{p.i, "missing xkb_keymap header"}
	}
	p.skipWS()
	if !p.consumeByte('{') {
		return Keymap{}, "", &ParseError{p.i, "missing '{' after xkb_keymap"}
	}

	var km Keymap
	haveKeycodes, haveSymbols := false, false

	for {
		p.skipWS()
		switch {
		case p.peek("xkb_keycodes"):
			kc, err := p.parseKeycodes()
			if err != nil {
				return Keymap{}, "", err
			}
			km.Keycodes = kc
			haveKeycodes = true
		case p.peek("xkb_types"):
			body, err := p.parseOpaqueSection("xkb_types")
			if err != nil {
				return Keymap{}, "", err
			}
			km.Types = &body
		case p.peek("xkb_compatibility"):
			body, err := p.parseOpaqueSection("xkb_compatibility")
			if err != nil {
				return Keymap{}, "", err
			}
			km.Compatibility = &body
		case p.peek("xkb_symbols"):
			sym, err := p.parseSymbols()
			if err != nil {
				return Keymap{}, "", err
			}
			km.Symbols = sym
			haveSymbols = true
		case p.peek("xkb_geometry"):
			body, err := p.parseOpaqueSection("xkb_geometry")
			if err != nil {
				return Keymap{}, "", err
			}
			km.Geometry = &body
		default:
			goto done
		}
	}
done:
	p.skipWS()
	if !p.consumeByte('}') || !p.consumeByte(';') {
		return Keymap{}, "", &ParseError{p.i, "missing closing '};' for xkb_keymap"}
	}
	if !haveKeycodes {
		return Keymap{}, "", &ParseError{p.i, "missing xkb_keycodes section"}
	}
	if !haveSymbols {
		return Keymap{}, "", &ParseError{p.i, "missing xkb_symbols section"}
	}

	remaining := p.s[p.i:]
	return km, remaining, nil
}

type parser struct {
	s string
	i int
}

func (p *parser) rest() string { return p.s[p.i:] }

func (p *parser) skipWS() {
	for p.i < len(p.s) {
		c := p.s[p.i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.i++
			continue
		}
		break
	}
}

func (p *parser) peek(tag string) bool {
	return strings.HasPrefix(p.rest(), tag)
}

func (p *parser) consume(tag string) bool {
	if p.peek(tag) {
		p.i += len(tag)
		return true
	}
	return false
}

func (p *parser) consumeByte(b byte) bool {
	if p.i < len(p.s) && p.s[p.i] == b {
		p.i++
		return true
	}
	return false
}

// parseName consumes a "STRING" token.
func (p *parser) parseName() (string, bool) {
	p.skipWS()
	if !p.consumeByte('"') {
		return "", false
	}
	end := strings.IndexByte(p.rest(), '"')
	if end < 0 {
		return "", false
	}
	name := p.rest()[:end]
	p.i += end + 1
	return name, true
}

// parseIdentifier consumes an <IDENTIFIER> token.
func (p *parser) parseIdentifier() (string, bool) {
	p.skipWS()
	if !p.consumeByte('<') {
		return "", false
	}
	end := strings.IndexByte(p.rest(), '>')
	if end < 0 {
		return "", false
	}
	id := p.rest()[:end]
	p.i += end + 1
	return id, true
}

func (p *parser) parseUint() (uint32, bool) {
	p.skipWS()
	start := p.i
	for p.i < len(p.s) && p.s[p.i] >= '0' && p.s[p.i] <= '9' {
		p.i++
	}
	if p.i == start {
		return 0, false
	}
	n, err := strconv.ParseUint(p.s[start:p.i], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// parseOpaqueSection consumes `tag ... \n};\n` and returns everything
// between the tag's opening "{" and the literal terminator "\n};\n",
// matching take_until("\n};\n") in original_source.
func (p *parser) parseOpaqueSection(tag string) (string, error) {
	p.consume(tag)
	end := strings.Index(p.rest(), "\n};\n")
	if end < 0 {
		return "", &ParseError{p.i, "unterminated " + tag + " section"}
	}
	body := p.rest()[:end]
	p.i += end + len("\n};\n")
	return body, nil
}

func (p *parser) parseKeycodes() (Keycodes, error) {
	p.consume("xkb_keycodes")
	name, ok := p.parseName()
	if !ok {
		return Keycodes{}, &ParseError{p.i, "xkb_keycodes missing name"}
	}
	p.skipWS()
	if !p.consumeByte('{') {
		return Keycodes{}, &ParseError{p.i, "xkb_keycodes missing '{'"}
	}

	kc := Keycodes{Name: name}
	haveMin, haveMax := false, false

	for {
		p.skipWS()
		switch {
		case p.peek("minimum"):
			p.consume("minimum")
			p.skipWS()
			if !p.consumeByte('=') {
				return Keycodes{}, &ParseError{p.i, "minimum missing '='"}
			}
			v, ok := p.parseUint()
			if !ok {
				return Keycodes{}, &ParseError{p.i, "minimum not a number"}
			}
			p.skipWS()
			if !p.consumeByte(';') {
				return Keycodes{}, &ParseError{p.i, "minimum missing ';'"}
			}
			kc.Minimum = v
			haveMin = true
		case p.peek("maximum"):
			p.consume("maximum")
			p.skipWS()
			if !p.consumeByte('=') {
				return Keycodes{}, &ParseError{p.i, "maximum missing '='"}
			}
			v, ok := p.parseUint()
			if !ok {
				return Keycodes{}, &ParseError{p.i, "maximum not a number"}
			}
			p.skipWS()
			if !p.consumeByte(';') {
				return Keycodes{}, &ParseError{p.i, "maximum missing ';'"}
			}
			kc.Maximum = v
			haveMax = true
		case p.peek("indicator"):
			ind, err := p.parseIndicator()
			if err != nil {
				return Keycodes{}, err
			}
			kc.Indicators = append(kc.Indicators, ind)
		case p.peek("alias"):
			al, err := p.parseAlias()
			if err != nil {
				return Keycodes{}, err
			}
			kc.Aliases = append(kc.Aliases, al)
		case p.peek("<"):
			entry, err := p.parseKeycodeEntry()
			if err != nil {
				return Keycodes{}, err
			}
			kc.Entries = append(kc.Entries, entry)
		case p.peek("};"):
			p.consume("};")
			if !haveMin || !haveMax {
				return Keycodes{}, &ParseError{p.i, "xkb_keycodes missing minimum/maximum"}
			}
			return kc, nil
		default:
			return Keycodes{}, &ParseError{p.i, "unexpected token in xkb_keycodes"}
		}
	}
}

func (p *parser) parseKeycodeEntry() (KeycodeEntry, error) {
	id, ok := p.parseIdentifier()
	if !ok {
		return KeycodeEntry{}, &ParseError{p.i, "expected identifier"}
	}
	p.skipWS()
	if !p.consumeByte('=') {
		return KeycodeEntry{}, &ParseError{p.i, "keycode entry missing '='"}
	}
	v, ok := p.parseUint()
	if !ok {
		return KeycodeEntry{}, &ParseError{p.i, "keycode entry value not a number"}
	}
	p.skipWS()
	if !p.consumeByte(';') {
		return KeycodeEntry{}, &ParseError{p.i, "keycode entry missing ';'"}
	}
	return KeycodeEntry{Identifier: id, Code: v}, nil
}

func (p *parser) parseIndicator() (IndicatorEntry, error) {
	p.consume("indicator")
	idx, ok := p.parseUint()
	if !ok {
		return IndicatorEntry{}, &ParseError{p.i, "indicator index not a number"}
	}
	p.skipWS()
	if !p.consumeByte('=') {
		return IndicatorEntry{}, &ParseError{p.i, "indicator missing '='"}
	}
	name, ok := p.parseName()
	if !ok {
		return IndicatorEntry{}, &ParseError{p.i, "indicator missing name"}
	}
	p.skipWS()
	if !p.consumeByte(';') {
		return IndicatorEntry{}, &ParseError{p.i, "indicator missing ';'"}
	}
	return IndicatorEntry{Index: idx, Name: name}, nil
}

func (p *parser) parseAlias() (AliasEntry, error) {
	p.consume("alias")
	a, ok := p.parseIdentifier()
	if !ok {
		return AliasEntry{}, &ParseError{p.i, "alias missing identifier"}
	}
	p.skipWS()
	if !p.consumeByte('=') {
		return AliasEntry{}, &ParseError{p.i, "alias missing '='"}
	}
	n, ok := p.parseIdentifier()
	if !ok {
		return AliasEntry{}, &ParseError{p.i, "alias missing target identifier"}
	}
	p.skipWS()
	if !p.consumeByte(';') {
		return AliasEntry{}, &ParseError{p.i, "alias missing ';'"}
	}
	return AliasEntry{Alias: a, Name: n}, nil
}

func (p *parser) parseSymbols() (Symbols, error) {
	p.consume("xkb_symbols")
	name, ok := p.parseName()
	if !ok {
		return Symbols{}, &ParseError{p.i, "xkb_symbols missing name"}
	}
	p.skipWS()
	if !p.consumeByte('{') {
		return Symbols{}, &ParseError{p.i, "xkb_symbols missing '{'"}
	}

	sym := Symbols{Name: name}
	for {
		p.skipWS()
		switch {
		case p.peek("name"):
			g, err := p.parseGroup()
			if err != nil {
				return Symbols{}, err
			}
			sym.Groups = append(sym.Groups, g)
		case p.peek("key "), p.peek("key\t"):
			k, err := p.parseSymbolKey()
			if err != nil {
				return Symbols{}, err
			}
			sym.Keys = append(sym.Keys, k)
		case p.peek("modifier_map"):
			m, err := p.parseModifierMap()
			if err != nil {
				return Symbols{}, err
			}
			sym.ModifierMap = append(sym.ModifierMap, m)
		case p.peek("};"):
			p.consume("};")
			return sym, nil
		default:
			return Symbols{}, &ParseError{p.i, "unexpected token in xkb_symbols"}
		}
	}
}

func (p *parser) parseGroup() (string, error) {
	p.consume("name")
	// skip up to the opening quote, e.g. "[group1]="
	idx := strings.IndexByte(p.rest(), '"')
	if idx < 0 {
		return "", &ParseError{p.i, "group missing name"}
	}
	p.i += idx
	name, ok := p.parseName()
	if !ok {
		return "", &ParseError{p.i, "group name not parseable"}
	}
	p.skipWS()
	if !p.consumeByte(';') {
		return "", &ParseError{p.i, "group missing ';'"}
	}
	return name, nil
}

func (p *parser) parseSymbolKey() (SymbolKey, error) {
	p.consume("key")
	id, ok := p.parseIdentifier()
	if !ok {
		return SymbolKey{}, &ParseError{p.i, "key missing identifier"}
	}
	end := strings.IndexByte(p.rest(), ';')
	if end < 0 {
		return SymbolKey{}, &ParseError{p.i, "key missing terminating ';'"}
	}
	body := strings.TrimSpace(p.rest()[:end])
	p.i += end + 1
	return SymbolKey{Identifier: id, Body: body}, nil
}

func (p *parser) parseModifierMap() (string, error) {
	p.consume("modifier_map")
	end := strings.IndexByte(p.rest(), ';')
	if end < 0 {
		return "", &ParseError{p.i, "modifier_map missing terminating ';'"}
	}
	body := strings.TrimSpace(p.rest()[:end])
	p.i += end + 1
	return body, nil
}
