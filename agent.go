package inputforge

import "github.com/charmbracelet/log"

// Token is a serializable description of one Input operation, ported in
// full from original_source/src/agent.rs's Token enum. The key-sequence
// mini-language that would parse strings like "{+CTRL}a{-CTRL}" into
// Tokens is out of scope; Token itself, and Execute below, are not.
type Token struct {
	kind tokenKind

	text      string
	key       Key
	keycode   uint16
	direction Direction
	button    Button
	x, y      int32
	coord     Coordinate
	length    int32
	axis      Axis
}

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenKey
	tokenRaw
	tokenButton
	tokenMoveMouse
	tokenScroll
	tokenLocation
	tokenMainDisplay
)

// TextToken builds a Token that calls Input.Text.
func TextToken(text string) Token { return Token{kind: tokenText, text: text} }

// KeyToken builds a Token that calls Input.Key.
func KeyToken(key Key, direction Direction) Token {
	return Token{kind: tokenKey, key: key, direction: direction}
}

// RawToken builds a Token that calls Input.Raw.
func RawToken(keycode uint16, direction Direction) Token {
	return Token{kind: tokenRaw, keycode: keycode, direction: direction}
}

// ButtonToken builds a Token that calls Input.Button.
func ButtonToken(button Button, direction Direction) Token {
	return Token{kind: tokenButton, button: button, direction: direction}
}

// MoveMouseToken builds a Token that calls Input.MoveMouse.
func MoveMouseToken(x, y int32, coordinate Coordinate) Token {
	return Token{kind: tokenMoveMouse, x: x, y: y, coord: coordinate}
}

// ScrollToken builds a Token that calls Input.Scroll.
func ScrollToken(length int32, axis Axis) Token {
	return Token{kind: tokenScroll, length: length, axis: axis}
}

// LocationToken builds a Token that calls Input.Location and logs a
// warning if the result doesn't match (expectedX, expectedY); it never
// fails just because of a mismatch.
func LocationToken(expectedX, expectedY int32) Token {
	return Token{kind: tokenLocation, x: expectedX, y: expectedY}
}

// MainDisplayToken builds a Token that calls Input.MainDisplay and logs a
// warning if the result doesn't match (expectedWidth, expectedHeight).
func MainDisplayToken(expectedWidth, expectedHeight int32) Token {
	return Token{kind: tokenMainDisplay, x: expectedWidth, y: expectedHeight}
}

// Execute runs the action a Token describes. Location and MainDisplay
// tokens compare the observed value against the token's expected value and
// log a warning on mismatch rather than returning an error, matching
// original_source/src/agent.rs's Agent::execute default method.
func (in *Input) Execute(t Token) error {
	switch t.kind {
	case tokenText:
		return in.Text(t.text)
	case tokenKey:
		return in.Key(t.key, t.direction)
	case tokenRaw:
		return in.Raw(t.keycode, t.direction)
	case tokenButton:
		return in.Button(t.button, t.direction)
	case tokenMoveMouse:
		return in.MoveMouse(t.x, t.y, t.coord)
	case tokenScroll:
		return in.Scroll(t.length, t.axis)
	case tokenLocation:
		x, y, err := in.Location()
		if err != nil {
			log.Error("could not get the location of the mouse", "err", err)
			return err
		}
		if x != t.x || y != t.y {
			log.Warn("the mouse is not at the expected location", "expected_x", t.x, "expected_y", t.y, "actual_x", x, "actual_y", y)
		}
		return nil
	case tokenMainDisplay:
		w, h, err := in.MainDisplay()
		if err != nil {
			log.Error("could not get the size of the main display", "err", err)
			return err
		}
		if w != t.x || h != t.y {
			log.Warn("the size of the main display is not what was expected", "expected_width", t.x, "expected_height", t.y, "actual_width", w, "actual_height", h)
		}
		return nil
	default:
		return &InputError{Kind: InvalidInput, Op: "Execute", Msg: "unknown token kind"}
	}
}
