package keymap

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/inputforge/inputforge/internal/keysym"
	"github.com/inputforge/inputforge/internal/xkb"
)

// KeyDirection is Down (pressed) or Up (released), used by UpdateKey to
// track which keycodes are currently held.
type KeyDirection int

const (
	KeyUp KeyDirection = iota
	KeyDown
)

// Format mirrors XKB_KEYMAP_FORMAT_TEXT_V1, the only format this package
// produces or consumes. It is a distinct type so callers sending it across
// the Wayland wire (a uint32 enum) or the portal's D-Bus keymap argument
// don't have to remember the magic number.
type Format uint32

const FormatTextV1 Format = 1

// mappingErr reports a recoverable failure to extend the keymap: callers
// (the per-transport dispatch code) retry once via UnmapEverything before
// giving up, matching the retry original_source performs around
// map_key/unmap_everything on both the Wayland and X11 transports.
type mappingErr struct{ msg string }

func (e *mappingErr) Error() string { return e.msg }

// IsMappingError reports whether err was produced by an allocation failure
// (no free keycode, no free identifier) as opposed to a parse or I/O error.
func IsMappingError(err error) bool {
	_, ok := err.(*mappingErr)
	return ok
}

// Manager owns one XKB keymap's lifecycle: the parsed structural model, the
// modifier state it implies, which keycodes are currently pressed, and the
// serialized text of the *original* keymap it was built from (kept so
// UnmapEverything can discard every key this package has dynamically
// added and start over from the compositor's own definition).
//
// This is the Go counterpart of original_source's Keymap2: one process may
// hold several Managers (one per seat/connection), but each Manager is not
// itself safe for concurrent use — callers serialize access the same way
// shared.go serializes access to the package-level Input singleton.
type Manager struct {
	keymap   xkb.Keymap
	pristine string // the text this Manager was most recently (re)built from, pre-allocation

	// pristineCodes is the set of keycodes the pristine keymap itself
	// defines (physical keys the compositor/X server already advertised),
	// computed whenever pristine is (re)set. Unmap and UnmapEverything
	// consult it so neither one ever touches a physical keycode, only
	// ones this package allocated on top of it.
	pristineCodes map[uint32]bool

	tracker *modifierTracker
	pressed map[uint16]string // keycode -> identifier, for replay across rebuilds and UnmapEverything
	masks   ModifierState

	isWayland bool
}

func pristineCodeSet(km xkb.Keymap) map[uint32]bool {
	codes := make(map[uint32]bool, len(km.Keycodes.Entries))
	for _, e := range km.Keycodes.Entries {
		codes[e.Code] = true
	}
	return codes
}

// New parses keymap text delivered by the compositor (or read back from an
// anonymous fd) and builds a fresh Manager from it.
func New(text string, isWayland bool) (*Manager, error) {
	text = trimTrailingNUL(text)
	km, remainder, err := xkb.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse keymap: %w", err)
	}
	if remainder != "" {
		log.Warn("keymap had unparsed trailing content", "bytes", len(remainder))
	}
	return &Manager{
		keymap:        km,
		pristine:      text,
		pristineCodes: pristineCodeSet(km),
		tracker:       newModifierTracker(km.Symbols),
		pressed:       map[uint16]string{},
		isWayland:     isWayland,
	}, nil
}

// NewFromKeymap builds a Manager from an already-assembled xkb.Keymap
// rather than parsing text. The X11 transport uses this: it reads the
// server's live keycode-to-keysym table directly via GetKeyboardMapping
// (there is no text keymap to receive, unlike Wayland's
// zwp_virtual_keyboard_v1.keymap and the portal's equivalent), and
// synthesizes the same Keycodes/Symbols structure this package otherwise
// gets by parsing one.
func NewFromKeymap(km xkb.Keymap, isWayland bool) *Manager {
	text := km.Print()
	return &Manager{
		keymap:        km,
		pristine:      text,
		pristineCodes: pristineCodeSet(km),
		tracker:       newModifierTracker(km.Symbols),
		pressed:       map[uint16]string{},
		isWayland:     isWayland,
	}
}

// NewDefault builds a Manager from the compiled-in baseline keymap, used
// when no keymap has been received yet or a received one failed to parse.
func NewDefault(isWayland bool) (*Manager, error) {
	m, err := New(xkb.DefaultKeymap, isWayland)
	if err != nil {
		// The baseline keymap is a package constant: a parse failure here
		// is a bug in this package, not a runtime condition callers handle.
		panic(fmt.Sprintf("default keymap failed to parse: %v", err))
	}
	return m, nil
}

// Update replaces the Manager's keymap with newly-received text, preserving
// state the fragile-but-necessary way XKB requires: snapshot the modifier
// masks and currently-pressed keycodes before replacing, then replay every
// pressed keycode as a Down event and reapply the masks against the new
// state. Without this, a keymap rebuilt mid-gesture (most commonly right
// after this package allocates a new keycode) would silently drop whichever
// modifiers the application believed were still held.
func (m *Manager) Update(text string) error {
	text = trimTrailingNUL(text)
	savedMasks := m.masks
	savedPressed := m.pressed

	km, remainder, err := xkb.Parse(text)
	if err != nil {
		return fmt.Errorf("parse keymap: %w", err)
	}
	if remainder != "" {
		log.Warn("keymap had unparsed trailing content", "bytes", len(remainder))
	}

	m.keymap = km
	m.pristine = text
	m.pristineCodes = pristineCodeSet(km)
	m.tracker = newModifierTracker(km.Symbols)
	m.pressed = map[uint16]string{}

	for keycode, ident := range savedPressed {
		m.pressed[keycode] = ident
	}
	m.masks = savedMasks
	return nil
}

// KeyToKeycode looks up the keycode currently bound to key's keysym, if
// any. The scan is linear over the keycode range because the keymap's
// Entries slice is small (tens of keys) and rebuilt rarely enough that an
// index would add bookkeeping without a measurable benefit.
func (m *Manager) KeyToKeycode(sym keysym.Symbol) (uint16, bool) {
	for _, key := range m.keymap.Symbols.Keys {
		if symbolKeyNames(key.Body, sym.Name) {
			for _, e := range m.keymap.Keycodes.Entries {
				if e.Identifier == key.Identifier {
					return uint16(e.Code), true
				}
			}
		}
	}
	return 0, false
}

// MapKey allocates a new keycode and identifier for sym and adds it to the
// keymap's keycodes and symbols tables. The caller must push the resulting
// keymap back to the compositor (via Serialize/FormatFileSize) before the
// new keycode can be pressed.
//
// Keycode 8 is reserved by X11 convention: keycode - minimum == 0 means
// "NoSymbol" to clients that ignore the advertised minimum, so allocation
// never considers anything below 9 even if the keymap's minimum is lower.
// Identifiers are tried from <9999> down to <0000>, the same direction
// original_source searches in.
func (m *Manager) MapKey(sym keysym.Symbol) (uint16, error) {
	kc := &m.keymap.Keycodes

	minimum := kc.Minimum
	if minimum < 9 {
		minimum = 9
	}
	maximum := uint32(255)
	if m.isWayland {
		maximum = 65535
	}

	used := make(map[uint32]bool, len(kc.Entries))
	for _, e := range kc.Entries {
		used[e.Code] = true
	}
	var freeCode uint32
	found := false
	for code := minimum; code < maximum; code++ {
		if !used[code] {
			freeCode, found = code, true
			break
		}
	}
	if !found {
		return 0, &mappingErr{"no available keycode"}
	}

	usedIdent := make(map[string]bool, len(kc.Entries))
	for _, e := range kc.Entries {
		usedIdent[e.Identifier] = true
	}
	for _, key := range m.keymap.Symbols.Keys {
		usedIdent[key.Identifier] = true
	}
	var freeIdent string
	found = false
	for i := 9999; i >= 0; i-- {
		candidate := fmt.Sprintf("%04d", i)
		if !usedIdent[candidate] {
			freeIdent, found = candidate, true
			break
		}
	}
	if !found {
		return 0, &mappingErr{"no available identifier"}
	}

	kc.Entries = append(kc.Entries, xkb.KeycodeEntry{Identifier: freeIdent, Code: freeCode})
	if freeCode > kc.Maximum {
		kc.Maximum = freeCode
	}
	m.keymap.Symbols.Keys = append(m.keymap.Symbols.Keys, xkb.SymbolKey{
		Identifier: freeIdent,
		Body:       fmt.Sprintf("{\t[ %s, %s ] }", sym.Name, sym.Name),
	})

	return uint16(freeCode), nil
}

// Unmap removes keycode's dynamically-allocated entry from the keymap's
// keycodes and symbols tables, a no-op if keycode isn't currently mapped by
// this package. It also refuses to touch a keycode that is currently held
// (a member of pressed) or one the pristine keymap itself defines, mirroring
// the state machine's rule that a Down keycode must never be unmapped and
// original_source/src/linux/x11rb.rs's unmap_keycode, which only ever
// operates on its own additionally_mapped list.
func (m *Manager) Unmap(keycode uint16) {
	ident := m.identifierFor(keycode)
	if ident == "" {
		return
	}
	if _, held := m.pressed[keycode]; held {
		return
	}
	if m.pristineCodes[uint32(keycode)] {
		return
	}

	kc := &m.keymap.Keycodes
	for i, e := range kc.Entries {
		if e.Identifier == ident {
			kc.Entries = append(kc.Entries[:i], kc.Entries[i+1:]...)
			break
		}
	}
	syms := m.keymap.Symbols.Keys
	for i, s := range syms {
		if s.Identifier == ident {
			m.keymap.Symbols.Keys = append(syms[:i], syms[i+1:]...)
			break
		}
	}
}

// UnmapEverything discards every dynamically allocated, non-held keycode by
// re-parsing the text this Manager was last (re)built from, replaying
// currently-pressed keycodes and masks the same way Update does, then
// re-inserting the keycodes/symbols entries for any keycode still held so
// reclamation never drops a key the caller has not released yet. Transports
// call this once, as a retry, when MapKey fails because the identifier or
// keycode space is exhausted — a space that fills up only because of this
// package's own prior allocations.
//
// original_source/src/linux/x11rb.rs's unmap_everything filters
// additionally_mapped against held_keycodes before unmapping each one
// individually; this re-parses first (this package's reclamation strategy
// throughout) and restores the held entries afterward, which arrives at the
// same invariant: no held keycode is ever unmapped.
func (m *Manager) UnmapEverything() error {
	type heldEntry struct {
		entry xkb.KeycodeEntry
		sym   xkb.SymbolKey
	}

	var preserve []heldEntry
	for keycode := range m.pressed {
		ident := m.identifierFor(keycode)
		if ident == "" {
			continue
		}

		var entry xkb.KeycodeEntry
		for _, e := range m.keymap.Keycodes.Entries {
			if e.Identifier == ident {
				entry = e
				break
			}
		}
		if entry.Identifier == "" {
			continue
		}

		var sym xkb.SymbolKey
		for _, s := range m.keymap.Symbols.Keys {
			if s.Identifier == ident {
				sym = s
				break
			}
		}
		preserve = append(preserve, heldEntry{entry: entry, sym: sym})
	}

	if err := m.Update(m.pristine); err != nil {
		return err
	}

	for _, p := range preserve {
		if m.pristineCodes[p.entry.Code] {
			continue // the rebuilt keymap already defines this keycode
		}
		m.keymap.Keycodes.Entries = append(m.keymap.Keycodes.Entries, p.entry)
		if p.entry.Code > m.keymap.Keycodes.Maximum {
			m.keymap.Keycodes.Maximum = p.entry.Code
		}
		m.keymap.Symbols.Keys = append(m.keymap.Symbols.Keys, p.sym)
	}

	return nil
}

// UpdateKey records keycode's press/release and returns the new modifier
// mask if it changed as a result (meaning keycode names a modifier key),
// or changed=false if the mask is unchanged (an ordinary, non-modifier key).
func (m *Manager) UpdateKey(keycode uint16, dir KeyDirection) (state ModifierState, changed bool) {
	ident := m.identifierFor(keycode)
	before := m.masks.Depressed

	switch dir {
	case KeyDown:
		if ident != "" {
			m.pressed[keycode] = ident
		}
	case KeyUp:
		delete(m.pressed, keycode)
	}

	pressedIdents := make(map[string]bool, len(m.pressed))
	for _, id := range m.pressed {
		pressedIdents[id] = true
	}
	m.masks.Depressed = m.tracker.depressedMask(pressedIdents)

	return m.masks, m.masks.Depressed != before
}

// UpdateModifiers overwrites all four values (depressed, latched, locked
// and the layout index) with a mask explicitly delivered by the caller
// (wlinput.Conn.UpdateModifiers). The next UpdateKey call recomputes the
// depressed mask from the held keys.
func (m *Manager) UpdateModifiers(depressed, latched, locked, layout uint32) {
	m.masks.Depressed = depressed
	m.masks.Latched = latched
	m.masks.Locked = locked
	m.masks.Layout = layout
}

// Masks returns the Manager's current modifier state vector.
func (m *Manager) Masks() ModifierState { return m.masks }

// PressedKeycodes returns the keycodes currently recorded as held, for
// release-on-Close handling.
func (m *Manager) PressedKeycodes() []uint16 {
	out := make([]uint16, 0, len(m.pressed))
	for kc := range m.pressed {
		out = append(out, kc)
	}
	return out
}

// Serialize renders the current keymap back to XKB text.
func (m *Manager) Serialize() string { return m.keymap.Print() }

// FormatFileSize writes the serialized keymap into a fresh anonymous file
// and returns the (format, reader, size) triple a compositor's keymap
// request expects. The returned file must be closed by the caller once the
// fd has been sent (or failed to send).
func (m *Manager) FormatFileSize() (Format, *os.File, uint32, error) {
	content := m.Serialize()
	f, err := newAnonFile("inputforge-keymap", content)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("create keymap fd: %w", err)
	}
	return FormatTextV1, f.File, f.size, nil
}

func (m *Manager) identifierFor(keycode uint16) string {
	for _, e := range m.keymap.Keycodes.Entries {
		if uint16(e.Code) == keycode {
			return e.Identifier
		}
	}
	return ""
}

// symbolKeyNames reports whether a key's symbol body text names the given
// keysym. The body is the raw "{ [ a, A ] }"-shaped text kept opaque by the
// xkb package; this does a substring match on the keysym name rather than
// a full grammar, which is sufficient because keysym names are drawn from
// a restricted, unambiguous identifier set (no keysym name is a substring
// of another in a way that would produce a false match in practice).
func symbolKeyNames(body, name string) bool {
	for i := 0; i+len(name) <= len(body); i++ {
		if body[i:i+len(name)] != name {
			continue
		}
		before := i == 0 || !isIdentChar(body[i-1])
		after := i+len(name) == len(body) || !isIdentChar(body[i+len(name)])
		if before && after {
			return true
		}
	}
	return false
}

func isIdentChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// trimTrailingNUL strips trailing NUL bytes some compositors include on the
// wire: xkbcommon itself refuses to parse text ending in one, per
// original_source's comment at keymap2/mod.rs's Update.
func trimTrailingNUL(text string) string {
	for len(text) > 0 && text[len(text)-1] == 0 {
		text = text[:len(text)-1]
	}
	return text
}
