package xkb

import "strings"

// Print renders a Keymap back into bytes the compositor's XKB library
// accepts, in the fixed section order spec.md §4.2 requires regardless of
// the order sections appeared in on input: xkb_keycodes, xkb_types,
// xkb_compatibility, xkb_symbols, xkb_geometry.
func (k Keymap) Print() string {
	var b strings.Builder
	b.WriteString("xkb_keymap {\n")
	b.WriteString(k.Keycodes.print())
	if k.Types != nil {
		b.WriteString("xkb_types")
		b.WriteString(*k.Types)
		b.WriteString("\n};\n\n")
	}
	if k.Compatibility != nil {
		b.WriteString("xkb_compatibility")
		b.WriteString(*k.Compatibility)
		b.WriteString("\n};\n\n")
	}
	b.WriteString(k.Symbols.print())
	if k.Geometry != nil {
		b.WriteString("xkb_geometry")
		b.WriteString(*k.Geometry)
		b.WriteString("\n};\n\n")
	}
	b.WriteString("};\n")
	return b.String()
}

func (k Keycodes) print() string {
	var b strings.Builder
	b.WriteString("xkb_keycodes \"")
	b.WriteString(k.Name)
	b.WriteString("\" {\n")
	b.WriteString("    minimum = ")
	writeUint(&b, k.Minimum)
	b.WriteString(";\n")
	b.WriteString("    maximum = ")
	writeUint(&b, k.Maximum)
	b.WriteString(";\n")

	maxLen := k.maxIdentifierLen()
	for _, e := range k.Entries {
		for i := len(e.Identifier); i < maxLen; i++ {
			b.WriteByte(' ')
		}
		b.WriteString("    <")
		b.WriteString(e.Identifier)
		b.WriteString("> = ")
		writeUint(&b, e.Code)
		b.WriteString(";\n")
	}
	for _, ind := range k.Indicators {
		b.WriteString("    indicator ")
		writeUint(&b, ind.Index)
		b.WriteString(" = \"")
		b.WriteString(ind.Name)
		b.WriteString("\";\n")
	}
	for _, al := range k.Aliases {
		b.WriteString("    alias ")
		for i := len(al.Alias); i < 4; i++ {
			b.WriteByte(' ')
		}
		b.WriteString("<")
		b.WriteString(al.Alias)
		b.WriteString("> = ")
		for i := len(al.Name); i < 4; i++ {
			b.WriteByte(' ')
		}
		b.WriteString("<")
		b.WriteString(al.Name)
		b.WriteString(">;\n")
	}
	b.WriteString("};\n")
	return b.String()
}

func (s Symbols) print() string {
	var b strings.Builder
	b.WriteString("xkb_symbols \"")
	b.WriteString(s.Name)
	b.WriteString("\" {\n\n")
	for idx, group := range s.Groups {
		b.WriteString("    name[group")
		writeUint(&b, uint32(idx+1))
		b.WriteString("]=\"")
		b.WriteString(group)
		b.WriteString("\";\n")
	}
	b.WriteString("\n")

	maxLen := s.maxIdentifierLen()
	for _, key := range s.Keys {
		b.WriteString("    key ")
		for i := len(key.Identifier); i < maxLen; i++ {
			b.WriteByte(' ')
		}
		b.WriteString("<")
		b.WriteString(key.Identifier)
		b.WriteString("> ")
		b.WriteString(key.Body)
		b.WriteString(";\n")
	}
	for _, m := range s.ModifierMap {
		b.WriteString("    modifier_map ")
		b.WriteString(m)
		b.WriteString(";\n")
	}
	b.WriteString("};\n")
	return b.String()
}

func writeUint(b *strings.Builder, v uint32) {
	b.WriteString(uitoa(v))
}

func uitoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
