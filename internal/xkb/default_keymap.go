package xkb

// DefaultKeymap is the compiled-in baseline keymap used when no keymap has
// yet been delivered by the compositor (spec.md §4.7, first row: a parse
// failure at manager construction falls back to this string) and by
// Keymap2's own default() constructor.
//
// Keycodes follow the kernel evdev scancode + 8 convention XKB uses on
// both X11 and Wayland. The set covers a plain US QWERTY layout: this is
// deliberately a small, self-consistent keymap rather than a full
// xkeyboard-config dump — enough keys exist for the allocator to find free
// slots immediately above it, and every key it does define round-trips
// through Parse/Print identically.
const DefaultKeymap = `xkb_keymap {
xkb_keycodes "(unnamed)" {
    minimum = 8;
    maximum = 255;
    <ESC> = 9;
    <AE01> = 10;
    <AE02> = 11;
    <AE03> = 12;
    <AE04> = 13;
    <AE05> = 14;
    <AE06> = 15;
    <AE07> = 16;
    <AE08> = 17;
    <AE09> = 18;
    <AE10> = 19;
    <TAB> = 23;
    <AD01> = 24;
    <AD02> = 25;
    <AD03> = 26;
    <AD04> = 27;
    <AD05> = 28;
    <AD06> = 29;
    <AD07> = 30;
    <AD08> = 31;
    <AD09> = 32;
    <AD10> = 33;
    <RTRN> = 36;
    <LCTL> = 37;
    <AC01> = 38;
    <AC02> = 39;
    <AC03> = 40;
    <AC04> = 41;
    <AC05> = 42;
    <AC06> = 43;
    <AC07> = 44;
    <AC08> = 45;
    <AC09> = 46;
    <LFSH> = 50;
    <AB01> = 52;
    <AB02> = 53;
    <AB03> = 54;
    <AB04> = 55;
    <AB05> = 56;
    <AB06> = 57;
    <RTSH> = 62;
    <LALT> = 64;
    <SPCE> = 65;
    <UP> = 111;
    <LEFT> = 113;
    <RGHT> = 114;
    <DOWN> = 116;
    <LWIN> = 133;
    <RWIN> = 134;
};
xkb_types "(unnamed)" {
	include "complete"
};
xkb_compatibility "(unnamed)" {
	include "complete"
};
xkb_symbols "(unnamed)" {

    name[group1]="English (US)";

    key <ESC>   { [ Escape ] };
    key <AE01>  { [ 1, exclam ] };
    key <AE02>  { [ 2, at ] };
    key <AE03>  { [ 3, numbersign ] };
    key <AE04>  { [ 4, dollar ] };
    key <AE05>  { [ 5, percent ] };
    key <AE06>  { [ 6, asciicircum ] };
    key <AE07>  { [ 7, ampersand ] };
    key <AE08>  { [ 8, asterisk ] };
    key <AE09>  { [ 9, parenleft ] };
    key <AE10>  { [ 0, parenright ] };
    key <TAB>   { [ Tab ] };
    key <AD01>  { [ q, Q ] };
    key <AD02>  { [ w, W ] };
    key <AD03>  { [ e, E ] };
    key <AD04>  { [ r, R ] };
    key <AD05>  { [ t, T ] };
    key <AD06>  { [ y, Y ] };
    key <AD07>  { [ u, U ] };
    key <AD08>  { [ i, I ] };
    key <AD09>  { [ o, O ] };
    key <AD10>  { [ p, P ] };
    key <RTRN>  { [ Return ] };
    key <LCTL>  { [ Control_L ] };
    key <AC01>  { [ a, A ] };
    key <AC02>  { [ s, S ] };
    key <AC03>  { [ d, D ] };
    key <AC04>  { [ f, F ] };
    key <AC05>  { [ g, G ] };
    key <AC06>  { [ h, H ] };
    key <AC07>  { [ j, J ] };
    key <AC08>  { [ k, K ] };
    key <AC09>  { [ l, L ] };
    key <LFSH>  { [ Shift_L ] };
    key <AB01>  { [ z, Z ] };
    key <AB02>  { [ x, X ] };
    key <AB03>  { [ c, C ] };
    key <AB04>  { [ v, V ] };
    key <AB05>  { [ b, B ] };
    key <AB06>  { [ n, N ] };
    key <RTSH>  { [ Shift_R ] };
    key <LALT>  { [ Alt_L ] };
    key <SPCE>  { [ space ] };
    key <UP>    { [ Up ] };
    key <LEFT>  { [ Left ] };
    key <RGHT>  { [ Right ] };
    key <DOWN>  { [ Down ] };
    key <LWIN>  { [ Super_L ] };
    key <RWIN>  { [ Super_R ] };
    modifier_map Shift { <LFSH>, <RTSH> };
    modifier_map Control { <LCTL> };
    modifier_map Mod1 { <LALT> };
    modifier_map Mod4 { <LWIN>, <RWIN> };
};
xkb_geometry "(unnamed)" {
	include "pc(pc105)"
};
};
`
