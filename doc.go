// Package inputforge synthesizes keyboard and mouse input events at the
// operating-system level.
//
// # Basic usage
//
//	in, err := inputforge.New(inputforge.DefaultSettings())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer in.Close()
//
//	in.Text("Hello, World!")
//	in.Key(inputforge.NamedKey(inputforge.Return), inputforge.Click)
//	in.MoveMouse(10, 5, inputforge.Rel)
//	in.Button(inputforge.Left, inputforge.Click)
//
// # Backends
//
// On Linux, New probes Wayland virtual-keyboard/pointer, then X11 XTEST,
// then the Freedesktop RemoteDesktop portal, and commits to the first one
// that connects (Settings.Backend forces a specific one instead). The core
// of the Linux backend is a dynamic XKB keymap subsystem: when a key has
// no keycode bound in the compositor's current keymap, inputforge parses,
// extends, and re-serializes that keymap on the fly, in the internal/xkb
// and internal/keymap packages.
//
// macOS and Windows are out of scope for this module; Settings carries
// their fields for API parity but constructing an Input always selects a
// Linux backend.
//
// # Concurrent use
//
// An *Input is not safe for concurrent use by multiple goroutines. Shared
// provides a process-wide singleton behind a mutex for applications that
// need to drive input from more than one goroutine without constructing
// more than one backend connection.
package inputforge
