package keymap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// anonFile is a file descriptor backing an anonymous, already-unlinked
// region of memory: a compositor that receives its fd over the Wayland
// wire protocol can mmap it but never see a path for it. Backing each
// keymap handoff this way (rather than a named temp file) is what
// zwp_virtual_keyboard_v1.keymap and the xdg-desktop-portal RemoteDesktop
// keymap argument both expect.
type anonFile struct {
	*os.File
	size uint32
}

// newAnonFile writes content into a freshly created anonymous file and
// rewinds it, ready to be handed to a compositor as (format, fd, size).
// It prefers memfd_create, falling back to an unlinked regular temp file
// on kernels or containers where memfd_create is unavailable.
func newAnonFile(name, content string) (*anonFile, error) {
	fd, err := unix.MemfdCreate(name, 0)
	if err == nil {
		f := os.NewFile(uintptr(fd), name)
		if err := f.Truncate(int64(len(content))); err != nil {
			f.Close()
			return nil, fmt.Errorf("truncate memfd: %w", err)
		}
		if _, err := f.WriteAt([]byte(content), 0); err != nil {
			f.Close()
			return nil, fmt.Errorf("write memfd: %w", err)
		}
		return &anonFile{File: f, size: uint32(len(content))}, nil
	}

	f, err := os.CreateTemp("", "inputforge-keymap-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	// Unlink immediately: the fd stays valid but no path resolves to it,
	// matching memfd's no-path property closely enough for our purposes.
	path := f.Name()
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("seek temp file: %w", err)
	}
	os.Remove(path)
	return &anonFile{File: f, size: uint32(len(content))}, nil
}
