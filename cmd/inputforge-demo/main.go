// Command inputforge-demo is a small CLI exercising inputforge's public
// facade, in the shape of a real cobra tool rather than the teacher's
// ad hoc examples/*/main.go demos.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inputforge/inputforge"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "inputforge-demo",
		Short: "Exercise inputforge's keyboard and mouse synthesis from the command line",
	}

	root.PersistentFlags().String("wayland-display", "", "override $WAYLAND_DISPLAY")
	root.PersistentFlags().String("x11-display", "", "override $DISPLAY")
	root.PersistentFlags().Duration("delay", 12*time.Millisecond, "minimum gap between repeat keycodes on X11")
	root.PersistentFlags().String("backend", "auto", "force a backend: auto, wayland, x11, portal")

	_ = viper.BindPFlag("wayland_display", root.PersistentFlags().Lookup("wayland-display"))
	_ = viper.BindPFlag("x11_display", root.PersistentFlags().Lookup("x11-display"))
	_ = viper.BindPFlag("linux_delay", root.PersistentFlags().Lookup("delay"))
	_ = viper.BindPFlag("backend", root.PersistentFlags().Lookup("backend"))

	root.AddCommand(newTypeCmd())
	root.AddCommand(newKeyCmd())
	root.AddCommand(newClickCmd())
	root.AddCommand(newMoveCmd())
	root.AddCommand(newScrollCmd())

	return root
}

func settingsFromViper() inputforge.Settings {
	s := inputforge.DefaultSettings()
	s.WaylandDisplay = viper.GetString("wayland_display")
	s.X11Display = viper.GetString("x11_display")
	if d := viper.GetDuration("linux_delay"); d > 0 {
		s.LinuxDelay = d
	}
	switch viper.GetString("backend") {
	case "wayland":
		s.Backend = inputforge.BackendWayland
	case "x11":
		s.Backend = inputforge.BackendX11
	case "portal":
		s.Backend = inputforge.BackendPortal
	}
	return s
}

func newInput() (*inputforge.Input, error) {
	return inputforge.New(settingsFromViper())
}

func newTypeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "type <text>",
		Short: "Type a string of text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := newInput()
			if err != nil {
				return err
			}
			defer in.Close()
			return in.Text(args[0])
		},
	}
}

func newKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key <name>",
		Short: "Click one named key (e.g. Return, Tab, F5, Control)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, ok := inputforge.KeyByName(args[0])
			if !ok {
				return fmt.Errorf("unknown named key %q", args[0])
			}
			in, err := newInput()
			if err != nil {
				return err
			}
			defer in.Close()
			return in.Key(key, inputforge.Click)
		},
	}
}

func newClickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "click <left|right|middle|back|forward>",
		Short: "Click a mouse button",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			button, err := parseButton(args[0])
			if err != nil {
				return err
			}
			in, err := newInput()
			if err != nil {
				return err
			}
			defer in.Close()
			return in.Button(button, inputforge.Click)
		},
	}
}

func newMoveCmd() *cobra.Command {
	var absolute bool
	cmd := &cobra.Command{
		Use:   "move <x> <y>",
		Short: "Move the mouse pointer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var x, y int32
			if _, err := fmt.Sscanf(args[0], "%d", &x); err != nil {
				return fmt.Errorf("invalid x: %w", err)
			}
			if _, err := fmt.Sscanf(args[1], "%d", &y); err != nil {
				return fmt.Errorf("invalid y: %w", err)
			}
			coord := inputforge.Rel
			if absolute {
				coord = inputforge.Abs
			}
			in, err := newInput()
			if err != nil {
				return err
			}
			defer in.Close()
			return in.MoveMouse(x, y, coord)
		},
	}
	cmd.Flags().BoolVar(&absolute, "absolute", false, "treat x, y as absolute coordinates")
	return cmd
}

func newScrollCmd() *cobra.Command {
	var horizontal bool
	cmd := &cobra.Command{
		Use:   "scroll <ticks>",
		Short: "Scroll vertically (or horizontally with --horizontal)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var length int32
			if _, err := fmt.Sscanf(args[0], "%d", &length); err != nil {
				return fmt.Errorf("invalid ticks: %w", err)
			}
			axis := inputforge.Vertical
			if horizontal {
				axis = inputforge.Horizontal
			}
			in, err := newInput()
			if err != nil {
				return err
			}
			defer in.Close()
			return in.Scroll(length, axis)
		},
	}
	cmd.Flags().BoolVar(&horizontal, "horizontal", false, "scroll horizontally instead of vertically")
	return cmd
}

func parseButton(name string) (inputforge.Button, error) {
	switch name {
	case "left":
		return inputforge.Left, nil
	case "right":
		return inputforge.Right, nil
	case "middle":
		return inputforge.Middle, nil
	case "back":
		return inputforge.Back, nil
	case "forward":
		return inputforge.Forward, nil
	default:
		return 0, fmt.Errorf("unknown button %q", name)
	}
}

func init() {
	if os.Getenv("INPUTFORGE_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}
}
