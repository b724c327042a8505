//go:build linux

package keycmd

import (
	"context"
	"strings"

	evdev "github.com/holoplot/go-evdev"

	"relay-cli/internal/logging"
)

var evdevInputs = map[evdev.EvCode]string{
	evdev.KEY_ESC:   InputEscape,
	evdev.KEY_UP:    InputUpArrow,
	evdev.KEY_DOWN:  InputDownArrow,
	evdev.KEY_LEFT:  InputLeftArrow,
	evdev.KEY_RIGHT: InputRightArrow,
}

// ReadDevice emits key commands for presses on the input device at path until
// ctx is done.
func ReadDevice(ctx context.Context, path string, em *Emitter) error {
	dev, err := evdev.Open(strings.TrimSpace(path))
	if err != nil {
		return err
	}
	name, _ := dev.Name()
	logging.For("keycmd").Info("reading key device", "path", path, "name", name)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = dev.Close()
	}()

	var mods Modifier
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if ev.Type != evdev.EV_KEY {
			continue
		}
		if m, ok := modifierFor(ev.Code); ok {
			if ev.Value == 0 {
				mods &^= m
			} else {
				mods |= m
			}
			continue
		}
		// 1 is a press; 0 release and 2 autorepeat are ignored.
		if ev.Value != 1 {
			continue
		}
		if input, ok := evdevInputs[ev.Code]; ok {
			em.Emit(KeyCommand, Event{Input: input, Modifiers: mods})
		}
	}
}

func modifierFor(code evdev.EvCode) (Modifier, bool) {
	switch code {
	case evdev.KEY_LEFTSHIFT, evdev.KEY_RIGHTSHIFT:
		return ModShift, true
	case evdev.KEY_LEFTCTRL, evdev.KEY_RIGHTCTRL:
		return ModCtrl, true
	case evdev.KEY_LEFTALT, evdev.KEY_RIGHTALT:
		return ModAlt, true
	}
	return 0, false
}
