package ui

import (
	"sync"

	"github.com/eiannone/keyboard"
)

// Singleton buffered channel and one reader goroutine: opening the keyboard
// more than once is not supported by the underlying library, and a single
// channel makes DrainKeys non-blocking across CLI phases.
var (
	keyCh     chan rune
	startOnce sync.Once
)

// StartKeyEvents returns a channel emitting single-key runes read without
// Enter. The first call starts the background reader; if opening the keyboard
// fails, an inert buffered channel is returned.
func StartKeyEvents() chan rune {
	startOnce.Do(func() {
		keyCh = make(chan rune, 64)
		if err := keyboard.Open(); err != nil {
			return
		}
		go func() {
			defer keyboard.Close()
			for {
				char, key, err := keyboard.GetKey()
				if err != nil {
					close(keyCh)
					return
				}
				switch {
				case key == 0:
					select {
					case keyCh <- char:
					default:
					}
				case key == keyboard.KeyEsc:
					select {
					case keyCh <- 27:
					default:
					}
				}
			}
		}()
	})
	if keyCh == nil {
		keyCh = make(chan rune, 64)
	}
	return keyCh
}

// DrainKeys consumes any immediately available keys so a key pressed in a
// previous phase does not trigger an action in the next one.
func DrainKeys() {
	ch := StartKeyEvents()
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
