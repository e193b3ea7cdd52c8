package main

import (
	"github.com/faiface/pixel/pixelgl"

	"github.com/n-ulricksen/nescore/nes"
)

// Keyboard bindings for the standard controller, adapted from the original
// per-bit buttonState slice to the shift-register Controller's single byte.
//
//	A      -> J
//	B      -> K
//	Select -> Right Shift
//	Start  -> Enter
//	Up     -> W
//	Down   -> S
//	Left   -> A
//	Right  -> D
var controllerKeys = map[byte]pixelgl.Button{
	nes.ButtonA:      pixelgl.KeyJ,
	nes.ButtonB:      pixelgl.KeyK,
	nes.ButtonSelect: pixelgl.KeyRightShift,
	nes.ButtonStart:  pixelgl.KeyEnter,
	nes.ButtonUp:     pixelgl.KeyW,
	nes.ButtonDown:   pixelgl.KeyS,
	nes.ButtonLeft:   pixelgl.KeyA,
	nes.ButtonRight:  pixelgl.KeyD,
}

func updateControllerInput(win *pixelgl.Window, ctrl *nes.Controller) {
	var state byte
	for button, key := range controllerKeys {
		if win.Pressed(key) {
			state |= button
		}
	}
	ctrl.SetButtonState(state)
}
