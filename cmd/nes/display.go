package main

import (
	"image"
	"image/color"
	"log"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/pixelgl"
	"github.com/faiface/pixel/text"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

// Display owns the pixelgl window and the RGBA framebuffer the emulation
// goroutine paints into through Ppu.OnPixelClocked. It is deliberately kept
// out of the nes package: the core has no windowing dependency.
type Display struct {
	gameRgba *image.RGBA

	window     *pixelgl.Window
	gameMatrix pixel.Matrix

	debugAtlas   *text.Atlas
	debugRegText *text.Text

	isDebug bool
}

const (
	nesResW    float64 = 256
	nesResH    float64 = 240
	scale      float64 = 3
	gameW      float64 = nesResW * scale
	gameH      float64 = nesResH * scale
	screenPosX float64 = 600
	screenPosY float64 = 400

	debugResW float64 = 220
)

func NewDisplay(isDebug bool) *Display {
	rect := image.Rect(0, 0, int(nesResW), int(nesResH))
	gameRgba := image.NewRGBA(rect)

	screenW := gameW
	if isDebug {
		screenW += debugResW
	}

	config := pixelgl.WindowConfig{
		Title:    "NES",
		Bounds:   pixel.R(0, 0, screenW, gameH),
		Position: pixel.V(screenPosX, screenPosY),
		VSync:    true,
	}
	window, err := pixelgl.NewWindow(config)
	if err != nil {
		log.Fatal("nes: unable to create pixelgl window: ", err)
	}

	pic := pixel.PictureDataFromImage(gameRgba)
	gameMatrix := pixel.IM.Moved(pic.Bounds().Center().Scaled(scale))
	gameMatrix = gameMatrix.Scaled(pic.Bounds().Center().Scaled(scale), scale)

	debugAtlas := text.NewAtlas(basicfont.Face7x13, text.ASCII)
	debugRegText := text.New(pixel.V(gameW+8, gameH-40), debugAtlas)

	return &Display{
		gameRgba:     gameRgba,
		window:       window,
		gameMatrix:   gameMatrix,
		debugAtlas:   debugAtlas,
		debugRegText: debugRegText,
		isDebug:      isDebug,
	}
}

func (d *Display) DrawPixel(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= int(nesResW) || y >= int(nesResH) {
		return
	}
	d.gameRgba.SetRGBA(x, y, c)
}

func (d *Display) WriteRegDebugString(s string) {
	d.debugRegText.Clear()
	d.debugRegText.WriteString(s)
}

func (d *Display) UpdateScreen() {
	d.window.Clear(colornames.Black)

	sprite := getSpriteFromImage(d.gameRgba)
	sprite.Draw(d.window, d.gameMatrix)

	if d.isDebug {
		d.debugRegText.Draw(d.window, pixel.IM)
	}

	d.window.Update()
}

func getSpriteFromImage(img *image.RGBA) *pixel.Sprite {
	pic := pixel.PictureDataFromImage(img)
	return pixel.NewSprite(pic, pic.Bounds())
}
