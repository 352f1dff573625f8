// Package render draws Pong states into raw RGB frames
package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/samuelfneumann/pongdqn/environment/pong"
)

// Colours of the empty field and of the paddles and ball
var (
	Background color.Color = color.Black
	Foreground color.Color = color.White
)

// Renderer owns a drawing surface the size of the game window and
// draws both paddles and the ball onto it. Each call to Render returns
// a new image, so frames handed out earlier are never overwritten.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	geom pong.Geometry
	dc   *gg.Context
}

// New returns a new Renderer for the given field
func New(geom pong.Geometry) *Renderer {
	dc := gg.NewContext(int(geom.WindowWidth), int(geom.WindowHeight))
	return &Renderer{geom: geom, dc: dc}
}

// Render draws state and returns the resulting frame. The state is
// only read.
func (r *Renderer) Render(state pong.State) image.Image {
	r.dc.SetColor(Background)
	r.dc.Clear()

	r.dc.ClearPath()
	r.paddle(pong.Agent, state.PaddleY(pong.Agent))
	r.paddle(pong.Opponent, state.PaddleY(pong.Opponent))
	r.dc.DrawRectangle(state.BallX, state.BallY, r.geom.BallWidth,
		r.geom.BallHeight)
	r.dc.SetColor(Foreground)
	r.dc.Fill()

	surface := r.dc.Image()
	frame := image.NewRGBA(surface.Bounds())
	draw.Copy(frame, image.Point{}, surface, surface.Bounds(), draw.Src, nil)

	return frame
}

// paddle adds the rectangle of the paddle on side to the current path
func (r *Renderer) paddle(side pong.Side, y float64) {
	r.dc.DrawRectangle(r.geom.PaddleX(side), y, r.geom.PaddleWidth,
		r.geom.PaddleHeight)
}
