package main

import (
	"math"

	"github.com/samber/lo"

	"letterloop/internal/puzzle"
	"letterloop/internal/types"
)

// Wheel geometry in SVG viewBox units.
const (
	wheelCenterX = 50.0
	wheelCenterY = 50.0
	wheelRadius  = 30.0
)

// tilePoint places board position i on the wheel, an eighth of a turn
// apart, starting at the bottom. Coordinates are rounded to 0.01.
func tilePoint(i int) (x, y float64) {
	angle := math.Pi / 4 * float64(i)
	x = wheelCenterX + math.Sin(angle)*wheelRadius
	y = wheelCenterY + math.Cos(angle)*wheelRadius
	return math.Round(x*100) / 100, math.Round(y*100) / 100
}

// buildBoardView projects a snapshot onto the wire/template shape.
func buildBoardView(snap puzzle.Snapshot) types.BoardView {
	view := types.BoardView{
		Tiles: lo.Map(snap.Tiles[:], func(t puzzle.TileState, _ int) types.TileView {
			x, y := tilePoint(t.Position)
			return types.TileView{
				Position: t.Position,
				Char:     t.Char,
				Revealed: t.Revealed,
				Selected: t.Selected(),
				Order:    t.Order,
				Hinted:   t.Hinted,
				X:        x,
				Y:        y,
			}
		}),
		Input:          snap.Input,
		Level:          snap.Level,
		MaxLevel:       snap.MaxLevel,
		ExpectedLength: snap.ExpectedLength,
		HintsRemaining: snap.HintsRemaining,
		Won:            snap.Won,
	}
	if snap.Message.Kind != puzzle.MessageNone {
		view.Message = &types.MessageView{
			Kind:  snap.Message.Kind.String(),
			Text:  snap.Message.Text,
			Level: snap.Message.Level,
		}
	}
	return view
}
