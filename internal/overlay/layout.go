package overlay

import (
	"fmt"
	"math"
)

const TokenClass = "clockToken"

// Token is one derived slot position on the clock face: a pixel offset from
// the layout center plus the CSS class selecting the token sprite size.
type Token struct {
	Index   int
	OffsetX float64
	OffsetY float64
	Class   string
}

// Layout places c.Players tokens evenly around a circle of c.Radius pixels,
// starting at twelve o'clock and proceeding clockwise. A zero player count
// yields an empty slice.
func Layout(c Config) []Token {
	if c.Players <= 0 {
		return nil
	}
	class := fmt.Sprintf("%s %s-%d", TokenClass, TokenClass, c.TokenSize)
	tokens := make([]Token, c.Players)
	step := 2 * math.Pi / float64(c.Players)
	for i := range tokens {
		angle := float64(i)*step - math.Pi/2
		tokens[i] = Token{
			Index:   i,
			OffsetX: float64(c.Radius) * math.Cos(angle),
			OffsetY: float64(c.Radius) * math.Sin(angle),
			Class:   class,
		}
	}
	return tokens
}

// CenterStyle returns the CSS top/left values positioning the layout center,
// as percentages of the viewport.
func (c Config) CenterStyle() (top, left string) {
	return fmt.Sprintf("%d%%", c.Y), fmt.Sprintf("%d%%", c.X)
}
