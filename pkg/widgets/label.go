package widgets

import (
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/starlayout/pkg/layout"
)

// DefaultFace is the face used by labels that do not set one.
var DefaultFace font.Face = basicfont.Face7x13

// TextLine is a single measured line of a label.
type TextLine struct {
	Text  string
	Width float64
}

// Label is a leaf whose size is the measured extent of its text. Lines are
// separated by '\n' and never wrap.
type Label struct {
	layout.BoxBase
	Text string
	Face font.Face

	lines        []TextLine
	lineHeight   float64
	measured     string
	measuredFace font.Face
}

// NewLabel creates a label using DefaultFace.
func NewLabel(text string) *Label {
	return &Label{Text: text}
}

// Measure implements layout.Box.
func (l *Label) Measure(available layout.Size) layout.Size {
	l.layoutText()
	width := 0.0
	for _, line := range l.lines {
		width = math.Max(width, line.Width)
	}
	height := l.lineHeight * float64(len(l.lines))
	return l.RecordMeasure(available, layout.Size{Width: width, Height: height})
}

// Arrange implements layout.Box.
func (l *Label) Arrange(final layout.Rect) { l.RecordArrange(final) }

// Lines returns the lines measured by the last Measure.
func (l *Label) Lines() []TextLine {
	return l.lines
}

func (l *Label) face() font.Face {
	if l.Face != nil {
		return l.Face
	}
	return DefaultFace
}

func (l *Label) layoutText() {
	face := l.face()
	if l.lines != nil && l.measured == l.Text && l.measuredFace == face {
		return
	}
	l.lineHeight = fixedToFloat(face.Metrics().Height)
	l.lines = l.lines[:0]
	for _, text := range strings.Split(l.Text, "\n") {
		l.lines = append(l.lines, TextLine{
			Text:  text,
			Width: fixedToFloat(font.MeasureString(face, text)),
		})
	}
	l.measured = l.Text
	l.measuredFace = face
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
