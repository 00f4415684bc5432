package mapview

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/paulmach/orb"
)

const (
	calloutPad      = 8
	calloutTextSize = 13
)

// callout is the single anchored popup. At most one is visible; it is
// dismissed and re-shown rather than updated in place.
type callout struct {
	title, detail string
	anchor        orb.Point
	visible       bool

	bg     *canvas.Rectangle
	titled *canvas.Text
	detld  *canvas.Text
}

func (c *callout) build() {
	c.bg = canvas.NewRectangle(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xf0})
	c.bg.CornerRadius = 6
	c.bg.StrokeColor = color.NRGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	c.bg.StrokeWidth = 1
	c.titled = canvas.NewText("", color.Black)
	c.titled.TextSize = calloutTextSize
	c.titled.TextStyle = fyne.TextStyle{Bold: true}
	c.detld = canvas.NewText("", color.Black)
	c.detld.TextSize = calloutTextSize
	c.hide()
}

func (c *callout) objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{c.bg, c.titled, c.detld}
}

func (c *callout) hide() {
	for _, o := range c.objects() {
		o.Hide()
	}
}

func (c *callout) show() {
	for _, o := range c.objects() {
		o.Show()
	}
}

// layout places the callout box just above its anchor point.
func (c *callout) layout(anchorAt fyne.Position) {
	titleSize := fyne.MeasureText(c.title, calloutTextSize, c.titled.TextStyle)
	detailSize := fyne.MeasureText(c.detail, calloutTextSize, c.detld.TextStyle)

	width := max(titleSize.Width, detailSize.Width) + 2*calloutPad
	height := titleSize.Height + detailSize.Height + 2*calloutPad

	origin := fyne.NewPos(anchorAt.X-width/2, anchorAt.Y-height-markerRadius)
	c.bg.Move(origin)
	c.bg.Resize(fyne.NewSize(width, height))
	c.titled.Move(fyne.NewPos(origin.X+calloutPad, origin.Y+calloutPad))
	c.titled.Resize(titleSize)
	c.detld.Move(fyne.NewPos(origin.X+calloutPad, origin.Y+calloutPad+titleSize.Height))
	c.detld.Resize(detailSize)
}

// CalloutVisible reports whether the callout is currently shown.
func (mv *MapView) CalloutVisible() bool {
	return mv.callout.visible
}

// CalloutTitle returns the title of the visible callout, "" otherwise.
func (mv *MapView) CalloutTitle() string {
	if !mv.callout.visible {
		return ""
	}
	return mv.callout.title
}

// CalloutDetail returns the detail text of the visible callout, ""
// otherwise.
func (mv *MapView) CalloutDetail() string {
	if !mv.callout.visible {
		return ""
	}
	return mv.callout.detail
}

// ShowCalloutAt shows the callout anchored at the given map
// coordinate, instantly and with no animation. A visible callout is
// dismissed first.
func (mv *MapView) ShowCalloutAt(title, detail string, at orb.Point) {
	if mv.callout.visible {
		mv.DismissCallout()
	}
	mv.callout.title = title
	mv.callout.detail = detail
	mv.callout.anchor = at
	mv.callout.visible = true
	if mv.callout.bg != nil {
		mv.callout.titled.Text = title
		mv.callout.detld.Text = detail
		mv.callout.show()
	}
	mv.Refresh()
}

// DismissCallout hides the callout. Dismissing an already dismissed
// callout is a no-op.
func (mv *MapView) DismissCallout() {
	if !mv.callout.visible {
		return
	}
	mv.callout.visible = false
	if mv.callout.bg != nil {
		mv.callout.hide()
	}
	mv.Refresh()
}
