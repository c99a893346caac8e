package wm

// InferMonitors derives a two-monitor layout from the primary display size
// and the virtual screen, the bounding box of every connected display. The
// primary monitor always sits at the origin, so whatever extent the virtual
// screen has beyond it belongs to the secondary, which lies left of the
// primary when the virtual screen starts at a negative x.
func InferMonitors(primary, virtual Rect) []Monitor {
	monitors := []Monitor{{Name: "primary", Rect: Rect{Width: primary.Width, Height: primary.Height}, Primary: true}}

	width := virtual.Width - primary.Width
	if width <= 0 {
		return monitors
	}

	x := virtual.X + primary.Width
	if virtual.X < 0 {
		x = virtual.X
	}

	return append(monitors, Monitor{
		Name: "secondary",
		Rect: Rect{
			X:      x,
			Y:      virtual.Y,
			Width:  width,
			Height: virtual.Height,
		},
	})
}
