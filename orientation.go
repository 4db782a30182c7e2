package vscroll

// Orientation is the axis along which a viewport scrolls.
type Orientation uint8

const (
	OrientationVertical Orientation = iota
	OrientationHorizontal
)

func (o Orientation) String() string {
	if o == OrientationHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// ParseOrientation converts "horizontal" or "vertical" into an Orientation.
func ParseOrientation(s string) (Orientation, bool) {
	switch s {
	case "horizontal":
		return OrientationHorizontal, true
	case "vertical", "":
		return OrientationVertical, true
	}
	return OrientationVertical, false
}

// Direction is the layout direction used for horizontal viewports.
type Direction uint8

const (
	DirectionLTR Direction = iota
	DirectionRTL
)

// Edge names one side of the scroll container or of the rendered content.
type Edge uint8

const (
	EdgeStart Edge = iota
	EdgeEnd
	EdgeTop
	EdgeBottom
	EdgeLeft
	EdgeRight
)

// ContentEdge selects what a rendered content offset is relative to.
type ContentEdge uint8

const (
	// ToStart positions the start of the rendered content at the offset.
	ToStart ContentEdge = iota
	// ToEnd positions the end of the rendered content at the offset.
	ToEnd
)

// ScrollBehavior controls how a scroll request is carried out.
type ScrollBehavior uint8

const (
	ScrollAuto ScrollBehavior = iota
	ScrollInstant
	// ScrollSmooth moves towards the target over several frames.
	ScrollSmooth
)
