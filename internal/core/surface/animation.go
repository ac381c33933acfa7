package surface

import "fmt"

// Animation is the style a surface uses for a row or section change.
type Animation int

const (
	AnimationAutomatic Animation = iota
	AnimationFade
	AnimationRight
	AnimationLeft
	AnimationTop
	AnimationBottom
	AnimationMiddle
	AnimationNone
)

var animationNames = map[Animation]string{
	AnimationAutomatic: "automatic",
	AnimationFade:      "fade",
	AnimationRight:     "right",
	AnimationLeft:      "left",
	AnimationTop:       "top",
	AnimationBottom:    "bottom",
	AnimationMiddle:    "middle",
	AnimationNone:      "none",
}

func (a Animation) String() string {
	if s, ok := animationNames[a]; ok {
		return s
	}
	return fmt.Sprintf("animation(%d)", int(a))
}

// ParseAnimation converts a config name into an Animation.
func ParseAnimation(s string) (Animation, error) {
	for a, name := range animationNames {
		if name == s {
			return a, nil
		}
	}
	return AnimationAutomatic, fmt.Errorf("unknown animation %q", s)
}

// AnimationNames lists every animation name in declaration order.
func AnimationNames() []string {
	out := make([]string, 0, len(animationNames))
	for a := AnimationAutomatic; a <= AnimationNone; a++ {
		out = append(out, animationNames[a])
	}
	return out
}

// ScrollPosition says where a row should land when the surface scrolls to it.
type ScrollPosition int

const (
	ScrollNone ScrollPosition = iota
	ScrollTop
	ScrollMiddle
	ScrollBottom
)

var scrollNames = map[ScrollPosition]string{
	ScrollNone:   "none",
	ScrollTop:    "top",
	ScrollMiddle: "middle",
	ScrollBottom: "bottom",
}

func (p ScrollPosition) String() string {
	if s, ok := scrollNames[p]; ok {
		return s
	}
	return fmt.Sprintf("scroll(%d)", int(p))
}

// ParseScrollPosition converts a config name into a ScrollPosition.
func ParseScrollPosition(s string) (ScrollPosition, error) {
	for p, name := range scrollNames {
		if name == s {
			return p, nil
		}
	}
	return ScrollNone, fmt.Errorf("unknown scroll position %q", s)
}

// ScrollPositionNames lists every scroll position name in declaration order.
func ScrollPositionNames() []string {
	out := make([]string, 0, len(scrollNames))
	for p := ScrollNone; p <= ScrollBottom; p++ {
		out = append(out, scrollNames[p])
	}
	return out
}
