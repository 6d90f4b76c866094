package engine

// PlayerColor is one palette entry.
type PlayerColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// PlayerColors is the fixed palette. A color is held by at most one
// non-observer at a time; observers hold none.
var PlayerColors = []PlayerColor{
	{Name: "Red", Hex: "#ff0000"},
	{Name: "Orange", Hex: "#ff6600"},
	{Name: "Yellow", Hex: "#ffcc00"},
	{Name: "Lime", Hex: "#99ff33"},
	{Name: "Green", Hex: "#2a7e09"},
	{Name: "Teal", Hex: "#009999"},
	{Name: "Cyan", Hex: "#00ccff"},
	{Name: "Indigo", Hex: "#0000ff"},
	{Name: "Purple", Hex: "#6600cc"},
	{Name: "Magenta", Hex: "#cc0099"},
	{Name: "Pink", Hex: "#ff66ff"},
	{Name: "Brown", Hex: "#663300"},
}

// FreeColor returns the first palette hex not held by a non-observer.
func FreeColor(roster []Player) (string, bool) {
	taken := make(map[string]bool, len(roster))
	for _, p := range roster {
		if !p.IsObserver && p.Color != "" {
			taken[p.Color] = true
		}
	}
	for _, c := range PlayerColors {
		if !taken[c.Hex] {
			return c.Hex, true
		}
	}
	return "", false
}

// ColorAvailable reports whether hex is a palette color not held by any
// non-observer other than excludeID.
func ColorAvailable(hex string, roster []Player, excludeID string) bool {
	inPalette := false
	for _, c := range PlayerColors {
		if c.Hex == hex {
			inPalette = true
			break
		}
	}
	if !inPalette {
		return false
	}
	for _, p := range roster {
		if p.ID == excludeID || p.IsObserver {
			continue
		}
		if p.Color == hex {
			return false
		}
	}
	return true
}
