package model

import "time"

// Project color palette.
const (
	ColorGray   = "gray"
	ColorRed    = "red"
	ColorOrange = "orange"
	ColorAmber  = "amber"
	ColorGreen  = "green"
	ColorTeal   = "teal"
	ColorBlue   = "blue"
	ColorIndigo = "indigo"
	ColorPurple = "purple"
	ColorPink   = "pink"
)

// Palette is the fixed set of allowed project colors.
var Palette = []string{
	ColorGray, ColorRed, ColorOrange, ColorAmber, ColorGreen,
	ColorTeal, ColorBlue, ColorIndigo, ColorPurple, ColorPink,
}

// ValidColor reports whether c belongs to the palette.
func ValidColor(c string) bool {
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}

// NormalizeColor returns c if it belongs to the palette, gray otherwise.
func NormalizeColor(c string) string {
	if ValidColor(c) {
		return c
	}
	return ColorGray
}

// Project is a grouping container for related tasks. Exactly one project is
// the default; it receives tasks whose project was deleted or never assigned.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectInput holds the caller-provided fields for creating a project.
type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// ProjectPatch is a partial update: nil fields are left unchanged.
type ProjectPatch struct {
	Name        *string
	Description *string
	Color       *string
}
