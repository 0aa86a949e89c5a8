package studypack

import (
	"fmt"
	"strings"
)

// Theme is the accent palette chosen by the user.
type Theme string

const (
	ThemeDefault  Theme = "default"
	ThemeEmerald  Theme = "emerald"
	ThemeViolet   Theme = "violet"
	ThemeRose     Theme = "rose"
	ThemeAmber    Theme = "amber"
	ThemeOriginal Theme = "original"
)

// Themes lists every theme in picker order.
var Themes = []Theme{ThemeDefault, ThemeEmerald, ThemeViolet, ThemeRose, ThemeAmber, ThemeOriginal}

// Font is the typeface preference.
type Font string

const (
	FontInter     Font = "Inter"
	FontPlayfair  Font = "Playfair Display"
	FontJetBrains Font = "JetBrains Mono"
	FontQuicksand Font = "Quicksand"
)

// Fonts lists every font in picker order.
var Fonts = []Font{FontInter, FontPlayfair, FontJetBrains, FontQuicksand}

// Shape is the corner style preference.
type Shape string

const (
	ShapeSharp   Shape = "sharp"
	ShapeDefault Shape = "default"
	ShapeRounded Shape = "rounded"
)

// Shapes lists every shape in picker order.
var Shapes = []Shape{ShapeSharp, ShapeDefault, ShapeRounded}

// ThemeMode is the global light/dark flag. It is not partitioned by identity.
type ThemeMode string

const (
	ThemeModeLight ThemeMode = "light"
	ThemeModeDark  ThemeMode = "dark"
)

// DefaultName is used when the login form leaves the name blank.
const DefaultName = "Student"

// Identity is the cosmetic login record. Email is the storage partition key.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Theme *Theme `json:"theme,omitempty"`
	Font  *Font  `json:"font,omitempty"`
	Shape *Shape `json:"shape,omitempty"`
}

// Preferences are the resolved visual settings.
type Preferences struct {
	Theme Theme
	Font  Font
	Shape Shape
}

// DefaultPreferences returns the settings used before any choice is made.
func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeDefault, Font: FontInter, Shape: ShapeDefault}
}

// HasPreferences reports whether the identity has completed the picker.
func (i Identity) HasPreferences() bool {
	return i.Theme != nil
}

// Preferences resolves the identity's settings over the defaults.
func (i Identity) Preferences() Preferences {
	p := DefaultPreferences()
	if i.Theme != nil {
		p.Theme = *i.Theme
	}
	if i.Font != nil {
		p.Font = *i.Font
	}
	if i.Shape != nil {
		p.Shape = *i.Shape
	}
	return p
}

// WithPreferences returns a copy of i carrying p.
func (i Identity) WithPreferences(p Preferences) Identity {
	theme, font, shape := p.Theme, p.Font, p.Shape
	i.Theme, i.Font, i.Shape = &theme, &font, &shape
	return i
}

// NewIdentity builds an identity from raw login form values.
func NewIdentity(name, email string) (Identity, error) {
	key := PartitionKey(email)
	if key == "" {
		return Identity{}, fmt.Errorf("email is required")
	}
	if !strings.Contains(key, "@") {
		return Identity{}, fmt.Errorf("invalid email %q", email)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	return Identity{Name: name, Email: key}, nil
}

// PartitionKey normalizes an email into the key used by the stores.
func PartitionKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	for _, t := range Themes {
		if string(t) == strings.ToLower(s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// ParseFont validates a font name, case-insensitively.
func ParseFont(s string) (Font, error) {
	for _, f := range Fonts {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown font %q", s)
}

// ParseShape validates a shape name.
func ParseShape(s string) (Shape, error) {
	for _, sh := range Shapes {
		if string(sh) == strings.ToLower(s) {
			return sh, nil
		}
	}
	return "", fmt.Errorf("unknown shape %q", s)
}

// ParseThemeMode validates a mode name.
func ParseThemeMode(s string) (ThemeMode, error) {
	switch ThemeMode(strings.ToLower(s)) {
	case ThemeModeLight:
		return ThemeModeLight, nil
	case ThemeModeDark:
		return ThemeModeDark, nil
	}
	return "", fmt.Errorf("unknown theme mode %q", s)
}
