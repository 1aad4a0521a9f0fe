package environment

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known keys seeded from the host.
const (
	KeyAccessibilityEnabled = "accessibilityEnabled"
	KeyColorMode            = "colorMode"
	KeyFontScale            = "fontScale"
	KeyFontWeightScale      = "fontWeightScale"
	KeyLayoutDirection      = "layoutDirection"
	KeyLanguageCode         = "languageCode"
)

// Keys lists the well-known keys in a fixed order.
var Keys = []string{
	KeyAccessibilityEnabled,
	KeyColorMode,
	KeyFontScale,
	KeyFontWeightScale,
	KeyLayoutDirection,
	KeyLanguageCode,
}

type ColorMode int

const (
	ColorModeLight ColorMode = iota
	ColorModeDark
)

func (m ColorMode) String() string {
	switch m {
	case ColorModeLight:
		return "light"
	case ColorModeDark:
		return "dark"
	default:
		return fmt.Sprintf("ColorMode(%d)", int(m))
	}
}

func (m *ColorMode) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(value.Value) {
	case "light", "0":
		*m = ColorModeLight
	case "dark", "1":
		*m = ColorModeDark
	default:
		return fmt.Errorf("line %d: unknown color mode %q", value.Line, value.Value)
	}
	return nil
}

type LayoutDirection int

const (
	LayoutDirectionLTR LayoutDirection = iota
	LayoutDirectionRTL
	LayoutDirectionAuto
)

func (d LayoutDirection) String() string {
	switch d {
	case LayoutDirectionLTR:
		return "ltr"
	case LayoutDirectionRTL:
		return "rtl"
	case LayoutDirectionAuto:
		return "auto"
	default:
		return fmt.Sprintf("LayoutDirection(%d)", int(d))
	}
}

func (d *LayoutDirection) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(value.Value) {
	case "ltr", "0":
		*d = LayoutDirectionLTR
	case "rtl", "1":
		*d = LayoutDirectionRTL
	case "auto", "2":
		*d = LayoutDirectionAuto
	default:
		return fmt.Errorf("line %d: unknown layout direction %q", value.Line, value.Value)
	}
	return nil
}

// Settings is a snapshot of every host value.
type Settings struct {
	AccessibilityEnabled bool            `yaml:"accessibilityEnabled"`
	ColorMode            ColorMode       `yaml:"colorMode"`
	FontScale            float64         `yaml:"fontScale"`
	FontWeightScale      float64         `yaml:"fontWeightScale"`
	LayoutDirection      LayoutDirection `yaml:"layoutDirection"`
	LanguageCode         string          `yaml:"languageCode"`
}

func DefaultSettings() Settings {
	return Settings{
		ColorMode:       ColorModeLight,
		FontScale:       1,
		FontWeightScale: 1,
		LayoutDirection: LayoutDirectionLTR,
		LanguageCode:    "en",
	}
}

// Value returns the setting stored under a well-known key.
func (s Settings) Value(key string) (any, bool) {
	switch key {
	case KeyAccessibilityEnabled:
		return s.AccessibilityEnabled, true
	case KeyColorMode:
		return s.ColorMode, true
	case KeyFontScale:
		return s.FontScale, true
	case KeyFontWeightScale:
		return s.FontWeightScale, true
	case KeyLayoutDirection:
		return s.LayoutDirection, true
	case KeyLanguageCode:
		return s.LanguageCode, true
	}
	return nil, false
}

// Apply stores v under key. v must have the key's exact type.
func (s *Settings) Apply(key string, v any) error {
	switch key {
	case KeyAccessibilityEnabled:
		if b, ok := v.(bool); ok {
			s.AccessibilityEnabled = b
			return nil
		}
	case KeyColorMode:
		if m, ok := v.(ColorMode); ok {
			s.ColorMode = m
			return nil
		}
	case KeyFontScale:
		if f, ok := v.(float64); ok {
			s.FontScale = f
			return nil
		}
	case KeyFontWeightScale:
		if f, ok := v.(float64); ok {
			s.FontWeightScale = f
			return nil
		}
	case KeyLayoutDirection:
		if d, ok := v.(LayoutDirection); ok {
			s.LayoutDirection = d
			return nil
		}
	case KeyLanguageCode:
		if c, ok := v.(string); ok {
			s.LanguageCode = c
			return nil
		}
	default:
		return fmt.Errorf("unknown environment key %q", key)
	}
	return fmt.Errorf("environment key %q: unexpected value %T", key, v)
}

// Diff returns the keys whose values differ between s and next, in Keys order.
func (s Settings) Diff(next Settings) []string {
	var changed []string
	for _, key := range Keys {
		a, _ := s.Value(key)
		b, _ := next.Value(key)
		if a != b {
			changed = append(changed, key)
		}
	}
	return changed
}
