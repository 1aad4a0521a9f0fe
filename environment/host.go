package environment

// Host is the platform side of the environment: synchronous getters for the
// well-known settings and a registration for change callbacks.
type Host interface {
	AccessibilityEnabled() bool
	ColorMode() ColorMode
	FontScale() float64
	FontWeightScale() float64
	LayoutDirection() LayoutDirection
	LanguageCode() string
	OnValueChanged(cb func(key string, value any))
}

// hostValue reads a well-known key from h.
func hostValue(h Host, key string) (any, bool) {
	switch key {
	case KeyAccessibilityEnabled:
		return h.AccessibilityEnabled(), true
	case KeyColorMode:
		return h.ColorMode(), true
	case KeyFontScale:
		return h.FontScale(), true
	case KeyFontWeightScale:
		return h.FontWeightScale(), true
	case KeyLayoutDirection:
		return h.LayoutDirection(), true
	case KeyLanguageCode:
		return h.LanguageCode(), true
	}
	return nil, false
}

// StaticHost is an in-memory Host. Update changes a setting and fires the
// registered callbacks synchronously.
type StaticHost struct {
	settings  Settings
	callbacks []func(key string, value any)
}

func NewStaticHost(settings Settings) *StaticHost {
	return &StaticHost{settings: settings}
}

func (h *StaticHost) AccessibilityEnabled() bool       { return h.settings.AccessibilityEnabled }
func (h *StaticHost) ColorMode() ColorMode             { return h.settings.ColorMode }
func (h *StaticHost) FontScale() float64               { return h.settings.FontScale }
func (h *StaticHost) FontWeightScale() float64         { return h.settings.FontWeightScale }
func (h *StaticHost) LayoutDirection() LayoutDirection { return h.settings.LayoutDirection }
func (h *StaticHost) LanguageCode() string             { return h.settings.LanguageCode }

func (h *StaticHost) OnValueChanged(cb func(key string, value any)) {
	h.callbacks = append(h.callbacks, cb)
}

func (h *StaticHost) Update(key string, value any) error {
	if err := h.settings.Apply(key, value); err != nil {
		return err
	}
	for _, cb := range h.callbacks {
		cb(key, value)
	}
	return nil
}
