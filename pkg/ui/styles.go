package ui

import (
	_ "embed"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ColorDef is an adaptive color in styles.yaml
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is a style in styles.yaml
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Underline    bool   `yaml:"underline,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	Background   string `yaml:"background,omitempty"`
	MarginBottom int    `yaml:"marginBottom,omitempty"`
	PaddingLeft  int    `yaml:"paddingLeft,omitempty"`
}

// StylesConfig is the decoded styles.yaml
type StylesConfig struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

//go:embed styles.yaml
var embeddedStyles []byte

// Styles maps semantic names (Header, Package, Error...) to lipgloss styles.
// Unknown names resolve to the unstyled style.
type Styles map[string]lipgloss.Style

// Get returns the named style.
func (s Styles) Get(name string) lipgloss.Style {
	if style, ok := s[name]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// Render applies the named style to text.
func (s Styles) Render(name, text string) string {
	return s.Get(name).Render(text)
}

// DefaultStyles returns the embedded styles. A broken embedded file yields
// unstyled output rather than a failure.
func DefaultStyles() Styles {
	styles, err := LoadStyles(embeddedStyles)
	if err != nil {
		return Styles{}
	}
	return styles
}

// LoadStyles builds the style registry from YAML data.
func LoadStyles(data []byte) (Styles, error) {
	var cfg StylesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse styles")
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	styles := make(Styles, len(cfg.Styles))
	for name, def := range cfg.Styles {
		style := lipgloss.NewStyle().
			Bold(def.Bold).
			Italic(def.Italic).
			Underline(def.Underline)
		if c, ok := colors[def.Foreground]; ok {
			style = style.Foreground(c)
		} else if def.Foreground != "" {
			return nil, errors.Newf(errors.ErrConfigValid, "style %s uses unknown color %q", name, def.Foreground)
		}
		if c, ok := colors[def.Background]; ok {
			style = style.Background(c)
		} else if def.Background != "" {
			return nil, errors.Newf(errors.ErrConfigValid, "style %s uses unknown color %q", name, def.Background)
		}
		if def.MarginBottom > 0 {
			style = style.MarginBottom(def.MarginBottom)
		}
		if def.PaddingLeft > 0 {
			style = style.PaddingLeft(def.PaddingLeft)
		}
		styles[name] = style
	}
	return styles, nil
}
