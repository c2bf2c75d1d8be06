package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-courseform/pkg/config"
)

var (
	// ErrThemeNotFound is returned when a selector has no manifest for a name.
	ErrThemeNotFound = errors.New("render: theme not found")
	// ErrUnsafeToken rejects token names or values that could leave the
	// inline style block.
	ErrUnsafeToken = errors.New("render: unsafe theme token")
)

// DefaultThemeManifest is the built-in "taller" theme with light and dark
// variants.
func DefaultThemeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "taller",
		Version: "1.0.0",
		Tokens: map[string]string{
			"font-family":   "system-ui, sans-serif",
			"surface":       "#ffffff",
			"text":          "#1f2933",
			"accent":        "#2563eb",
			"danger":        "#b91c1c",
			"border":        "#cbd2d9",
			"radius":        "6px",
			"field-spacing": "0.75rem",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				"stylesheet": "courseform.css",
			},
		},
		Variants: map[string]theme.Variant{
			"light": {},
			"dark": {
				Tokens: map[string]string{
					"surface": "#111827",
					"text":    "#f3f4f6",
					"accent":  "#60a5fa",
					"border":  "#374151",
				},
			},
		},
	}
}

// ThemeSelector resolves manifests registered in memory. It satisfies
// theme.ThemeSelector.
type ThemeSelector struct {
	mu        sync.RWMutex
	registry  interface{ Register(*theme.Manifest) error }
	manifests map[string]*theme.Manifest
}

var _ theme.ThemeSelector = (*ThemeSelector)(nil)

// NewThemeSelector registers manifests; DefaultThemeManifest is always
// available.
func NewThemeSelector(manifests ...*theme.Manifest) (*ThemeSelector, error) {
	selector := &ThemeSelector{
		registry:  theme.NewRegistry(),
		manifests: make(map[string]*theme.Manifest),
	}
	all := append([]*theme.Manifest{DefaultThemeManifest()}, manifests...)
	for _, manifest := range all {
		if err := selector.Register(manifest); err != nil {
			return nil, err
		}
	}
	return selector, nil
}

// Register adds or replaces a manifest.
func (s *ThemeSelector) Register(manifest *theme.Manifest) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return errors.New("render: theme manifest requires a name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.manifests[manifest.Name]; !exists {
		if err := s.registry.Register(manifest); err != nil {
			return fmt.Errorf("render: register theme %q: %w", manifest.Name, err)
		}
	}
	s.manifests[manifest.Name] = manifest
	return nil
}

// Select returns the named manifest. An empty variant resolves to the first
// variant name in sorted order, if any.
func (s *ThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	manifest, ok := s.manifests[strings.TrimSpace(name)]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}

	variant = strings.TrimSpace(variant)
	if variant == "" && len(manifest.Variants) > 0 {
		names := make([]string, 0, len(manifest.Variants))
		for key := range manifest.Variants {
			names = append(names, key)
		}
		sort.Strings(names)
		variant = names[0]
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("render: theme %q has no variant %q", manifest.Name, variant)
		}
	}

	return &theme.Selection{
		Theme:    manifest.Name,
		Variant:  variant,
		Manifest: manifest,
	}, nil
}

// ResolveTheme selects cfg.Name/cfg.Variant and layers tokens: manifest,
// then variant, then cfg.Tokens. Every token is also exposed as a "--name"
// CSS variable.
func ResolveTheme(selector theme.ThemeSelector, cfg config.ThemeConfig) (*ThemeConfig, error) {
	if selector == nil {
		return nil, errors.New("render: theme selector is nil")
	}
	selection, err := selector.Select(cfg.Name, cfg.Variant)
	if err != nil {
		return nil, err
	}

	tokens := make(map[string]string)
	if manifest := selection.Manifest; manifest != nil {
		for key, value := range manifest.Tokens {
			tokens[key] = value
		}
		if v, ok := manifest.Variants[selection.Variant]; ok {
			for key, value := range v.Tokens {
				tokens[key] = value
			}
		}
	}
	for key, value := range cfg.Tokens {
		tokens[key] = value
	}

	assets := make(map[string]string)
	prefix := ""
	if manifest := selection.Manifest; manifest != nil {
		prefix = manifest.Assets.Prefix
		for key, value := range manifest.Assets.Files {
			assets[key] = value
		}
		if v, ok := manifest.Variants[selection.Variant]; ok {
			if v.Assets.Prefix != "" {
				prefix = v.Assets.Prefix
			}
			for key, value := range v.Assets.Files {
				assets[key] = value
			}
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if !validTokenName(key) {
			return nil, fmt.Errorf("%w: name %q", ErrUnsafeToken, key)
		}
		if strings.ContainsAny(value, "<>;{}") {
			return nil, fmt.Errorf("%w: %q has value %q", ErrUnsafeToken, key, value)
		}
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return &ThemeConfig{
		Name:     selection.Theme,
		Variant:  selection.Variant,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := assets[key]
			if !ok || file == "" {
				return ""
			}
			if prefix == "" {
				return file
			}
			return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(file, "/")
		},
	}, nil
}

// validTokenName accepts CSS custom property names: letters, digits, '-'
// and '_', with an optional leading "--".
func validTokenName(name string) bool {
	name = strings.TrimPrefix(name, "--")
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// CSSVar is a single custom property declaration.
type CSSVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SortedCSSVars returns the CSS variables ordered by name.
func (t *ThemeConfig) SortedCSSVars() []CSSVar {
	if t == nil || len(t.CSSVars) == 0 {
		return nil
	}
	names := make([]string, 0, len(t.CSSVars))
	for name := range t.CSSVars {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]CSSVar, 0, len(names))
	for _, name := range names {
		out = append(out, CSSVar{Name: name, Value: t.CSSVars[name]})
	}
	return out
}
