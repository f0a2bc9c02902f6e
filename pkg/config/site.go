package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTitle  = "Space Traveling"
	DefaultLocale = "pt-BR"
	DefaultLogo   = "/images/logo.svg"
)

// Site holds presentation settings read from the site file.
type Site struct {
	Title    string `yaml:"title" toml:"title"`
	Locale   string `yaml:"locale" toml:"locale"`
	Logo     string `yaml:"logo" toml:"logo"`
	Comments bool   `yaml:"comments" toml:"comments"`

	Tag language.Tag `yaml:"-" toml:"-"`
}

// LoadSite reads a YAML or TOML site file; the extension picks the format.
// A missing file yields the defaults.
func LoadSite(path string) (Site, error) {
	site := Site{}
	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Site{}, fmt.Errorf("read site file: %w", err)
	default:
		if err := unmarshalSite(path, content, &site); err != nil {
			return Site{}, err
		}
	}

	if site.Title == "" {
		site.Title = DefaultTitle
	}
	if site.Locale == "" {
		site.Locale = DefaultLocale
	}
	if site.Logo == "" {
		site.Logo = DefaultLogo
	}
	tag, err := language.Parse(site.Locale)
	if err != nil {
		return Site{}, fmt.Errorf("site locale %q: %w", site.Locale, err)
	}
	site.Tag = tag
	return site, nil
}

func unmarshalSite(path string, content []byte, site *Site) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, site); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(content, site); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported site file format %q", ext)
	}
	return nil
}
