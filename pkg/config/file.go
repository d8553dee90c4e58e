package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/uiadoption/pkg/errors"
)

// fileLibrary distinguishes an absent pattern from an explicitly empty one,
// which disables the current-lineage check for that library.
type fileLibrary struct {
	Package string  `toml:"package" yaml:"package"`
	Current *string `toml:"current" yaml:"current"`
}

type fileConfig struct {
	Org          string                 `toml:"org" yaml:"org"`
	Limit        *int                   `toml:"limit" yaml:"limit"`
	CheckoutDir  string                 `toml:"checkout_dir" yaml:"checkout_dir"`
	Timeout      string                 `toml:"timeout" yaml:"timeout"`
	HTTPS        *bool                  `toml:"https" yaml:"https"`
	SkipArchived *bool                  `toml:"skip_archived" yaml:"skip_archived"`
	SkipForks    *bool                  `toml:"skip_forks" yaml:"skip_forks"`
	OutputDir    string                 `toml:"output_dir" yaml:"output_dir"`
	RedisURL     string                 `toml:"redis_url" yaml:"redis_url"`
	Mongo        Mongo                  `toml:"mongo" yaml:"mongo"`
	History      string                 `toml:"history" yaml:"history"`
	Libraries    map[string]fileLibrary `toml:"libraries" yaml:"libraries"`
	Frameworks   Frameworks             `toml:"frameworks" yaml:"frameworks"`
}

// FindFile returns the first of FileNames present in dir, or "".
func FindFile(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// LoadFile overlays the settings of a TOML or YAML file onto c. Unknown keys
// are rejected so that typos do not silently fall back to defaults.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}

	var f fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && err != io.EOF {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported config format %q (want .toml, .yaml or .yml)", ext)
	}

	// NoLimit is internal; a file states a count or omits the key.
	if f.Limit != nil {
		if err := errors.ValidateLimit(*f.Limit); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidLimit, err, "%s", path)
		}
	}
	if err := c.overlay(f); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	c.File = path
	return nil
}

func (c *Config) overlay(f fileConfig) error {
	setString(&c.Org, f.Org)
	setString(&c.CheckoutDir, f.CheckoutDir)
	setString(&c.OutputDir, f.OutputDir)
	setString(&c.RedisURL, f.RedisURL)
	setString(&c.HistoryPath, f.History)
	setString(&c.Mongo.URI, f.Mongo.URI)
	setString(&c.Mongo.Database, f.Mongo.Database)
	setString(&c.Mongo.Collection, f.Mongo.Collection)
	setString(&c.Frameworks.React, f.Frameworks.React)
	setString(&c.Frameworks.Angular, f.Frameworks.Angular)
	setString(&c.Frameworks.Vue, f.Frameworks.Vue)

	if f.Limit != nil {
		c.Limit = *f.Limit
	}
	if f.HTTPS != nil {
		c.HTTPS = *f.HTTPS
	}
	if f.SkipArchived != nil {
		c.SkipArchived = *f.SkipArchived
	}
	if f.SkipForks != nil {
		c.SkipForks = *f.SkipForks
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidConfig, "invalid timeout %q", f.Timeout)
		}
		c.Timeout = d
	}

	for name, l := range f.Libraries {
		var dst *Library
		switch name {
		case "react":
			dst = &c.Libraries.React
		case "angular":
			dst = &c.Libraries.Angular
		case "web-components":
			dst = &c.Libraries.WebComponents
		case "vue-components":
			dst = &c.Libraries.VueComponents
		default:
			return errors.New(errors.ErrCodeInvalidConfig, "unknown library %q", name)
		}
		setString(&dst.Package, l.Package)
		if l.Current != nil {
			dst.Current = *l.Current
		}
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
