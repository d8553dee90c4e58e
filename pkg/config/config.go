// Package config loads scan settings from defaults, an optional config file,
// a .env file and the environment, in that order of precedence (later wins).
// Command-line flags are applied on top by the CLI.
//
// # Files
//
// uiadoption.toml (or .yaml/.yml) in the working directory is picked up
// automatically; UIADOPTION_CONFIG or --config names another file:
//
//	org = "govalta"
//	limit = 50
//	timeout = "5m"
//
//	[libraries.react]
//	package = "@abgov/react-components"
//	current = '^5\.\d{1,2}\.\d{1,2}'
//
// Library entries are react, angular, web-components and vue-components.
// The web-components pattern is the current lineage for Vue consumers.
//
// # Environment
//
//	GITHUB_ORG, GITHUB_API_TOKEN, LIMIT
//	UIADOPTION_CHECKOUT_DIR, UIADOPTION_OUTPUT_DIR, UIADOPTION_TIMEOUT,
//	UIADOPTION_HTTPS, UIADOPTION_REDIS_URL, UIADOPTION_MONGO_URI,
//	UIADOPTION_HISTORY
//
// LIMIT that is unset, non-numeric or not positive means "no limit".
package config

import (
	"path/filepath"
	"time"

	"github.com/matzehuels/uiadoption/pkg/errors"
	"github.com/matzehuels/uiadoption/pkg/library"
	"github.com/matzehuels/uiadoption/pkg/source"
)

// Defaults.
const (
	DefaultTimeout         = 5 * time.Minute
	DefaultOutputDir       = "report"
	DefaultMongoDatabase   = "uiadoption"
	DefaultMongoCollection = "reports"

	// NoLimit is the Limit used when LIMIT is unset or not a number.
	NoLimit = -1
)

// FileNames are looked up, in order, when no config file is named.
var FileNames = []string{"uiadoption.toml", "uiadoption.yaml", "uiadoption.yml"}

// Library is a component-library package and its current-lineage pattern.
type Library struct {
	Package string `toml:"package" yaml:"package"`
	Current string `toml:"current" yaml:"current"`
}

// Libraries configures the packages used for classification.
type Libraries struct {
	React         Library `toml:"react" yaml:"react"`
	Angular       Library `toml:"angular" yaml:"angular"`
	WebComponents Library `toml:"web-components" yaml:"web-components"`
	VueComponents Library `toml:"vue-components" yaml:"vue-components"`
}

// Frameworks names the framework packages.
type Frameworks struct {
	React   string `toml:"react" yaml:"react"`
	Angular string `toml:"angular" yaml:"angular"`
	Vue     string `toml:"vue" yaml:"vue"`
}

// Mongo configures the optional report sink.
type Mongo struct {
	URI        string `toml:"uri" yaml:"uri"`
	Database   string `toml:"database" yaml:"database"`
	Collection string `toml:"collection" yaml:"collection"`
}

// Config is the resolved configuration.
type Config struct {
	Org   string
	Token string
	// Limit caps the number of repositories visited. NoLimit visits all of
	// them and zero visits none.
	Limit int

	CheckoutDir string
	Timeout     time.Duration
	HTTPS       bool

	SkipArchived bool
	SkipForks    bool

	OutputDir   string
	RedisURL    string
	Mongo       Mongo
	HistoryPath string

	Libraries  Libraries
	Frameworks Frameworks

	// File is the config file that was loaded, if any.
	File string
}

// Default returns the built-in configuration.
func Default() *Config {
	defs := library.DefaultDefinitions()
	return &Config{
		CheckoutDir:  source.DefaultCheckoutDir(),
		Limit:        NoLimit,
		Timeout:      DefaultTimeout,
		SkipArchived: true,
		OutputDir:    DefaultOutputDir,
		Mongo: Mongo{
			Database:   DefaultMongoDatabase,
			Collection: DefaultMongoCollection,
		},
		Libraries: Libraries{
			React:         Library{Package: defs.ReactComponents.Name, Current: library.DefaultReactPattern},
			Angular:       Library{Package: defs.AngularComponents.Name, Current: library.DefaultAngularPattern},
			WebComponents: Library{Package: defs.WebComponents.Name, Current: library.DefaultVuePattern},
			VueComponents: Library{Package: defs.VueComponents.Name},
		},
		Frameworks: Frameworks{
			React:   defs.React,
			Angular: defs.Angular,
			Vue:     defs.Vue,
		},
	}
}

// Options controls Load.
type Options struct {
	// File names the config file. Empty searches FileNames in Dir.
	File string
	// Dir is searched for config and .env files. Empty means the working
	// directory.
	Dir string
	// EnvFile names the dotenv file. Empty means Dir/.env; a missing file is
	// not an error.
	EnvFile string
	// Lookup reads environment variables. Nil uses os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Load resolves the configuration and validates it.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	lookup := opts.Lookup
	if lookup == nil {
		envFile := opts.EnvFile
		if envFile == "" {
			envFile = filepath.Join(opts.Dir, ".env")
		}
		if err := loadDotenv(envFile); err != nil {
			return nil, err
		}
		lookup = osLookup
	}

	path := opts.File
	if path == "" {
		if v, ok := lookup("UIADOPTION_CONFIG"); ok && v != "" {
			path = v
		} else {
			path = FindFile(opts.Dir)
		}
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration, including that every pattern compiles.
func (c *Config) Validate() error {
	if c.Org != "" {
		if err := errors.ValidateOrgName(c.Org); err != nil {
			return err
		}
	}
	if c.Limit != NoLimit {
		if err := errors.ValidateLimit(c.Limit); err != nil {
			return err
		}
	}
	if err := errors.ValidateCheckoutDir(c.CheckoutDir); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must not be negative, got %s", c.Timeout)
	}
	if c.OutputDir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "output directory cannot be empty")
	}
	if c.RedisURL != "" {
		if err := errors.ValidateURL(c.RedisURL, "redis", "rediss"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "redis url")
		}
	}
	if c.Mongo.URI != "" {
		if err := errors.ValidateURL(c.Mongo.URI, "mongodb", "mongodb+srv"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "mongo uri")
		}
	}
	_, err := c.Definitions()
	return err
}

// RequireOrg returns an error when no organization is configured.
func (c *Config) RequireOrg() error {
	if c.Org == "" {
		return errors.New(errors.ErrCodeInvalidOrg, "no organization configured: set GITHUB_ORG or pass --org")
	}
	return nil
}

// Definitions compiles the library settings for the classifier.
func (c *Config) Definitions() (library.Definitions, error) {
	var defs library.Definitions
	var err error

	pkg := func(field string, l Library) library.Package {
		if err != nil {
			return library.Package{}
		}
		if err = errors.ValidatePackageName(l.Package); err != nil {
			err = errors.Wrap(errors.ErrCodeInvalidConfig, err, "libraries.%s.package", field)
			return library.Package{}
		}
		p := library.Package{Name: l.Package}
		p.Current, err = errors.ValidatePattern("libraries."+field+".current", l.Current)
		return p
	}
	defs.ReactComponents = pkg("react", c.Libraries.React)
	defs.AngularComponents = pkg("angular", c.Libraries.Angular)
	defs.WebComponents = pkg("web-components", c.Libraries.WebComponents)
	defs.VueComponents = pkg("vue-components", c.Libraries.VueComponents)
	if err != nil {
		return library.Definitions{}, err
	}

	for _, f := range []struct{ field, name string }{
		{"react", c.Frameworks.React},
		{"angular", c.Frameworks.Angular},
		{"vue", c.Frameworks.Vue},
	} {
		if err := errors.ValidatePackageName(f.name); err != nil {
			return library.Definitions{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "frameworks.%s", f.field)
		}
	}
	defs.React = c.Frameworks.React
	defs.Angular = c.Frameworks.Angular
	defs.Vue = c.Frameworks.Vue
	return defs, nil
}
