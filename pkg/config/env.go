package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/matzehuels/uiadoption/pkg/errors"
)

func osLookup(key string) (string, bool) { return os.LookupEnv(key) }

// loadDotenv exports the variables of a dotenv file without overriding
// variables that are already set.
func loadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", path)
	}
	return nil
}

// ApplyEnv overlays environment variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	setString(&c.Org, get("GITHUB_ORG"))
	setString(&c.Token, get("GITHUB_TOKEN"))
	setString(&c.Token, get("GITHUB_API_TOKEN"))
	setString(&c.CheckoutDir, get("UIADOPTION_CHECKOUT_DIR"))
	setString(&c.OutputDir, get("UIADOPTION_OUTPUT_DIR"))
	setString(&c.RedisURL, get("UIADOPTION_REDIS_URL"))
	setString(&c.Mongo.URI, get("UIADOPTION_MONGO_URI"))
	setString(&c.HistoryPath, get("UIADOPTION_HISTORY"))

	if v := get("LIMIT"); v != "" {
		c.Limit = ParseLimit(v)
	}
	if v := get("UIADOPTION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidConfig, "UIADOPTION_TIMEOUT: invalid duration %q", v)
		}
		c.Timeout = d
	}
	if v := get("UIADOPTION_HTTPS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidConfig, "UIADOPTION_HTTPS: invalid boolean %q", v)
		}
		c.HTTPS = b
	}
	return nil
}

// ParseLimit parses a repository limit. Anything that is not a
// non-negative integer yields NoLimit; "0" is a limit of zero.
func ParseLimit(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return NoLimit
	}
	return n
}
