package errors

import (
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

var (
	homeDir    = os.UserHomeDir
	workingDir = os.Getwd
)

// orgNameRegex matches GitHub organisation and user logins: alphanumerics and
// single inner hyphens, at most 39 characters.
var orgNameRegex = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9]|-[A-Za-z0-9]){0,38}$`)

// ValidateOrgName validates a GitHub organisation login.
func ValidateOrgName(org string) error {
	if org == "" {
		return New(ErrCodeInvalidOrg, "organisation cannot be empty")
	}
	if !orgNameRegex.MatchString(org) {
		return New(ErrCodeInvalidOrg, "invalid organisation name: %q", org)
	}
	return nil
}

// ValidatePackageName validates a dependency name used as a classification prefix.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 214 characters (npm limit)
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfig, "package name cannot be empty")
	}

	if len(name) > 214 {
		return New(ErrCodeInvalidConfig, "package name too long (max 214 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidConfig, "package name contains invalid characters: %q", name)
		}
	}

	for _, pattern := range []string{"..", "//", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidConfig, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePattern compiles a version pattern, reporting syntax errors with
// ErrCodeInvalidPattern. An empty pattern is valid and yields nil.
func ValidatePattern(field, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, Wrap(ErrCodeInvalidPattern, err, "%s: invalid version pattern %q", field, pattern)
	}
	return re, nil
}

// ValidateLimit rejects negative processing limits.
func ValidateLimit(limit int) error {
	if limit < 0 {
		return New(ErrCodeInvalidLimit, "limit must not be negative, got %d", limit)
	}
	return nil
}

// ValidateCheckoutDir validates the directory that is wiped and re-cloned for
// every repository. Refusing the filesystem root, the home directory and the
// working directory keeps a misconfiguration from deleting user data.
func ValidateCheckoutDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return New(ErrCodeInvalidPath, "checkout directory cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Wrap(ErrCodeInvalidPath, err, "resolve checkout directory %q", dir)
	}
	if abs == filepath.Dir(abs) {
		return New(ErrCodeInvalidPath, "checkout directory cannot be the filesystem root")
	}
	if home, err := homeDir(); err == nil && abs == home {
		return New(ErrCodeInvalidPath, "checkout directory cannot be the home directory")
	}
	if wd, err := workingDir(); err == nil && abs == wd {
		return New(ErrCodeInvalidPath, "checkout directory cannot be the working directory")
	}
	return nil
}

// ValidateURL validates a URL string for safety. The scheme must be one of
// schemes, or http/https when none are given, and the URL must name a host.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if len(schemes) == 0 {
		schemes = []string{"http", "https"}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL")
	}
	if !slices.Contains(schemes, strings.ToLower(u.Scheme)) {
		return New(ErrCodeInvalidInput, "URL must use %s scheme", strings.Join(schemes, " or "))
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL %s://... has no host", u.Scheme)
	}
	return nil
}
