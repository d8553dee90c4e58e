package cli

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/uiadoption/pkg/config"
	"github.com/matzehuels/uiadoption/pkg/errors"
	"github.com/matzehuels/uiadoption/pkg/inventory"
	"github.com/matzehuels/uiadoption/pkg/library"
)

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"table", "json", "yaml"} {
		if err := validateFormat(f); err != nil {
			t.Errorf("validateFormat(%q) = %v, want nil", f, err)
		}
	}
	if err := validateFormat("xml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("validateFormat(xml) = %v, want INVALID_FORMAT", err)
	}
}

func TestElementRows(t *testing.T) {
	got := elementRows(map[string]int{"goa-button": 2, "goa-input": 5, "goa-badge": 2})
	want := [][]string{{"goa-input", "5"}, {"goa-badge", "2"}, {"goa-button", "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("elementRows() = %v, want %v", got, want)
	}
}

func TestWriteResult(t *testing.T) {
	res := inventory.NewResult("portal")
	res.Variant = library.WebComponentsUIC
	res.Versions = []string{"1.16.0"}
	res.Count = 3
	res.Elements = map[string]int{"goa-button": 3}

	var buf bytes.Buffer
	if err := writeResult(&buf, res, formatJSON); err != nil {
		t.Fatalf("writeResult(json) error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["lib"] != "wc-uic" || decoded["count"] != float64(3) {
		t.Errorf("json = %v", decoded)
	}

	buf.Reset()
	if err := writeResult(&buf, res, formatYAML); err != nil {
		t.Fatalf("writeResult(yaml) error: %v", err)
	}
	if !strings.Contains(buf.String(), "lib: wc-uic") {
		t.Errorf("yaml missing lib:\n%s", buf.String())
	}

	buf.Reset()
	if err := writeResult(&buf, res, formatTable); err != nil {
		t.Fatalf("writeResult(table) error: %v", err)
	}
	if !strings.Contains(buf.String(), "goa-button") {
		t.Errorf("table missing component:\n%s", buf.String())
	}
}

func TestScanOpts_Apply(t *testing.T) {
	newCmd := func(args ...string) (*cobra.Command, *scanOpts) {
		c := &CLI{Logger: newLogger(&bytes.Buffer{}, LogInfo)}
		cmd := c.scanCommand()
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("ParseFlags(%v) error: %v", args, err)
		}
		// Recover the options bound to the flags.
		opts := &scanOpts{}
		f := cmd.Flags()
		opts.org, _ = f.GetString("org")
		opts.limit, _ = f.GetInt("limit")
		opts.output, _ = f.GetString("output")
		opts.includeArchived, _ = f.GetBool("include-archived")
		opts.fromDir, _ = f.GetString("from-dir")
		opts.redisURL, _ = f.GetString("redis-url")
		opts.mongoURI, _ = f.GetString("mongo-uri")
		return cmd, opts
	}

	t.Run("flags override config", func(t *testing.T) {
		cmd, opts := newCmd("--org", "govalta", "-n", "5", "-o", "out", "--include-archived")
		cfg := config.Default()
		cfg.Org = "other"
		if err := opts.apply(cmd, cfg); err != nil {
			t.Fatalf("apply() error: %v", err)
		}
		if cfg.Org != "govalta" || cfg.Limit != 5 || cfg.OutputDir != "out" || cfg.SkipArchived {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("unset flags keep config", func(t *testing.T) {
		cmd, opts := newCmd()
		cfg := config.Default()
		cfg.Org = "govalta"
		cfg.Limit = 7
		if err := opts.apply(cmd, cfg); err != nil {
			t.Fatalf("apply() error: %v", err)
		}
		if cfg.Limit != 7 || !cfg.SkipArchived {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("limit flag", func(t *testing.T) {
		tests := []struct {
			args []string
			want int
		}{
			{[]string{"-n", "0"}, 0},
			{[]string{"-n", "-5"}, config.NoLimit},
			{[]string{"--limit", "12"}, 12},
			{nil, config.NoLimit},
		}
		for _, tt := range tests {
			cmd, opts := newCmd(append([]string{"--org", "govalta"}, tt.args...)...)
			cfg := config.Default()
			if err := opts.apply(cmd, cfg); err != nil {
				t.Fatalf("apply(%v) error: %v", tt.args, err)
			}
			if cfg.Limit != tt.want {
				t.Errorf("apply(%v) Limit = %d, want %d", tt.args, cfg.Limit, tt.want)
			}
		}
	})

	t.Run("store urls are validated", func(t *testing.T) {
		tests := []struct {
			args []string
			ok   bool
		}{
			{[]string{"--redis-url", "redis://localhost:6379/0"}, true},
			{[]string{"--redis-url", "localhost:6379"}, false},
			{[]string{"--mongo-uri", "mongodb+srv://cluster0.example.net"}, true},
			{[]string{"--mongo-uri", "https://cluster0.example.net"}, false},
		}
		for _, tt := range tests {
			cmd, opts := newCmd(append([]string{"--org", "govalta"}, tt.args...)...)
			err := opts.apply(cmd, config.Default())
			if tt.ok && err != nil {
				t.Errorf("apply(%v) = %v, want nil", tt.args, err)
			}
			if !tt.ok && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("apply(%v) = %v, want INVALID_CONFIG", tt.args, err)
			}
		}
	})

	t.Run("org required", func(t *testing.T) {
		cmd, opts := newCmd()
		if err := opts.apply(cmd, config.Default()); !errors.Is(err, errors.ErrCodeInvalidOrg) {
			t.Errorf("apply() = %v, want INVALID_ORG", err)
		}
	})

	t.Run("from-dir needs no org", func(t *testing.T) {
		cmd, opts := newCmd("--from-dir", t.TempDir())
		if err := opts.apply(cmd, config.Default()); err != nil {
			t.Errorf("apply() = %v, want nil", err)
		}
	})
}
