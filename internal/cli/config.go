package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jobtimeline/pkg/pipeline"
)

// configFileName is looked up in the config directory when --config is not given.
const configFileName = "config.toml"

// Config is the optional TOML config file. Top-level keys are pipeline
// options; the [server] table configures `serve`.
//
//	width = 1000
//	formats = ["svg", "png"]
//
//	[margins]
//	top = 10
//	bottom = 10
//	left = 40
//	right = 40
//
//	[server]
//	addr = ":8080"
//	redis_addr = "localhost:6379"
type Config struct {
	pipeline.Options
	Server ServerConfig `toml:"server"`
}

// ServerConfig holds settings for the HTTP server.
type ServerConfig struct {
	Addr      string `toml:"addr"`
	RedisAddr string `toml:"redis_addr"`
	MongoURI  string `toml:"mongo_uri"`
	MongoDB   string `toml:"mongo_db"`
	StoreDir  string `toml:"store_dir"`
}

// readConfig decodes the config file at path. Unknown keys are reported
// as an error so typos do not silently fall back to defaults.
func readConfig(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// loadConfig reads --config, or the default config file when it exists.
func (c *CLI) loadConfig() error {
	path := c.configPath
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(dir, configFileName)
	}

	cfg, err := readConfig(path)
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded config", "path", path)
	c.config = cfg
	return nil
}

// applyConfig fills opts from the config file. Flags set explicitly on the
// command line win over the file.
func (c *CLI) applyConfig(cmd *cobra.Command, opts *pipeline.Options) {
	f := c.config.Options
	unset := func(flag string) bool {
		fl := cmd.Flags().Lookup(flag)
		return fl == nil || !fl.Changed
	}

	if f.VizType != "" && unset("type") {
		opts.VizType = f.VizType
	}
	if f.InputFormat != "" && unset("input-format") {
		opts.InputFormat = f.InputFormat
	}
	if f.Width != 0 && unset("width") {
		opts.Width = f.Width
	}
	if f.Height != 0 && unset("height") {
		opts.Height = f.Height
	}
	if f.NodeHeight != 0 && unset("node-height") {
		opts.NodeHeight = f.NodeHeight
	}
	if f.LabelFontSize != 0 && unset("font-size") {
		opts.LabelFontSize = f.LabelFontSize
	}
	if f.MaxLabelWidth != 0 && unset("label-width") {
		opts.MaxLabelWidth = f.MaxLabelWidth
	}
	if f.AxisPadding != 0 && unset("axis-padding") {
		opts.AxisPadding = f.AxisPadding
	}
	if f.Padding != 0 && unset("padding") {
		opts.Padding = f.Padding
	}
	if f.TickCount != 0 && unset("ticks") {
		opts.TickCount = f.TickCount
	}
	if f.Margins != nil && opts.Margins == nil {
		m := *f.Margins
		opts.Margins = &m
	}
	if f.Detailed && unset("detailed") {
		opts.Detailed = true
	}
	if len(f.Formats) > 0 && unset("format") {
		opts.Formats = append([]string(nil), f.Formats...)
	}
	if f.Title != "" && unset("title") {
		opts.Title = f.Title
	}
	if f.Stylesheet != "" && unset("stylesheet") {
		opts.Stylesheet = f.Stylesheet
	}
	if f.NoAxes && unset("no-axes") {
		opts.NoAxes = true
	}
	if f.Scale != 0 && unset("scale") {
		opts.Scale = f.Scale
	}
}

// readStylesheet replaces a stylesheet path with the file's contents.
func readStylesheet(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read stylesheet: %w", err)
	}
	return string(data), nil
}
