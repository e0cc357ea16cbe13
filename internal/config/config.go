// Package config loads particle field settings from TOML files, .env files
// and PARTICLES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/Garsondee/Particle-Field/internal/field"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// EnvPrefix namespaces environment overrides.
const EnvPrefix = "PARTICLES_"

// Duration is a time.Duration that reads and writes as "1.5s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Colors holds optional hex overrides ("#8ab4f8"). Empty strings keep the
// theme palette.
type Colors struct {
	Particle      string  `toml:"particle"`
	ParticleAlpha float64 `toml:"particle_alpha"`
	Glow          string  `toml:"glow"`
	GlowAlpha     float64 `toml:"glow_alpha"`
}

// Window configures the desktop renderer.
type Window struct {
	Width         int      `toml:"width"`
	Height        int      `toml:"height"`
	Title         string   `toml:"title"`
	Slides        string   `toml:"slides"` // directory of images for the slideshow overlay
	SlideInterval Duration `toml:"slide_interval"`
	SlideFade     Duration `toml:"slide_fade"`
}

// Serve configures the HTTP preview.
type Serve struct {
	Addr   string `toml:"addr"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Config is the full settings tree.
type Config struct {
	Variant        string            `toml:"variant"`
	Theme          string            `toml:"theme"`
	Count          int               `toml:"count"`
	NoiseIntensity float64           `toml:"noise_intensity"`
	Size           field.SizeRange   `toml:"size"` // zero bounds take the variant's default
	Glow           field.GlowOptions `toml:"glow"`
	Colors         Colors            `toml:"colors"`
	Seed           int64             `toml:"seed"` // 0 seeds from the clock
	FPS            int               `toml:"fps"`
	Window         Window            `toml:"window"`
	Serve          Serve             `toml:"serve"`
}

// Default returns the stock settings.
func Default() Config {
	return Config{
		Variant:        string(field.VariantFlow),
		Theme:          "dark",
		Count:          2000,
		NoiseIntensity: 0.003,
		Glow:           field.DefaultGlow(),
		FPS:            60,
		Window: Window{
			Width:         1280,
			Height:        720,
			Title:         "Particle Field",
			SlideInterval: Duration{2 * time.Second},
			SlideFade:     Duration{500 * time.Millisecond},
		},
		Serve: Serve{Addr: ":8080", Width: 640, Height: 360},
	}
}

// Load reads path (when non-empty) over the defaults, applies .env files and
// environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
		}
	}
	if err := LoadDotEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadDotEnv loads the given .env files (default ".env") into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from PARTICLES_* variables found through lookup.
// PORT is honoured for the preview address when PARTICLES_ADDR is unset.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *float64) {
		if v, ok := lookup(EnvPrefix + key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}

	str("VARIANT", &c.Variant)
	str("THEME", &c.Theme)
	integer("COUNT", &c.Count)
	num("NOISE_INTENSITY", &c.NoiseIntensity)
	num("SIZE_MIN", &c.Size.Min)
	num("SIZE_MAX", &c.Size.Max)
	num("GLOW_RADIUS", &c.Glow.MouseRadius)
	integer("FPS", &c.FPS)
	str("PARTICLE_COLOR", &c.Colors.Particle)
	str("GLOW_COLOR", &c.Colors.Glow)
	if v, ok := lookup(EnvPrefix + "SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED: %w", EnvPrefix, err))
		} else {
			c.Seed = n
		}
	}
	if v, ok := lookup(EnvPrefix + "ADDR"); ok {
		c.Serve.Addr = v
	} else if port, ok := lookup("PORT"); ok && port != "" {
		c.Serve.Addr = ":" + port
	}
	return errors.Join(errs...)
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := field.ParseVariant(c.Variant); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseTheme(c.Theme); err != nil {
		errs = append(errs, err)
	}
	if c.Count <= 0 {
		errs = append(errs, fmt.Errorf("count must be positive, got %d", c.Count))
	}
	if c.NoiseIntensity <= 0 {
		errs = append(errs, fmt.Errorf("noise_intensity must be positive, got %g", c.NoiseIntensity))
	}
	if err := c.SizeFor(c.VariantKind()).Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Glow.MouseRadius < 0 || c.Glow.ElementRadius < 0 {
		errs = append(errs, fmt.Errorf("glow radii must be non-negative"))
	}
	if c.Glow.SizeMultiplier <= 0 {
		errs = append(errs, fmt.Errorf("glow size_multiplier must be positive, got %g", c.Glow.SizeMultiplier))
	}
	if c.FPS <= 0 || c.FPS > 240 {
		errs = append(errs, fmt.Errorf("fps must be in 1..240, got %d", c.FPS))
	}
	if _, err := c.Overrides(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// ParseTheme maps "dark"/"light" to the dark flag.
func ParseTheme(s string) (dark bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dark", "":
		return true, nil
	case "light":
		return false, nil
	}
	return false, fmt.Errorf("unknown theme %q (supported: dark, light)", s)
}

// Dark reports whether the configured theme is dark.
func (c Config) Dark() bool {
	d, _ := ParseTheme(c.Theme)
	return d
}

// VariantKind returns the configured variant, defaulting to flow.
func (c Config) VariantKind() field.Variant {
	v, err := field.ParseVariant(c.Variant)
	if err != nil {
		return field.VariantFlow
	}
	return v
}

// Overrides converts the hex colour settings.
func (c Config) Overrides() (field.Overrides, error) {
	var o field.Overrides
	var errs []error
	if c.Colors.Particle != "" {
		col, err := parseColor(c.Colors.Particle, c.Colors.ParticleAlpha)
		if err != nil {
			errs = append(errs, fmt.Errorf("colors.particle: %w", err))
		} else {
			o.Particle = &col
		}
	}
	if c.Colors.Glow != "" {
		col, err := parseColor(c.Colors.Glow, c.Colors.GlowAlpha)
		if err != nil {
			errs = append(errs, fmt.Errorf("colors.glow: %w", err))
		} else {
			o.Glow = &col
		}
	}
	return o, errors.Join(errs...)
}

// parseColor reads "#rrggbb"; alpha 0 means fully opaque.
func parseColor(hex string, alpha float64) (color.NRGBA, error) {
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}, nil
}

// SizeFor returns the particle size range for v. Bounds left at zero are
// taken from the variant's stock range, so drift keeps its smaller particles
// unless a size is configured.
func (c Config) SizeFor(v field.Variant) field.SizeRange {
	def := field.DefaultFlowOptions().Size
	if v == field.VariantDrift {
		def = field.DefaultDriftOptions().Size
	}
	r := c.Size
	if r.Min == 0 {
		r.Min = def.Min
	}
	if r.Max == 0 {
		r.Max = def.Max
	}
	return r
}

// FlowOptions builds the noise-driven variant's options.
func (c Config) FlowOptions() field.FlowOptions {
	o, _ := c.Overrides()
	return field.FlowOptions{
		Count:          c.Count,
		Size:           c.SizeFor(field.VariantFlow),
		NoiseIntensity: c.NoiseIntensity,
		Colors:         o,
	}
}

// DriftOptions builds the proximity variant's options.
func (c Config) DriftOptions() field.DriftOptions {
	o, _ := c.Overrides()
	return field.DriftOptions{
		Count:  c.Count,
		Size:   c.SizeFor(field.VariantDrift),
		Glow:   c.Glow,
		Colors: o,
	}
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// String renders c as TOML, for the clipboard and the preview server.
func (c Config) String() string {
	var b strings.Builder
	if err := c.Encode(&b); err != nil {
		return fmt.Sprintf("# encode failed: %v\n", err)
	}
	return b.String()
}

// EnvKeys lists the recognised environment overrides, sorted.
func EnvKeys() []string {
	keys := []string{"VARIANT", "THEME", "COUNT", "NOISE_INTENSITY", "SIZE_MIN", "SIZE_MAX",
		"GLOW_RADIUS", "FPS", "PARTICLE_COLOR", "GLOW_COLOR", "SEED", "ADDR"}
	for i := range keys {
		keys[i] = EnvPrefix + keys[i]
	}
	sort.Strings(keys)
	return keys
}
