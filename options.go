package stego

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Options carries per-call knobs for embed and extract. The zero value
// is valid: no password, per-medium default redundancy, lenient
// checksum verification, no compression.
type Options struct {
	// Password enables encryption on embed and decryption on extract.
	// Empty means plaintext containers.
	Password string

	// Redundancy overrides the per-medium default when positive.
	// Extract must use the same value the embed used.
	Redundancy int

	// StrictChecksum turns a post-decrypt checksum mismatch into an
	// error. When false (default) the mismatch is surfaced as an
	// integrity warning on the payload and the data is still
	// returned.
	StrictChecksum bool

	// Compress deflates the payload before encryption, escalating the
	// level when the carrier is tight.
	Compress bool

	// Label tags the payload inside layered containers.
	Label string

	// ScanLimit bounds the magic search in decoded carrier bytes.
	// Zero means the default bound.
	ScanLimit int
}

// Option mutates Options during construction.
type Option func(*Options)

// WithPassword sets the container password.
func WithPassword(password string) Option {
	return func(o *Options) { o.Password = password }
}

// WithRedundancy overrides the per-medium redundancy.
func WithRedundancy(r int) Option {
	return func(o *Options) { o.Redundancy = r }
}

// WithStrictChecksum makes checksum mismatches fatal.
func WithStrictChecksum() Option {
	return func(o *Options) { o.StrictChecksum = true }
}

// WithCompression deflates payloads before embedding.
func WithCompression() Option {
	return func(o *Options) { o.Compress = true }
}

// WithLabel tags the payload inside layered containers.
func WithLabel(label string) Option {
	return func(o *Options) { o.Label = label }
}

// WithScanLimit bounds the extraction magic search.
func WithScanLimit(n int) Option {
	return func(o *Options) { o.ScanLimit = n }
}

// buildOptions folds option funcs over the zero value.
func buildOptions(opts []Option) *Options {
	o := &Options{}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

// redundancyFor resolves the effective redundancy for a carrier kind.
func (o *Options) redundancyFor(kind CarrierKind) int {
	if o.Redundancy > 0 {
		return o.Redundancy
	}
	if r, ok := defaultRedundancy[kind]; ok {
		return r
	}
	return 1
}

// Profile is a YAML-loadable tuning preset. Calling job systems ship
// these alongside worker configuration instead of hardcoding knobs.
type Profile struct {
	Name           string `yaml:"name"`
	Redundancy     int    `yaml:"redundancy"`
	StrictChecksum bool   `yaml:"strict_checksum"`
	Compress       bool   `yaml:"compress"`
	ScanLimit      int    `yaml:"scan_limit"`
}

// LoadProfile parses a YAML tuning preset.
func LoadProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	if p.Redundancy < 0 {
		return nil, fmt.Errorf("parsing profile %q: redundancy must not be negative", p.Name)
	}
	return &p, nil
}

// Options converts the profile into option funcs, to be combined with
// per-call options like WithPassword.
func (p *Profile) Options() []Option {
	opts := []Option{}
	if p.Redundancy > 0 {
		opts = append(opts, WithRedundancy(p.Redundancy))
	}
	if p.StrictChecksum {
		opts = append(opts, WithStrictChecksum())
	}
	if p.Compress {
		opts = append(opts, WithCompression())
	}
	if p.ScanLimit > 0 {
		opts = append(opts, WithScanLimit(p.ScanLimit))
	}
	return opts
}
