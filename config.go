package relver

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config carries the build-time options usually kept in a relver.toml
// next to the package being built.
type Config struct {
	Version struct {
		// Pre is the version being prepared for release. It constrains
		// git inference: history demanding a higher version fails the
		// build.
		Pre string `toml:"pre"`
		// Override wins over every other version source.
		Override string `toml:"override"`
	} `toml:"version"`

	Changelog struct {
		Skip bool `toml:"skip"`
	} `toml:"changelog"`

	Authors struct {
		Skip          bool   `toml:"skip"`
		IgnorePattern string `toml:"ignore_pattern"`
	} `toml:"authors"`
}

// LoadConfig reads a TOML config from path. A missing file is not an
// error; it yields the zero config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// GenerateOptions maps the config onto changelog/authors generation
// options.
func (c Config) GenerateOptions() GenerateOptions {
	return GenerateOptions{
		SkipChangelog:       c.Changelog.Skip,
		SkipAuthors:         c.Authors.Skip,
		AuthorIgnorePattern: c.Authors.IgnorePattern,
	}
}
