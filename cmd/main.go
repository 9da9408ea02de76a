package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/relver/relver"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version will be set by build process
var Version = "dev"

type CLI struct {
	Repo        string `short:"r" help:"Repository path (default: current directory)"`
	Package     string `short:"p" help:"Package name for metadata lookup"`
	PreVersion  string `help:"Version being prepared for release (constrains git inference)"`
	Override    string `env:"RELVER_VERSION" help:"Explicit version override"`
	Config      string `short:"c" default:"relver.toml" help:"Config file path"`
	Format      string `short:"f" default:"release" enum:"release,brief,debian,rpm" help:"Output dialect"`
	JSON        bool   `short:"j" help:"Output all dialects as JSON"`
	Changelog   bool   `help:"Write ChangeLog from git history"`
	Authors     bool   `help:"Write AUTHORS from git history"`
	Dest        string `short:"d" default:"." help:"Destination directory for generated files"`
	Debug       bool   `help:"Enable debug logging"`
	ShowVersion bool   `help:"Show version information" name:"version"`
}

func main() {
	var cli CLI

	kong.Parse(&cli,
		kong.Name("relver"),
		kong.Description("Derive package versions from git history and render them for packaging tools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	log.Logger = log.Output(zerolog.NewConsoleWriter()).Level(zerolog.InfoLevel)
	if cli.Debug {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	}

	if err := cli.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *CLI) Run() error {
	if c.ShowVersion {
		fmt.Printf("relver version %s\n", Version)
		return nil
	}

	cfg, err := relver.LoadConfig(c.Config)
	if err != nil {
		return err
	}

	repoPath := c.Repo
	if repoPath == "" {
		repoPath, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
	}

	// No repository is not fatal: metadata or an override may still
	// supply a version.
	var history relver.History
	if h, err := relver.OpenRepository(repoPath); err == nil {
		history = h
	} else {
		log.Debug().Err(err).Msg("no usable git repository")
	}

	// Metadata lives next to the package source, not in the output
	// directory for generated files.
	version, err := relver.PackageVersion(relver.PackageVersionOptions{
		Name:       c.Package,
		Dir:        repoPath,
		PreVersion: firstNonEmpty(c.PreVersion, cfg.Version.Pre),
		Override:   firstNonEmpty(c.Override, cfg.Version.Override),
		History:    history,
	})
	if err != nil {
		return err
	}

	parsed, err := relver.Parse(version)
	if err != nil {
		return err
	}

	if c.JSON {
		if err := json.NewEncoder(os.Stdout).Encode(map[string]string{
			"release": parsed.ReleaseString(),
			"brief":   parsed.BriefString(),
			"debian":  parsed.DebianString(),
			"rpm":     parsed.RPMString(),
		}); err != nil {
			return err
		}
	} else {
		fmt.Println(renderFormat(parsed, c.Format))
	}

	genOpts := cfg.GenerateOptions()
	if c.Changelog {
		if err := relver.WriteChangelog(history, c.Dest, genOpts); err != nil {
			return fmt.Errorf("writing changelog: %w", err)
		}
	}
	if c.Authors {
		if err := relver.GenerateAuthors(history, c.Dest, genOpts); err != nil {
			return fmt.Errorf("generating authors: %w", err)
		}
	}
	return nil
}

func renderFormat(v relver.Version, format string) string {
	switch format {
	case "brief":
		return v.BriefString()
	case "debian":
		return v.DebianString()
	case "rpm":
		return v.RPMString()
	default:
		return v.ReleaseString()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
