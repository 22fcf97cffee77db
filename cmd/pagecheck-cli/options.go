package main

import (
	"errors"

	"github.com/jessevdk/go-flags"
)

// Options are the command line options of pagecheck-cli
type Options struct {
	URL         string `short:"u" long:"url" description:"URL to audit"`
	TargetsFile string `short:"f" long:"targets-file" description:"File with one URL per line to audit"`
	Config      string `short:"c" long:"config" description:"Path to the global YAML/JSON configuration file"`
	Timeout     int    `short:"t" long:"timeout" description:"Navigation timeout in milliseconds (0 uses the configured default)" default:"0"`
	Workers     int    `short:"n" long:"num-workers" description:"Number of concurrent audits" default:"1"`
	NoPolicy    bool   `long:"no-policy" description:"Do not block requests to private addresses"`
	JSON        bool   `long:"json" description:"Print raw JSON results, one per line"`
	Debug       bool   `short:"d" long:"debug" description:"Enable debug logging"`
}

var errNoTargets = errors.New("either --url or --targets-file is required")

// parseOptions parses args. A help request is returned as *flags.Error with type ErrHelp.
func parseOptions(args []string) (Options, error) {
	var opts Options
	if _, err := flags.ParseArgs(&opts, args); err != nil {
		return Options{}, err
	}
	if opts.URL == "" && opts.TargetsFile == "" {
		return Options{}, errNoTargets
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return opts, nil
}
