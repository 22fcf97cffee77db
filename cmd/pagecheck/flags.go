package main

import (
	"flag"
)

type AppFlags struct {
	GlobalConfigFile string
	Port             int
}

func ParseFlags() AppFlags {
	globalConfigFile := flag.String("globalconfig", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := flag.String("gc", "", "Alias for -globalconfig")

	port := flag.Int("port", 0, "Port to listen on (overrides config file and PORT if set)")
	portAlias := flag.Int("p", 0, "Alias for -port")

	flag.Parse()

	flags := AppFlags{}

	if *globalConfigFile != "" {
		flags.GlobalConfigFile = *globalConfigFile
	} else if *globalConfigFileAlias != "" {
		flags.GlobalConfigFile = *globalConfigFileAlias
	}

	if *port != 0 {
		flags.Port = *port
	} else if *portAlias != 0 {
		flags.Port = *portAlias
	}

	return flags
}
