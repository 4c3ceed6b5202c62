package cli

import (
	"flag"
	"fmt"
	"loracom/internal/global"
	"os"
)

func SetGlobalArguments(fs *flag.FlagSet) (level *int) {
	fs.IntVar(&global.Verbosity, "v", 1, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	fs.IntVar(&global.Verbosity, "verbosity", 1, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	level = &global.Verbosity
	return
}

func SetCommon(fs *flag.FlagSet, configPath *string) {
	fs.StringVar(configPath, "c", global.DefaultConfigPath, "Path to the configuration file")
	fs.StringVar(configPath, "config", global.DefaultConfigPath, "Path to the configuration file")
}

// Prints err and exits
func fatal(format string, vars ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", vars...)
	os.Exit(1)
}
