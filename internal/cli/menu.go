package cli

import (
	"flag"
	"fmt"
	"io"
	"loracom/internal/global"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
)

const (
	RootCLICommand string = "root"
	menuIndent     string = "  "
)

// Help for command (or the root when command is empty) on stdout
func PrintHelpMenu(fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	writeHelpMenu(os.Stdout, filepath.Base(os.Args[0]), fs, command, rootCmd)
}

func writeHelpMenu(w io.Writer, program string, fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	cmdSet, found := lookupCommand(rootCmd, command)
	if !found {
		fmt.Fprintf(w, "Unknown command: %s\n", command)
		return
	}

	usage := []string{program}
	if cmdSet != rootCmd {
		usage = append(usage, cmdSet.CommandName)
	} else if len(rootCmd.ChildCommands) > 0 {
		usage = append(usage, "<command>")
	}
	usage = append(usage, "[options]")
	if cmdSet.UsageOption != "" {
		usage = append(usage, cmdSet.UsageOption)
	}
	fmt.Fprintf(w, "Usage: %s\n\n", strings.Join(usage, " "))

	if cmdSet == rootCmd {
		fmt.Fprintln(w, cmdSet.Description)
		fmt.Fprintln(w, cmdSet.FullDescription)
		fmt.Fprintln(w)
	} else if cmdSet.FullDescription != "" {
		fmt.Fprintf(w, "%s%s\n\n", menuIndent, cmdSet.FullDescription)
	}

	if len(cmdSet.ChildCommands) > 0 {
		fmt.Fprintf(w, "%sCommands:\n", menuIndent)
		table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, name := range sortedNames(cmdSet.ChildCommands) {
			fmt.Fprintf(table, "%s%s\t%s\n", menuIndent+menuIndent, name, cmdSet.ChildCommands[name].Description)
		}
		table.Flush()
		fmt.Fprintln(w)
	}

	writeFlagOptions(w, fs)

	if len(cmdSet.Examples) > 0 {
		fmt.Fprintf(w, "\n%sExamples:\n", menuIndent)
		for _, example := range cmdSet.Examples {
			fmt.Fprintf(w, "%s%s %s\n", menuIndent+menuIndent, program, example)
		}
	}

	if cmdSet == rootCmd {
		fmt.Fprintf(w, "\nRun '%s <command> -h' for the options of a command.\n", program)
		fmt.Fprintf(w, "The node reads %s and serves its API on %s:%d.\n",
			global.DefaultConfigPath, global.HTTPListenAddr, global.HTTPListenPort)
	}
}

// Finds command among the root's children. Empty or root names the root itself.
func lookupCommand(rootCmd *global.CommandSet, command string) (cmdSet *global.CommandSet, found bool) {
	if command == "" || command == RootCLICommand {
		cmdSet, found = rootCmd, true
		return
	}
	cmdSet, found = rootCmd.ChildCommands[command]
	return
}

func sortedNames(commands map[string]*global.CommandSet) (names []string) {
	names = make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// One flag option as printed, a short and long name sharing a usage string are merged
type menuOption struct {
	short      string
	long       string
	usage      string
	defaultVal string
}

func (opt menuOption) names() (left string) {
	switch {
	case opt.short != "" && opt.long != "":
		left = "-" + opt.short + ", --" + opt.long
	case opt.short != "":
		left = "-" + opt.short
	default:
		left = "    --" + opt.long
	}
	return
}

func (opt menuOption) sortKey() (key string) {
	key = opt.short
	if key == "" {
		key = opt.long
	}
	key = strings.ToLower(key)
	return
}

func collectOptions(fs *flag.FlagSet) (opts []menuOption) {
	byUsage := make(map[string]*menuOption)
	var order []string

	fs.VisitAll(func(arg *flag.Flag) {
		opt, seen := byUsage[arg.Usage]
		if !seen {
			opt = &menuOption{usage: arg.Usage, defaultVal: arg.DefValue}
			byUsage[arg.Usage] = opt
			order = append(order, arg.Usage)
		}
		if len(arg.Name) == 1 {
			opt.short = arg.Name
		} else {
			opt.long = arg.Name
		}
	})

	for _, usage := range order {
		opts = append(opts, *byUsage[usage])
	}
	sort.SliceStable(opts, func(a, b int) bool {
		return opts[a].sortKey() < opts[b].sortKey()
	})
	return
}

func writeFlagOptions(w io.Writer, fs *flag.FlagSet) {
	opts := collectOptions(fs)
	if len(opts) == 0 {
		return
	}

	fmt.Fprintf(w, "%sOptions:\n", menuIndent)
	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, opt := range opts {
		desc := opt.usage
		// Zero values are not worth printing
		if opt.defaultVal != "" && opt.defaultVal != "false" && opt.defaultVal != "0" {
			desc += fmt.Sprintf(" [default: %s]", opt.defaultVal)
		}
		fmt.Fprintf(table, "%s%s\t%s\n", menuIndent+menuIndent, opt.names(), desc)
	}
	table.Flush()
}
