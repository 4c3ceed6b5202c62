package cli

import (
	"flag"
	"fmt"
	"loracom/internal/global"
	"loracom/internal/install"
	"os"
)

// Setup/installation options
func SetupMode(cliOpts *global.CommandSet, commandname string, args []string) {
	var installNode bool
	var uninstallNode bool
	var newConf bool
	var newLinkKey bool
	var templateConfPath string

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	commandFlags.BoolVar(&installNode, "install", false, "Install/Upgrade the node daemon")
	commandFlags.BoolVar(&uninstallNode, "uninstall", false, "Remove the node daemon, its configuration and history")
	commandFlags.StringVar(&templateConfPath, "c", "", "Path to template config file")
	commandFlags.StringVar(&templateConfPath, "config", "", "Path to template config file")
	commandFlags.BoolVar(&newConf, "config-template", false, "Create new template config for the node daemon (using config argument)")
	commandFlags.BoolVar(&newLinkKey, "create-link-key", false, "Create new shared radio link key (prints to stdout)")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args)

	var err error

	if newLinkKey {
		var key string
		key, err = install.GenerateLinkKey()
		if err == nil {
			fmt.Printf("Link Key: %s\n", key)
		}
	} else if newConf {
		err = install.CreateTemplateConfig(templateConfPath)
	} else if installNode {
		install.Run()
	} else if uninstallNode {
		install.Remove()
	} else {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}

	if err != nil {
		fatal("%v", err)
	}
}
