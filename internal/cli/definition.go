package cli

import "loracom/internal/global"

func DefineOptions() (cmdOpts *global.CommandSet) {
	// Root level
	root := &global.CommandSet{
		Description:     "LoRaCom Radio Node",
		FullDescription: "  Reliable command and telemetry exchange between low-power radio devices",
		CommandName:     RootCLICommand,
		ChildCommands:   make(map[string]*global.CommandSet),
	}

	// Node daemon
	root.ChildCommands["run"] = &global.CommandSet{
		CommandName:     "run",
		Description:     "Run Node",
		FullDescription: "Opens the radio, retransmits commands until acknowledged, broadcasts telemetry and relays console commands",
		Examples: []string{
			"run -c " + global.DefaultConfigPath,
			"run -v 3",
		},
	}

	// Command injection
	root.ChildCommands["send"] = &global.CommandSet{
		CommandName:     "send",
		UsageOption:     "\"<command id> <parameter>\"",
		Description:     "Send Command",
		FullDescription: "Queues a command on the running node for acknowledged delivery and optionally waits for the outcome",
		Examples: []string{
			"send -t 2 -w \"4 -9\"",
			"send --to 3 --wait --timeout 5s \"5 915.5\"",
			"send \"1 now\"",
		},
	}

	// Frame inspection
	root.ChildCommands["parse"] = &global.CommandSet{
		CommandName:     "parse",
		UsageOption:     "[\"<command id> <parameter>\"]",
		Description:     "Encode/Decode Frames",
		FullDescription: "Decodes a hex radio frame, or encodes a command line into one",
		Examples: []string{
			"parse --from 1 --to 2 \"12 3.1\"",
			"parse -x <hex frame>",
		},
	}

	// Setup
	root.ChildCommands["configure"] = &global.CommandSet{
		CommandName:     "configure",
		Description:     "Setup Actions",
		FullDescription: "Install or remove the node daemon, or generate its configuration and link key",
		Examples: []string{
			"configure --install",
			"configure --config-template -c node.json",
			"configure --create-link-key",
		},
	}

	// Version Info
	root.ChildCommands["version"] = &global.CommandSet{
		CommandName:     "version",
		Description:     "Show Version Information",
		FullDescription: "Display meta information about program",
	}

	cmdOpts = root
	return
}
