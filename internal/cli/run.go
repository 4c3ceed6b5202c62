package cli

import (
	"context"
	"flag"
	"loracom/internal/global"
	"loracom/internal/lifecycle"
	"loracom/internal/logctx"
	"loracom/internal/node"
	"os"
)

func RunMode(ctx context.Context, commandname string, args []string) {
	var configPath string
	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &configPath)

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
	}
	commandFlags.Parse(args)
	logctx.SetLogLevel(ctx, global.Verbosity)

	jsonCfg, err := node.LoadConfig(configPath)
	if err != nil {
		fatal("%v", err)
	}

	daemonConfig, err := jsonCfg.NewDaemonConf()
	if err != nil {
		fatal("%v", err)
	}

	nodeDaemon := node.NewDaemon(daemonConfig)
	nodeDaemon.ConfigPath = configPath
	err = nodeDaemon.Start(ctx)
	if err != nil {
		fatal("starting node daemon: %v", err)
	}

	go lifecycle.SignalHandler(ctx, nodeDaemon)

	err = lifecycle.NotifyReady(ctx)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
	}

	nodeDaemon.Run()
	os.Stdout.Sync()
}
