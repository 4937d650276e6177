package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tendermint/nftauction/cmd/auctiond/commands"
	"github.com/tendermint/nftauction/config"
	"github.com/tendermint/nftauction/libs/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conf := config.DefaultConfig()
	logger, err := log.NewDefaultLogger(conf.LogFormat, conf.LogLevel)
	if err != nil {
		panic(err)
	}

	rcmd := commands.RootCommand(conf, logger)
	rcmd.AddCommand(
		commands.MakeInitFilesCommand(conf, logger),
		commands.MakeExecCommand(conf, logger),
		commands.MakeQueryCommand(conf, logger),
		commands.MakeConfigCommand(conf),
		commands.VersionCmd,
	)

	if err := rcmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
