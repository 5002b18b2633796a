package main

import (
	"github.com/OFFIS-RIT/holocron/internal/server"
	"github.com/OFFIS-RIT/holocron/internal/util"
	"github.com/OFFIS-RIT/holocron/pkg/logger"
	"github.com/OFFIS-RIT/holocron/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: util.GetEnvBool("DEBUG", false),
		JSON:  util.GetEnvBool("LOG_JSON", false),
	})
	logger.Init(consoleLogger)

	server.Init()
}
