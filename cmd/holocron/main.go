package main

import (
	"os"

	"github.com/OFFIS-RIT/holocron/internal/util"
)

func main() {
	util.LoadEnv()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
