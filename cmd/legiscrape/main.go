package main

import (
	"log/slog"

	"legiscrape/cmd/legiscrape/commands"
	"legiscrape/lib/util/serviceutil"

	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	commands.ExecuteContext(serviceutil.SignalContext())
}
