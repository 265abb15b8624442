package main

import (
	"log"
	"os"

	"github.com/seqshare/seqshare/internal/server"
	"github.com/seqshare/seqshare/internal/server/config"
)

func main() {

	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	if err := app.Run(os.Args[1:]); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
