package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"traffic-recorder/internal/delivery/http/handler"
	"traffic-recorder/internal/service"
)

func main() {
	version := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *version {
		fmt.Printf("Traffic Recorder\n")
		fmt.Printf("Version: %s\n", handler.Version)
		os.Exit(0)
	}

	app := service.NewApplication()
	if err := app.Run(); err != nil {
		log.Fatalf("Recorder exited: %v", err)
	}
}
