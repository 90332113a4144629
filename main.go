package main

import (
	"log"

	"github.com/edemy/lms-server/app"
)

func main() {
	if err := app.SetupAndRun(); err != nil {
		log.Fatal(err)
	}
}
