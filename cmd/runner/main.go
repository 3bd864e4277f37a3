package main

import (
	"log"

	"github.com/yarneo/kokoro-ios-runner/pkg/cli"
)

func main() {
	if err := cli.Run(); err != nil {
		log.Fatal(err)
	}
}
