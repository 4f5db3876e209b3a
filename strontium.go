package main

import (
	"github.com/strontium-cloud/strontium/cmd"
	"github.com/strontium-cloud/strontium/pkg/env"
	"github.com/strontium-cloud/strontium/pkg/log"
)

func main() {
	if err := env.Process(); err != nil {
		log.Fatal("environment failure", "error", err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal("strontium failure", "error", err)
	}
}
