// Package main provides the botanic CLI application.
// botanic manages the lifecycle of a botanic-collection PostgreSQL
// database and its taxonomic search engine.
package main

import (
	"os"
)

func main() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
