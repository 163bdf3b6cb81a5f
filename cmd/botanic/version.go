package main

// Version is set via -ldflags at build time (e.g.
// -X main.Version=$(git describe --tags)). It defaults to "dev" for
// local builds.
var Version = "dev"
