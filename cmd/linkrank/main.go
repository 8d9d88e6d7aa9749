package main

import (
	"fmt"
	"os"
)

const (
	appName = "linkrank"
	appSHA  = "compiled-and-deployed-at"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
