package main

import (
	"fmt"
	"os"
)

// Version 构建时通过 -ldflags "-X main.Version=X.Y.Z" 设置
var Version = "0.0.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
