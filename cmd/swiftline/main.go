package main

import (
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"github.com/oleg578/swiftline/internal/cli"
)

func main() {
	err := cli.NewRootCommand(os.Stdin, os.Stdout).Execute()
	klog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
