package cmd

import (
	"fmt"
	"runtime"
)

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  "Print the retained CLI version, build time and Go runtime.",
		Usage: "retained version",
		Run:   runVersion,
	})
}

func runVersion(args []string) error {
	fmt.Fprintf(stdout, "retained version %s (built %s, %s %s/%s)\n",
		Version, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}
