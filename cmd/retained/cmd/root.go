// Package cmd implements the retained CLI commands.
//
// The root command dispatches to subcommands (run, trace, version).
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name  string
	Short string
	Long  string
	Usage string
	Run   func(args []string) error
}

var rootCmd = &Command{
	Name:  "retained",
	Short: "retained - retained-mode widget reconciliation",
	Long: `retained runs a small demo application on the widget reconciliation
engine and reports what each frame did.

Use "retained <command> --help" for more information about a command.`,
	Usage: "retained <command> [flags]",
}

var (
	commands    = make(map[string]*Command)
	subCommands []*Command
	stdout      io.Writer = os.Stdout
)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	subCommands = append(subCommands, cmd)
}

// Execute runs the CLI with the given arguments.
func Execute(args []string) error {
	if len(args) == 0 {
		printHelp()
		return nil
	}

	switch args[0] {
	case "-h", "--help", "help":
		printHelp()
		return nil
	case "-v", "--version":
		args = []string{"version"}
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printHelp()
		return fmt.Errorf("unknown command: %s", args[0])
	}

	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}
	return cmd.Run(cmdArgs)
}

func printHelp() {
	fmt.Fprintln(stdout, rootCmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", rootCmd.Usage)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Commands:")
	for _, sub := range subCommands {
		fmt.Fprintf(stdout, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Flags:")
	fmt.Fprintln(stdout, "  -h, --help           Show help for a command")
	fmt.Fprintln(stdout, "  -v, --version        Show version information")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Examples:")
	fmt.Fprintln(stdout, "  retained run                  Run the demo until interrupted")
	fmt.Fprintln(stdout, "  retained run --debug :9000    Run with the HTTP debug server")
	fmt.Fprintln(stdout, "  retained trace --frames 5     Print five frames and the final trees")
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
}

// flagValue extracts the value of a "--name value" or "--name=value" flag.
// It returns the remaining arguments.
func flagValue(args []string, name string) (string, bool, []string, error) {
	prefix := "--" + name
	var rest []string
	var value string
	found := false
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == prefix:
			if i+1 >= len(args) {
				return "", false, nil, fmt.Errorf("%s requires a value", prefix)
			}
			value, found = args[i+1], true
			i++
		case strings.HasPrefix(arg, prefix+"="):
			value, found = strings.TrimPrefix(arg, prefix+"="), true
		default:
			rest = append(rest, arg)
		}
	}
	return value, found, rest, nil
}
