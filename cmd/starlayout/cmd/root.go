// Package cmd implements the starlayout CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (run, allocate, render, preview).
package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	layouterrors "github.com/go-drift/starlayout/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(args []string) error
	SubCommands []*Command
}

var rootCmd = &Command{
	Name:  "starlayout",
	Short: "starlayout - weighted star sizing for grouped layouts",
	Long: `starlayout measures layout scenarios with star-sized columns and
resizable groups, and shows how the surplus width is shared out.

Use "starlayout <command> --help" for more information about a command.`,
	Usage: "starlayout <command> [flags] <scenario.yaml>",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// stdout is where commands write their results.
var stdout io.Writer = os.Stdout

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return execute(os.Args[1:])
}

func execute(args []string) error {
	// Handle no arguments
	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Handle global flags and extract --verbose
	verbosity := 0
	var filteredArgs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help", "help":
			if len(filteredArgs) == 0 {
				printHelp(rootCmd)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "-v", "--version", "version":
			if len(filteredArgs) == 0 {
				fmt.Fprintf(stdout, "starlayout version %s (built %s)\n", Version, BuildTime)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "--verbose":
			if i+1 >= len(args) {
				return fmt.Errorf("--verbose requires a level")
			}
			level, err := strconv.Atoi(args[i+1])
			if err != nil {
				return fmt.Errorf("invalid --verbose level %q: %w", args[i+1], err)
			}
			verbosity = level
			i++
		default:
			if strings.HasPrefix(arg, "--verbose=") {
				level, err := strconv.Atoi(strings.TrimPrefix(arg, "--verbose="))
				if err != nil {
					return fmt.Errorf("invalid --verbose level %q: %w", arg, err)
				}
				verbosity = level
				continue
			}
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs
	setupLogging(verbosity)

	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Find and execute the command
	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp(rootCmd)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	// Check for help flag on subcommand
	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	return runCommand(cmd, cmdArgs)
}

// runCommand runs cmd, turning a panic into an error for the caller.
func runCommand(cmd *Command, args []string) (err error) {
	defer layouterrors.Recover("starlayout."+cmd.Name, &err)
	return cmd.Run(args)
}

func printHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Commands:")
	for _, sub := range cmd.SubCommands {
		fmt.Fprintf(stdout, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Flags:")
	fmt.Fprintln(stdout, "  -h, --help           Show help for a command")
	fmt.Fprintln(stdout, "  -v, --version        Show version information")
	fmt.Fprintln(stdout, "  --verbose N          Log coordinator steps to stderr (1: cycles, 2: every step)")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Examples:")
	fmt.Fprintln(stdout, "  starlayout run toolbar.yaml              Measure a scenario at each width")
	fmt.Fprintln(stdout, "  starlayout render --width 320 bar.yaml   Draw the arranged layout")
	fmt.Fprintln(stdout, "  starlayout preview toolbar.yaml          Resize interactively")
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
}
