// Command pqctl inspects and rewrites list URLs of the console and fetches
// list endpoints from the command line.
//
//	pqctl filters 'https://console/policies?ap_filter=...' --prefix ap_
//	pqctl add-filter "$URL" --column name --op LK --value ali
//	pqctl fetch policies "$URL" --prefix ap_ --quota 100
//
// The backend base URL and token are read from PQCTL_BASE_URL and
// PQCTL_TOKEN, which may be set in a .env file.
package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"

	"github.com/friendsofgo/errors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

const (
	envBaseURL = "PQCTL_BASE_URL"
	envToken   = "PQCTL_TOKEN"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// environment carries what every subcommand needs.
type environment struct {
	stdout  io.Writer
	logger  zerolog.Logger
	baseURL string
	token   string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		envFile string
		verbose bool
	)

	flagSet := pflag.NewFlagSet("pqctl", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&envFile, "env-file", ".env", "load environment variables from this file if it exists")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log requests to stderr")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(stderr, flagSet)
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help || flagSet.NArg() == 0 {
		printHelp(stderr, flagSet)
		return nil
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "load %s", envFile)
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) { w.Out = stderr })).
		Level(level).
		With().Timestamp().Logger()

	env := &environment{
		stdout:  stdout,
		logger:  logger,
		baseURL: os.Getenv(envBaseURL),
		token:   os.Getenv(envToken),
	}

	name := flagSet.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		return errors.Errorf("unknown command %q (see pqctl --help)", name)
	}

	cmdFlags := pflag.NewFlagSet("pqctl "+name, pflag.ContinueOnError)
	cmdFlags.SetOutput(stderr)
	opts := cmd.flags(cmdFlags)

	if err := cmdFlags.Parse(flagSet.Args()[1:]); err != nil {
		if err == pflag.ErrHelp {
			fmt.Fprintf(stderr, "Usage:\n  pqctl %s %s\n\nFlags:\n", name, cmd.usage)
			cmdFlags.PrintDefaults()
			return nil
		}
		return err
	}

	if cmdFlags.NArg() < cmd.minArgs {
		return errors.Errorf("usage: pqctl %s %s", name, cmd.usage)
	}

	logger.Debug().Str("command", name).Strs("args", cmdFlags.Args()).Msg("running")
	return cmd.run(ctx, env, opts, cmdFlags.Args())
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `pqctl inspects and rewrites list URLs and fetches list endpoints.

Usage:
  pqctl [flags] <command> [command flags] [args]

Commands:
`)
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-13s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, `
Environment:
  %s   backend base URL used by fetch and delete
  %s      bearer token sent to the backend

Flags:
`, envBaseURL, envToken)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
