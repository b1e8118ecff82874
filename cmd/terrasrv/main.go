// Command terrasrv runs the Terraria-compatible session server, and
// converts vanilla world files into the server's internal world format.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/duskvault/terrasrv/internal/config"
	"github.com/duskvault/terrasrv/internal/logging"
	"github.com/duskvault/terrasrv/internal/session"
	"github.com/duskvault/terrasrv/internal/world"
	"github.com/duskvault/terrasrv/internal/worldfile"
)

// Exit codes, per the documented CLI contract.
const (
	exitOK           = 0
	exitConfigError  = 1
	exitWorldError   = 2
	exitBindError    = 3
	exitRuntimeError = 4
)

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		if code, ok := err.(exitCoder); ok {
			return code.ExitCode()
		}
		return exitConfigError
	}
	return exitOK
}

// exitCoder lets a subcommand hand back a specific exit code instead of the
// generic config-error default cobra falls through to on any returned error.
type exitCoder interface {
	error
	ExitCode() int
}

type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) ExitCode() int { return e.code }
func (e *codedError) Unwrap() error { return e.err }

func fail(code int, err error) error {
	return &codedError{code: code, err: err}
}

func newRootCommand() *cobra.Command {
	var configPath, worldPath string
	var port uint16

	// Running the bare binary serves; the serve subcommand is the explicit
	// spelling of the same thing.
	root := &cobra.Command{
		Use:           "terrasrv",
		Short:         "A Terraria-protocol-compatible session server",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, worldPath, port)
		},
	}
	root.Flags().StringVar(&configPath, "config", "./config.yml", "path to the YAML config file")
	root.Flags().StringVar(&worldPath, "world", "", "path to the internal-format world file (overrides config)")
	root.Flags().Uint16Var(&port, "port", 0, "TCP port to bind (overrides config)")
	root.AddCommand(newServeCommand(), newConvertCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var configPath, worldPath string
	var port uint16

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the session server against a loaded world",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, worldPath, port)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "./config.yml", "path to the YAML config file")
	cmd.Flags().StringVar(&worldPath, "world", "", "path to the internal-format world file (overrides config)")
	cmd.Flags().Uint16Var(&port, "port", 0, "TCP port to bind (overrides config)")
	return cmd
}

func runServe(configPath, worldPath string, port uint16) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fail(exitConfigError, err)
	}
	if worldPath != "" {
		cfg.World = worldPath
	}
	if port != 0 {
		cfg.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return fail(exitConfigError, err)
	}

	logger, err := logging.New()
	if err != nil {
		return fail(exitConfigError, fmt.Errorf("build logger: %w", err))
	}
	defer logger.Sync()

	f, err := os.Open(cfg.World)
	if err != nil {
		return fail(exitWorldError, fmt.Errorf("open world %s: %w", cfg.World, err))
	}
	defer f.Close()

	w, err := worldfile.Read(f)
	if err != nil {
		return fail(exitWorldError, fmt.Errorf("load world %s: %w", cfg.World, err))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Addr, cfg.Port)
	listener := session.NewListener(addr, w, logger)
	if err := listener.Serve(); err != nil {
		return fail(exitBindErrorOrRuntime(err), err)
	}
	return nil
}

// exitBindErrorOrRuntime distinguishes a bind failure, which always occurs
// before Serve's accept loop ever starts, from a later runtime failure.
// Serve wraps both the same way, so this inspects the message it produced.
func exitBindErrorOrRuntime(err error) int {
	const bindPrefix = "bind "
	if len(err.Error()) >= len(bindPrefix) && err.Error()[:len(bindPrefix)] == bindPrefix {
		return exitBindError
	}
	return exitRuntimeError
}

func newConvertCommand() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a vanilla world file into the internal world format",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(input, output)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "path to the vanilla .wld file")
	cmd.Flags().StringVar(&output, "output", "", "path to write the internal-format world file")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
	return cmd
}

func runConvert(input, output string) error {
	in, err := os.Open(input)
	if err != nil {
		return fail(exitWorldError, fmt.Errorf("open %s: %w", input, err))
	}
	defer in.Close()

	w, err := world.ReadVanillaWorld(in)
	if err != nil {
		return fail(exitWorldError, fmt.Errorf("decode %s: %w", input, err))
	}

	out, err := os.Create(output)
	if err != nil {
		return fail(exitWorldError, fmt.Errorf("create %s: %w", output, err))
	}
	defer out.Close()

	if err := worldfile.Write(out, w); err != nil {
		return fail(exitWorldError, fmt.Errorf("write %s: %w", output, err))
	}

	fmt.Printf("converted %s -> %s\n", input, output)
	return nil
}
