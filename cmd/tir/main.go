package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benbjohnson/tir"
	"github.com/benbjohnson/tir/tirfile"
)

func main() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// Exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // verification failed
	ExitCommandError = 2 // invalid input or evaluation error
)

// ExitError is an error carrying a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// exitCode returns the exit code for err. Errors without an explicit code
// are command errors.
func exitCode(err error) int {
	var e *ExitError
	if errors.As(err, &e) {
		return e.Code
	}
	return ExitCommandError
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"
}

// ValidFormats lists the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand returns the root command of the tir CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tir",
		Short: "Evaluate and verify typed IR programs",
		Long: `tir executes IR programs, computes weakest preconditions and
verification conditions, and discharges them with Z3.

Programs are YAML documents; see the tirfile package for the encoding.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			log.SetFlags(0)
			if opts.Verbose {
				log.SetOutput(cmd.ErrOrStderr())
			} else {
				log.SetOutput(io.Discard)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log executed statements")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewCallCommand(opts))
	cmd.AddCommand(NewWPCommand(opts))
	cmd.AddCommand(NewVCCommand(opts))
	cmd.AddCommand(NewProveCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// loadFunction reads the program at path and returns the named function.
// If name is blank, the program must contain exactly one function.
func loadFunction(path, name string) (*tir.Function, error) {
	prog, err := tirfile.ReadProgramFile(path)
	if err != nil {
		return nil, err
	}

	if name != "" {
		return prog.Lookup(name)
	} else if len(prog.Functions) != 1 {
		return nil, fmt.Errorf("program has %d functions: --func required", len(prog.Functions))
	}
	return prog.Functions[0], nil
}

// parseArg parses a "name=value" argument. The value is a YAML expression
// that must be a literal; untyped literals take the declared type of the
// parameter with the same name.
func parseArg(fn *tir.Function, s string) (string, *tir.ConstantExpr, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid argument %q: expected name=value", s)
	}

	typ := tirfile.DefaultType
	for _, p := range fn.Params {
		if p.Name == name && p.Type.IsInteger() {
			typ = p.Type
		}
	}

	c, err := parseLiteral(value, typ)
	if err != nil {
		return "", nil, fmt.Errorf("argument %s: %w", name, err)
	}
	return name, c, nil
}

// parseLiteral parses a YAML literal such as "5" or "{u8: 3}".
func parseLiteral(s string, typ tir.Type) (*tir.ConstantExpr, error) {
	expr, err := tirfile.ParseExpr([]byte(s), typ)
	if err != nil {
		return nil, err
	}
	c, ok := expr.(*tir.ConstantExpr)
	if !ok {
		return nil, fmt.Errorf("%s is not a literal", expr)
	}
	return c, nil
}
