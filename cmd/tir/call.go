package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benbjohnson/tir"
	"github.com/benbjohnson/tir/abi"
	"github.com/benbjohnson/tir/tirfile"
)

// CallOptions holds flags for the call command.
type CallOptions struct {
	*RootOptions
	MaxSteps int
}

// NewCallCommand returns the call command.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <program.yaml> <func> [args...]",
		Short: "Link a program and invoke a function by name",
		Long: `Link a program through the interpreter backend and invoke a function
with positional arguments, printing its result.

Flags must precede the program file; everything after it is read as
arguments, so negative values need no escaping.

Example:
  tir call max.yaml max 3 -4
  tir call --max-steps 100 --format json max.yaml max -7 -2`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, args[0], args[1], args[2:])
		},
	}

	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "maximum number of executed statements (0 is unlimited)")
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func runCall(cmd *cobra.Command, opts *CallOptions, path, name string, args []string) error {
	prog, err := tirfile.ReadProgramFile(path)
	if err != nil {
		return err
	}

	linker := abi.NewInterpreter()
	linker.Executor.MaxSteps = opts.MaxSteps

	lib, err := linker.Link(cmd.Context(), prog)
	if err != nil {
		return err
	}
	defer lib.Close()

	sig, err := lib.Signature(name)
	if err != nil {
		return err
	} else if len(args) != len(sig.Params) {
		return fmt.Errorf("%s: %w: got %d, expected %d", sig, tir.ErrArgumentCount, len(args), len(sig.Params))
	}

	values := make([]abi.Value, len(args))
	for i, arg := range args {
		c, err := parseLiteral(arg, sig.Params[i])
		if err != nil {
			return fmt.Errorf("arg #%d: %w", i, err)
		}
		values[i] = abi.FromConstant(c)
	}

	result, err := lib.Call(cmd.Context(), name, values...)
	if err != nil {
		return err
	}

	c, err := result.Constant()
	if err != nil {
		return err
	}
	out := &Output{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Write("ok", c.String(), valueJSON(c))
}
