package main

import (
	"github.com/spf13/cobra"

	"github.com/benbjohnson/tir"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Func            string
	Args            []string
	MaxSteps        int
	CheckInvariants bool
}

// NewExecCommand returns the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <program.yaml>",
		Short: "Execute a function body and print the final store",
		Long: `Execute a function body against a store built from --arg values and
print every binding of the resulting store.

Example:
  tir exec sum.yaml --arg n=10 --max-steps 10000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Func, "func", "", "function to execute")
	cmd.Flags().StringArrayVar(&opts.Args, "arg", nil, "argument binding as name=value (repeatable)")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "maximum number of executed statements (0 is unlimited)")
	cmd.Flags().BoolVar(&opts.CheckInvariants, "check-invariants", false, "check loop invariants during execution")

	return cmd
}

func runExec(cmd *cobra.Command, opts *ExecOptions, path string) error {
	fn, err := loadFunction(path, opts.Func)
	if err != nil {
		return err
	}

	store := tir.NewStore()
	for _, arg := range opts.Args {
		name, value, err := parseArg(fn, arg)
		if err != nil {
			return err
		}
		store = store.Set(name, value)
	}

	e := tir.NewExecutor()
	e.MaxSteps = opts.MaxSteps
	e.CheckInvariants = opts.CheckInvariants

	if fn.Body != nil {
		if store, err = e.Execute(cmd.Context(), store, fn.Body); err != nil {
			return err
		}
	}

	out := &Output{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Store("ok", store)
}
