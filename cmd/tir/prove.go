package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/benbjohnson/tir/z3"
)

// ProveOptions holds flags for the prove command.
type ProveOptions struct {
	*RootOptions
	Func    string
	Timeout time.Duration
	SMT     bool
}

// ErrInvalid is returned by the prove command when a verification
// condition does not hold.
var ErrInvalid = errors.New("verification condition does not hold")

// NewProveCommand returns the prove command.
func NewProveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "prove <program.yaml>",
		Short: "Prove the verification condition of a function",
		Long: `Prove the verification condition of a function with Z3. Prints "valid"
or a counterexample store. Exits with status 1 if the condition does not hold.

Example:
  tir prove max.yaml --timeout 10s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProve(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Func, "func", "", "function name")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "solver timeout (0 is unlimited)")
	cmd.Flags().BoolVar(&opts.SMT, "smt", false, "print the negated condition as SMT-LIB instead of solving")

	return cmd
}

func runProve(cmd *cobra.Command, opts *ProveOptions, path string) error {
	fn, err := loadFunction(path, opts.Func)
	if err != nil {
		return err
	}

	s := z3.NewSolver()
	defer s.Close()
	s.SetTimeout(opts.Timeout)

	out := &Output{Format: opts.Format, Writer: cmd.OutOrStdout()}

	if opts.SMT {
		formula, err := s.Formula(fn.Decls(), fn.VC())
		if err != nil {
			return err
		}
		return out.Write("ok", formula, formula)
	}

	valid, counterexample, err := s.Prove(fn.Decls(), fn.VC())
	if err != nil {
		return err
	} else if valid {
		return out.Write("ok", "valid", "valid")
	}

	if err := out.Store("invalid", counterexample); err != nil {
		return err
	}
	return &ExitError{Code: ExitFailure, Err: fmt.Errorf("%s: %w", fn.Name, ErrInvalid)}
}
