package main

import (
	"github.com/spf13/cobra"

	"github.com/benbjohnson/tir"
	"github.com/benbjohnson/tir/tirfile"
)

// WPOptions holds flags for the wp command.
type WPOptions struct {
	*RootOptions
	Func string
	Post string
}

// NewWPCommand returns the wp command.
func NewWPCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WPOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "wp <program.yaml>",
		Short: "Print the weakest precondition of a function body",
		Long: `Print the weakest precondition of a function body with respect to a
postcondition. The function's ensures clause is used unless --post is set.

Example:
  tir wp max.yaml --post '{isge: [r, a]}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWP(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Func, "func", "", "function name")
	cmd.Flags().StringVar(&opts.Post, "post", "", "postcondition as a YAML assertion")

	return cmd
}

func runWP(cmd *cobra.Command, opts *WPOptions, path string) error {
	fn, err := loadFunction(path, opts.Func)
	if err != nil {
		return err
	}

	post := fn.Postcondition()
	if opts.Post != "" {
		if post, err = tirfile.ParseAssertion([]byte(opts.Post), literalType(fn)); err != nil {
			return err
		}
	}

	body := fn.Body
	if body == nil {
		body = tir.Skip()
	}

	a := tir.WP(body, post)
	out := &Output{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Write("ok", a.String(), a.String())
}

// literalType returns the type of untyped literals in command-line
// assertions for fn.
func literalType(fn *tir.Function) tir.Type {
	if fn.Result.Type.IsInteger() {
		return fn.Result.Type
	}
	return tirfile.DefaultType
}
