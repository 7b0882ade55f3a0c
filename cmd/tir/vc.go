package main

import (
	"github.com/spf13/cobra"
)

// VCOptions holds flags for the vc command.
type VCOptions struct {
	*RootOptions
	Func string
}

// NewVCCommand returns the vc command.
func NewVCCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VCOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "vc <program.yaml>",
		Short: "Print the verification condition of a function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := loadFunction(args[0], opts.Func)
			if err != nil {
				return err
			}

			vc := fn.VC().String()
			out := &Output{Format: opts.Format, Writer: cmd.OutOrStdout()}
			return out.Write("ok", vc, vc)
		},
	}

	cmd.Flags().StringVar(&opts.Func, "func", "", "function name")

	return cmd
}
