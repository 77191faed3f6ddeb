// Package cli implements the calc command line.
package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/calcapi/pkg/calculator"
)

// NewRootCmd builds the calc command tree writing results to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "calc",
		Short:        "calc adds numbers from the command line",
		SilenceUsage: true,
	}
	cmd.SetOut(out)
	cmd.AddCommand(newSumCmd())
	return cmd
}

// Execute runs the calc command tree with args. Numeric operands are moved
// behind a "--" terminator so that negative numbers such as -5 reach the
// command as arguments instead of being parsed as shorthand flags.
func Execute(out, errOut io.Writer, args []string) error {
	cmd := NewRootCmd(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(operandsLast(args))
	return cmd.Execute()
}

// operandsLast keeps flags and subcommand names in order and places every
// numeric argument after "--". Args that already carry a "--" are left alone.
func operandsLast(args []string) []string {
	var flags, operands []string
	for _, a := range args {
		if a == "--" {
			return args
		}
		if _, err := strconv.ParseFloat(a, 64); err == nil {
			operands = append(operands, a)
			continue
		}
		flags = append(flags, a)
	}
	if len(operands) == 0 {
		return args
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, flags...)
	out = append(out, "--")
	return append(out, operands...)
}

func newSumCmd() *cobra.Command {
	var float bool

	cmd := &cobra.Command{
		Use:   "sum A B",
		Short: "Print A + B",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if float {
				a, b, err := parsePair(args, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(calculator.Sum(a, b), 'g', -1, 64))
				return nil
			}
			a, b, err := parsePair(args, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), calculator.Sum(a, b))
			return nil
		},
	}

	cmd.Flags().BoolVar(&float, "float", false, "treat operands as floating point numbers")
	return cmd
}

func parsePair[T calculator.Number](args []string, parse func(string) (T, error)) (T, T, error) {
	a, err := parse(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("operand A %q: %w", args[0], err)
	}
	b, err := parse(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("operand B %q: %w", args[1], err)
	}
	return a, b, nil
}
