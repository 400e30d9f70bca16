package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/arithmetic-dispatcher/domain/arithmetic"
	"github.com/example/arithmetic-dispatcher/modules/calculator"
	"github.com/spf13/cobra"
)

// errFailedOutcome signals that the failure was already written to stderr.
var errFailedOutcome = errors.New("calculation failed")

type computeOptions struct {
	remote   string
	clientID string
	timeout  time.Duration
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "arithctl",
		Short:         "Evaluate basic arithmetic operations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newComputeCmd(), newOperationsCmd())
	return root
}

func newComputeCmd() *cobra.Command {
	opts := computeOptions{}

	cmd := &cobra.Command{
		Use:   "compute A B OPERATION",
		Short: "Apply OPERATION to A and B",
		Long: `Apply OPERATION to the operands A and B.

OPERATION is one of addition, subtraction, multiplication or division
(aliases: suma, resta, multiplicacion). Division by zero and unknown
operations are reported on stderr with exit status 1.`,
		Example: `  arithctl compute 10 5 addition
  arithctl compute 10 5 suma
  arithctl compute 7 2 division --remote nats://localhost:4222`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.remote, "remote", "", "NATS URL of a running server; evaluate locally when empty")
	cmd.Flags().StringVar(&opts.clientID, "client-id", "arithctl", "client ID sent in the X-Client-ID header")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "request timeout for --remote")
	return cmd
}

func runCompute(cmd *cobra.Command, args []string, opts computeOptions) error {
	a, err := parseOperand("A", args[0])
	if err != nil {
		return err
	}
	b, err := parseOperand("B", args[1])
	if err != nil {
		return err
	}
	label := args[2]

	var resp *calculator.CalculateResponse
	if opts.remote != "" {
		resp, err = computeRemote(cmd.Context(), opts, &calculator.CalculateRequest{Operation: label, A: a, B: b})
		if err != nil {
			return err
		}
	} else {
		resp = computeLocal(a, b, label)
	}

	if !resp.OK {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", resp.Error)
		return errFailedOutcome
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
	return nil
}

func computeLocal(a, b float64, label string) *calculator.CalculateResponse {
	outcome := arithmetic.Dispatch(a, b, label)
	resp := &calculator.CalculateResponse{
		Operation: label,
		OK:        outcome.OK(),
		Text:      outcome.String(),
	}
	if !outcome.OK() {
		resp.Error = outcome.Kind().String()
		resp.ErrorKind = outcome.Kind().Code()
	}
	return resp
}

func parseOperand(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("operand %s: %q is not a number", name, s)
	}
	return v, nil
}

func newOperationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "List supported operations",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			for _, op := range arithmetic.Operations() {
				line := fmt.Sprintf("%-15s %s", op.String(), op.Symbol())
				if aliases := arithmetic.Aliases(op); len(aliases) > 0 {
					line += "  (" + strings.Join(aliases, ", ") + ")"
				}
				fmt.Fprintln(out, line)
			}
		},
	}
}
