package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/store"
)

// CheckResult is printed by the check command.
type CheckResult struct {
	OK         bool     `json:"ok"`
	Violations []string `json:"violations,omitempty"`
}

func (r CheckResult) String() string {
	if r.OK {
		return "all sibling positions are contiguous"
	}
	return fmt.Sprintf("%d sibling sets are not contiguous:\n  %s", len(r.Violations), strings.Join(r.Violations, "\n  "))
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that every sibling set is numbered 0..n-1",
		Long: `Verify that the positions of every sibling set, including sub-gallery
and variant sets, run from 0 to n-1 without gaps or duplicates.

Exits with status 1 when any set is broken.

Example:
  catalog check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd)
		},
	}
}

func runCheck(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var violations []*reorder.Violation
	err = s.read(cmd, func(ctx context.Context, tx *store.Tx) error {
		var err error
		violations, err = reorder.VerifyAll(ctx, tx, tx.Registry())
		return err
	})
	if err != nil {
		return s.fail("check failed", err)
	}

	result := CheckResult{OK: len(violations) == 0}
	for _, v := range violations {
		result.Violations = append(result.Violations, v.Error())
	}
	if err := s.formatter.Success(result); err != nil {
		return err
	}
	if !result.OK {
		return NewExitError(ExitFailure, fmt.Sprintf("%d sibling sets are not contiguous", len(violations)))
	}
	return nil
}
