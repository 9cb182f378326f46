package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blogo/internal/casefile"
)

// checkCmd compiles a case file's evidence and reports diagnostics.
var checkCmd = &cobra.Command{
	Use:   "check <case.yaml>",
	Short: "Type-check and compile a case file's evidence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, ev, err := casefile.Load(args[0])
		if err != nil {
			return err
		}

		if !ev.CheckTypesAndScope(m) {
			logger.Error("type/scope check failed", zap.String("case", args[0]))
			return fmt.Errorf("check: evidence has type or scope errors")
		}

		errs, err := ev.Compile()
		if err != nil {
			logger.Error("compile aborted", zap.Error(err))
			return err
		}
		if errs > 0 {
			logger.Error("compile finished with errors", zap.Int("errors", errs))
			return fmt.Errorf("check: %d compile error(s)", errs)
		}

		logger.Info("evidence compiled",
			zap.String("case", args[0]),
			zap.Int("observed_vars", len(ev.Vars())),
			zap.Int("skolem_constants", len(ev.SkolemConstants())))
		ev.Print(os.Stdout)
		return nil
	},
}
