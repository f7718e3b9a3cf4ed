package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/tle-generator/core"
	"github.com/signalsfoundry/tle-generator/internal/logging"
	"github.com/signalsfoundry/tle-generator/internal/sink"
	"github.com/signalsfoundry/tle-generator/model"
)

func newVerifyCmd(a *app) *cobra.Command {
	var step time.Duration
	cmd := &cobra.Command{
		Use:   "verify <TLEs_file>",
		Short: "Check the layout of a TLE file and propagate every element set over one orbit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, log := logging.WithRunLogger(cmd.Context(), a.log)
			batch, err := verifyFile(ctx, args[0], step, log)
			if err != nil {
				log.Error(ctx, "verification failed", logging.Err(err), logging.String("path", args[0]))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d element sets OK (%s)\n", args[0], batch.Len(), batch.SystemName)
			return nil
		},
	}
	cmd.Flags().DurationVar(&step, "step", core.DefaultVerifyStep, "propagation step")
	return cmd
}

func verifyFile(ctx context.Context, path string, step time.Duration, log logging.Logger) (*model.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open element sets: %w", err)
	}
	defer f.Close()

	batch, err := sink.Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := core.NewVerifier(step, log).VerifyBatch(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}
