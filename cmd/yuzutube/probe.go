package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuzutube/gateway/app"
)

var errNoHealthyInstance = errors.New("no instance is reachable")

func newProbeCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check which configured instances are reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(cmd, flags)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			deps, err := app.NewDependencies(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			results, healthy := deps.Catalog.Probe(cmd.Context())

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "INSTANCE\tHEALTHY\tSTATUS\tLATENCY\tERROR")
				for _, r := range results {
					fmt.Fprintf(tw, "%s\t%t\t%d\t%s\t%s\n",
						r.Instance, r.Healthy, r.StatusCode, r.Latency.Round(time.Millisecond), r.Error)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}

			if !healthy {
				return errNoHealthyInstance
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}
