package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuzutube/gateway/app"
	"github.com/yuzutube/gateway/services/invidious"
)

func newResolveCmd(flags *globalFlags) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "resolve <path> [key=value...]",
		Short: "Fetch one resource through the instance fallback chain",
		Long: "Fetch one resource through the instance fallback chain and print the JSON payload.\n" +
			"path is one of /videos/{id}, /search, /channels/{id} or /playlists/{id}.",
		Example: "  yuzutube resolve /videos/dQw4w9WgXcQ\n" +
			"  yuzutube resolve /search q=lofi --pretty",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}

			cfg, logger, err := bootstrap(cmd, flags)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			deps, err := app.NewDependencies(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			payload, err := deps.Invidious.Resolve(cmd.Context(), args[0], params)
			if err != nil {
				var exhausted *invidious.AllInstancesUnavailableError
				if errors.As(err, &exhausted) {
					for _, failure := range exhausted.Failures {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", failure)
					}
				}
				return err
			}

			if pretty {
				var buf bytes.Buffer
				if err := json.Indent(&buf, payload, "", "  "); err == nil {
					payload = buf.Bytes()
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	return cmd
}

// parseParams turns key=value arguments into query parameters.
func parseParams(args []string) (map[string]string, error) {
	params := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", arg)
		}
		params[key] = value
	}
	return params, nil
}
