package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ashwinyue/next-label/internal/errs"
)

var distributionShapes = []string{"category", "span", "relation"}

func (o *Options) fetch(cmd *cobra.Command, path string) error {
	if err := o.requireProject(); err != nil {
		return err
	}
	data, err := o.transport().Do(cmd.Context(), http.MethodGet, fmt.Sprintf("/projects/%d%s", o.Project, path), nil)
	if err != nil {
		return err
	}
	v, err := decodeJSON(data)
	if err != nil {
		return err
	}
	return o.render(v)
}

func progressCommand(opts *Options) *cobra.Command {
	var mine bool
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show annotation progress of project members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mine {
				return opts.fetch(cmd, "/metrics/my-progress")
			}
			return opts.fetch(cmd, "/metrics/member-progress")
		},
	}
	cmd.Flags().BoolVar(&mine, "me", false, "Only show progress of the current user")
	return cmd
}

func distributionCommand(opts *Options) *cobra.Command {
	var shape string
	cmd := &cobra.Command{
		Use:   "distribution",
		Short: "Show per-user label distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range distributionShapes {
				if s == shape {
					return opts.fetch(cmd, "/metrics/"+shape+"-distribution")
				}
			}
			return errs.InvalidArgument("unknown shape %q, want one of %v", shape, distributionShapes)
		},
	}
	cmd.Flags().StringVar(&shape, "shape", "category", fmt.Sprintf("Distribution shape, one of %v", distributionShapes))
	return cmd
}
