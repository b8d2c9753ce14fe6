package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"epidash/domain/cases"
	"epidash/internal/config"
	"epidash/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// selectionFlags are the facet flags shared by the query commands
type selectionFlags struct {
	region string
	year   string
	saved  bool
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.region, "region", "", "Only include records from this region")
	cmd.Flags().StringVar(&f.year, "year", "", "Only include records from this year")
	cmd.Flags().BoolVar(&f.saved, "saved", false, "Start from the saved selection before applying flags")
}

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "epidash-cli",
		Short:         "Query and export the TB cases dashboard from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newFacetsCmd(),
		newViewsCmd(),
		newExportCmd(),
		newStateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap builds the container and loads the dataset. A failed load is
// reported on stderr and the commands continue over the empty dataset.
func bootstrap(ctx context.Context, flags *selectionFlags) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := prepare(ctx, c, flags); err != nil {
		return nil, release(ctx, c, err)
	}
	return c, nil
}

// release shuts down a container that failed to start and returns the cause
func release(ctx context.Context, c *container.Container, cause error) error {
	if err := c.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	return cause
}

// prepare initializes the container, loads the dataset and applies the
// selection flags. The caller releases the container on error.
func prepare(ctx context.Context, c *container.Container, flags *selectionFlags) error {
	if err := c.Init(ctx); err != nil {
		return err
	}

	loadCtx, cancel := context.WithTimeout(ctx, c.Config.Data.Timeout)
	defer cancel()
	if err := c.Store.Load(loadCtx, c.Source); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	if flags == nil {
		return nil
	}
	if flags.saved {
		c.Dashboard.Restore(ctx)
	}
	if flags.region != "" {
		if _, err := c.Dashboard.SetFilter(string(cases.FacetRegion), flags.region); err != nil {
			return err
		}
	}
	if flags.year != "" {
		if _, err := c.Dashboard.SetFilter(string(cases.FacetYear), flags.year); err != nil {
			return err
		}
	}
	return nil
}

func newFacetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List the distinct regions and years",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())
			return writeJSON(cmd.OutOrStdout(), c.Dashboard.Facets())
		},
	}
}

func newViewsCmd() *cobra.Command {
	var flags selectionFlags
	var view string

	cmd := &cobra.Command{
		Use:   "views",
		Short: "Print the dashboard views for a selection",
		Long: `Print every view, or a single one with --view, for the records matching
the given region and year.

Example: epidash-cli views --region Africa --year 2020 --view timeline`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap(cmd.Context(), &flags)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			if view == "" {
				return writeJSON(cmd.OutOrStdout(), c.Dashboard.Current())
			}
			out, err := c.Dashboard.View(view)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&view, "view", "", "Single view: sunburst|treemap|network|timeline|map")
	return cmd
}

func newExportCmd() *cobra.Command {
	var flags selectionFlags
	var output string

	cmd := &cobra.Command{
		Use:   "export [timeline|map|report]",
		Short: "Render a view to SVG, GeoJSON or an HTML report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap(cmd.Context(), &flags)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			renderer, err := c.Renderers.Get(args[0])
			if err != nil {
				return fmt.Errorf("unknown export %q (choose from %v)", args[0], c.Renderers.Names())
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			return renderer.Render(cmd.Context(), c.Dashboard.Current().Views, w)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or save the persisted selection",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap(cmd.Context(), &selectionFlags{saved: true})
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())
			return writeJSON(cmd.OutOrStdout(), c.Dashboard.Selection())
		},
	})

	var flags selectionFlags
	save := &cobra.Command{
		Use:   "save",
		Short: "Save a selection built from the flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap(cmd.Context(), &flags)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			receipt, err := c.Dashboard.Save(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), receipt)
		},
	}
	flags.register(save)
	cmd.AddCommand(save)

	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
