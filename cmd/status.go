package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/tablescout/enrich-cli/internal/model"
	"github.com/tablescout/enrich-cli/pkg/airtable"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show enrichment progress",
	Long:  "Counts records per status label plus records with no status set.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := newStore()
		if err != nil {
			return err
		}

		resolver := newResolver(nil)

		count := func(f airtable.Formula) (int, error) {
			records, err := store.List(ctx, airtable.Query{FilterFormula: f})
			if err != nil {
				return 0, err
			}
			return len(records), nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		total := 0

		blank, err := count(airtable.Blank("Status"))
		if err != nil {
			return eris.Wrap(err, "status: count blank")
		}
		fmt.Fprintf(w, "(no status)\t%d\n", blank)
		total += blank

		for _, s := range []model.Status{model.StatusPending, model.StatusEnriched, model.StatusNotFound, model.StatusError} {
			labels := resolver.Labels(s)
			if len(labels) == 0 {
				fmt.Fprintf(w, "%s\t(no matching label)\n", s)
				continue
			}
			n, err := count(airtable.EqFold("Status", labels[0]))
			if err != nil {
				return eris.Wrapf(err, "status: count %s", s)
			}
			fmt.Fprintf(w, "%s\t%d\n", labels[0], n)
			total += n
		}

		fmt.Fprintf(w, "total\t%d\n", total)
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
