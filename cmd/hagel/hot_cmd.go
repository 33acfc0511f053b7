package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newHotCmd(a *app) *cobra.Command {
	var (
		limit   int
		refresh bool
	)

	cmd := &cobra.Command{
		Use:     "hot",
		Short:   "List the most active threads",
		GroupID: GroupForum,
		Args:    cobra.NoArgs,
		Example: `  hagel hot            # Top threads (default 10)
  hagel hot -n 25 -r   # Top 25, bypass the cache`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}

			listing, err := svc.GetHotThreads(ctx, limit, refresh)
			if err != nil {
				return err
			}
			return a.out.print(listing, func(w io.Writer) error {
				if err := writeThreadTable(w, listing.Items); err != nil {
					return err
				}
				staleNote(w, listing.Stale, listing.FetchedAt)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of threads (default from config, 10)")
	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "Bypass the cache")

	return cmd
}
