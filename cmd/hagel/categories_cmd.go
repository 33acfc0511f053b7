package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newCategoriesCmd(a *app) *cobra.Command {
	var (
		lang    string
		refresh bool
		tree    bool
	)

	cmd := &cobra.Command{
		Use:     "categories",
		Short:   "List forum categories",
		Aliases: []string{"cats"},
		GroupID: GroupForum,
		Args:    cobra.NoArgs,
		Example: `  hagel categories               # Flat list with thread and post counts
  hagel categories --tree        # Nested by parent
  hagel categories --lang en -r  # English names, bypass the cache`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}

			if tree {
				listing, err := svc.GetCategoryTree(ctx, lang, refresh)
				if err != nil {
					return err
				}
				return a.out.print(listing, func(w io.Writer) error {
					if err := writeTree(w, listing.Items); err != nil {
						return err
					}
					staleNote(w, listing.Stale, listing.FetchedAt)
					return nil
				})
			}

			listing, err := svc.GetCategories(ctx, lang, refresh)
			if err != nil {
				return err
			}
			return a.out.print(listing, func(w io.Writer) error {
				if err := writeCategoryTable(w, listing.Items); err != nil {
					return err
				}
				staleNote(w, listing.Stale, listing.FetchedAt)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Category language (default from config, sv)")
	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "Bypass the cache")
	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "Show categories nested under their parents")

	return cmd
}
