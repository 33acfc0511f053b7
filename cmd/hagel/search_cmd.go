package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/t0bias84/hagelskott/forum"
)

// categorySource implements fuzzy.Source over category names.
type categorySource []*forum.Category

func (s categorySource) String(i int) string { return s[i].Name }
func (s categorySource) Len() int            { return len(s) }

// searchHit is one search result with its path from the root.
type searchHit struct {
	ID    forum.ID `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Path  string   `json:"path" yaml:"path"`
	Score int      `json:"score" yaml:"score"`
}

// searchCategories ranks categories by fuzzy name match. Categories whose
// description contains the query but whose name does not match are appended
// after the fuzzy hits.
func searchCategories(roots []*forum.Category, query string, limit int) []searchHit {
	all := forum.Flatten(roots)
	paths := categoryPaths(roots)

	hits := make([]searchHit, 0)
	seen := make(map[*forum.Category]bool)
	for _, m := range fuzzy.FindFrom(query, categorySource(all)) {
		c := all[m.Index]
		seen[c] = true
		hits = append(hits, searchHit{ID: c.ID, Name: c.Name, Path: paths[c], Score: m.Score})
	}
	for _, c := range forum.Search(roots, query) {
		if !seen[c] {
			hits = append(hits, searchHit{ID: c.ID, Name: c.Name, Path: paths[c]})
		}
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// categoryPaths maps every category to its "Root / Child / ..." path.
func categoryPaths(roots []*forum.Category) map[*forum.Category]string {
	paths := make(map[*forum.Category]string)
	stack := make([]*forum.Category, 0, len(roots))
	for _, r := range roots {
		paths[r] = r.Name
		stack = append(stack, r)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range n.Subcategories {
			if _, done := paths[child]; done {
				continue
			}
			paths[child] = paths[n] + " / " + child.Name
			stack = append(stack, child)
		}
	}
	return paths
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		lang  string
		limit int
	)

	cmd := &cobra.Command{
		Use:     "search <query>",
		Short:   "Find categories by name",
		GroupID: GroupForum,
		Args:    cobra.MinimumNArgs(1),
		Example: `  hagel search jkt          # Fuzzy: matches "Jakt"
  hagel search "vapen vård"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}
			listing, err := svc.GetCategoryTree(ctx, lang, false)
			if err != nil {
				return err
			}

			hits := searchCategories(listing.Items, strings.Join(args, " "), limit)
			return a.out.print(hits, func(w io.Writer) error {
				if len(hits) == 0 {
					_, err := fmt.Fprintln(w, "No matching categories")
					return err
				}
				for _, h := range hits {
					fmt.Fprintf(w, "%s  [%s]\n", h.Path, h.ID)
				}
				staleNote(w, listing.Stale, listing.FetchedAt)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Category language")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results (0 for all)")

	return cmd
}
