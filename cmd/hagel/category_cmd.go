package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/t0bias84/hagelskott/forum"
)

func newCategoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Short:   "Show and manage a single category",
		Aliases: []string{"cat"},
		GroupID: GroupForum,
		Long: `Show, create, update or delete a category.

Changes require a token with moderator rights (see "hagel login").
Any change clears the cached category listing.`,
		Example: `  hagel category get 42
  hagel category create --name "Jakt" --parent 3
  hagel category update 42 --description "Allt om jakt"
  hagel category delete 42`,
	}

	cmd.AddCommand(newCategoryGetCmd(a))
	cmd.AddCommand(newCategoryCreateCmd(a))
	cmd.AddCommand(newCategoryUpdateCmd(a))
	cmd.AddCommand(newCategoryDeleteCmd(a))

	return cmd
}

func newCategoryGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}
			c, err := svc.GetCategory(ctx, forum.ID(args[0]))
			if err != nil {
				return err
			}
			return a.out.print(c, func(w io.Writer) error { return writeCategory(w, c) })
		},
	}
}

// categoryFlags holds the editable fields shared by create and update.
type categoryFlags struct {
	name        string
	description string
	parent      string
	lang        string
}

func (f *categoryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Category name")
	cmd.Flags().StringVar(&f.description, "description", "", "Category description")
	cmd.Flags().StringVar(&f.parent, "parent", "", "Parent category ID (empty for a root category)")
	cmd.Flags().StringVar(&f.lang, "lang", "", "Category language")
}

// apply copies the flags the user set onto in.
func (f *categoryFlags) apply(cmd *cobra.Command, in *forum.CategoryInput) {
	if cmd.Flags().Changed("name") {
		in.Name = f.name
	}
	if cmd.Flags().Changed("description") {
		in.Description = f.description
	}
	if cmd.Flags().Changed("parent") {
		in.ParentID = nil
		if f.parent != "" {
			in.ParentID = forum.ID(f.parent).Ptr()
		}
	}
	if cmd.Flags().Changed("lang") {
		in.Language = f.lang
	}
}

func newCategoryCreateCmd(a *app) *cobra.Command {
	var flags categoryFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}

			var in forum.CategoryInput
			flags.apply(cmd, &in)
			c, err := svc.CreateCategory(ctx, in)
			if err != nil {
				return err
			}
			return printChanged(a, c, "Created category %q\n", in.Name)
		},
	}
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newCategoryUpdateCmd(a *app) *cobra.Command {
	var flags categoryFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Long:  `Update a category. Fields without a flag keep their current value.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}

			id := forum.ID(args[0])
			current, err := svc.GetCategory(ctx, id)
			if err != nil {
				return fmt.Errorf("load category %s: %w", id, err)
			}
			in := forum.CategoryInput{
				Name:        current.Name,
				Description: current.Description,
				ParentID:    current.ParentID,
				Language:    current.Language,
			}
			flags.apply(cmd, &in)

			c, err := svc.UpdateCategory(ctx, id, in)
			if err != nil {
				return err
			}
			return printChanged(a, c, "Updated category %q\n", in.Name)
		},
	}
	flags.register(cmd)

	return cmd
}

func newCategoryDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a category",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}
			id := forum.ID(args[0])
			if err := svc.DeleteCategory(ctx, id); err != nil {
				return err
			}
			result := map[string]any{"deleted": id}
			return a.out.print(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted category %s\n", id)
				return err
			})
		},
	}
}

// printChanged prints the returned category, or a confirmation line when
// the server answered without a body.
func printChanged(a *app, c *forum.Category, format, name string) error {
	return a.out.print(c, func(w io.Writer) error {
		if c == nil {
			_, err := fmt.Fprintf(w, format, name)
			return err
		}
		return writeCategory(w, c)
	})
}
