package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/t0bias84/hagelskott/apiclient"
)

// Command group IDs for organizing help output.
const (
	GroupForum   = "forum"
	GroupAccount = "account"
	GroupUtility = "utility"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	tokenFile  string
	output     string
	verbose    bool
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root, a := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(stderr, "hagel:", apiclient.Message(err))
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *app) {
	a := &app{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "hagel",
		Short: "Terminal client for the Hagelskott forum",
		Long: `hagel talks to the Hagelskott forum API.

Listings are cached (categories for 5 minutes, hot threads for 2 minutes).
When the server cannot be reached, the last cached listing is shown and
marked as stale.`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2,
		Version:                    versionString(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return a.init(cmd.Context())
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("{{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "Config file (default <config dir>/hagel/config.toml)")
	flags.StringVar(&a.opts.tokenFile, "token-file", "", "Token file (default <config dir>/hagel/token)")
	flags.StringVarP(&a.opts.output, "output", "o", "", "Output format: text, json or yaml (default text on a terminal, json otherwise)")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "Log requests and cache activity to stderr")

	cmd.AddGroup(
		&cobra.Group{ID: GroupForum, Title: "Forum Commands:"},
		&cobra.Group{ID: GroupAccount, Title: "Account Commands:"},
		&cobra.Group{ID: GroupUtility, Title: "Utility Commands:"},
	)

	cmd.AddCommand(newCategoriesCmd(a))
	cmd.AddCommand(newHotCmd(a))
	cmd.AddCommand(newCategoryCmd(a))
	cmd.AddCommand(newSearchCmd(a))
	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newLogoutCmd(a))
	cmd.AddCommand(newStatusCmd(a))

	return cmd, a
}
