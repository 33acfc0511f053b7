package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/t0bias84/hagelskott/auth"
	"github.com/t0bias84/hagelskott/health"
)

// tokenChecker reports whether a usable token is configured.
func tokenChecker(a *app) health.Checker {
	return health.NewCheckerFunc("token", func(ctx context.Context) health.Result {
		tok, err := auth.Chain{auth.StaticToken(a.cfg.Token), a.tokens}.Token(ctx)
		switch {
		case err != nil:
			return health.Unhealthy("token unreadable", err)
		case tok == "":
			return health.Healthy("not logged in")
		}

		claims, err := auth.Inspect(tok)
		if err != nil {
			return health.Healthy("opaque token")
		}
		now := time.Now()
		if claims.Expired(now) {
			return health.Degraded("token expired, log in again")
		}
		r := health.Healthy("logged in")
		if claims.Username != "" {
			r = r.WithDetail("user", claims.Username)
		}
		if !claims.ExpiresAt.IsZero() {
			r = r.WithDetail("expires_in", claims.Remaining(now).Round(time.Second).String())
		}
		return r
	})
}

func newStatusCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Check the API, the cache and the stored token",
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.Client(ctx)
			if err != nil {
				return err
			}
			loader, err := a.Loader(ctx)
			if err != nil {
				return err
			}

			agg := health.NewAggregator(health.AggregatorConfig{Timeout: timeout})
			for _, c := range []health.Checker{
				health.NewUpstreamChecker(client, health.UpstreamConfig{}),
				health.NewCacheChecker(loader, health.CacheConfig{}),
				tokenChecker(a),
			} {
				if err := agg.Register(c); err != nil {
					return err
				}
			}

			report := agg.Run(ctx)
			if err := a.out.print(report, func(w io.Writer) error { return writeReport(w, report) }); err != nil {
				return err
			}
			if report.Status == health.StatusUnhealthy {
				return fmt.Errorf("status: %s", report.Status)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Time limit for all checks")

	return cmd
}
