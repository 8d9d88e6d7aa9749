package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mycok/linkrank/authority"
	"github.com/mycok/linkrank/extractor"
	"github.com/mycok/linkrank/linkgraph/graph"
	"github.com/mycok/linkrank/resolver"
	"github.com/mycok/linkrank/service"
	"github.com/mycok/linkrank/service/recompute"
	"github.com/mycok/linkrank/service/telemetry"
)

// env holds the collaborators opened for a single command invocation.
type env struct {
	graph    graph.Graph
	resolver *resolver.Resolver
	builder  *authority.Builder
	closers  []closeFunc
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
}

func (a *app) openEnv(extractorCfg extractor.Config) (*env, error) {
	g, closeGraph, err := getLinkGraph(a.v.GetString("link-graph-uri"), a.logger)
	if err != nil {
		return nil, err
	}
	e := &env{graph: g, closers: []closeFunc{closeGraph}}

	locker, closeLocker, err := getLocker(a.v.GetString("redis-addr"), a.v.GetDuration("lock-ttl"), a.logger)
	if err != nil {
		e.Close()

		return nil, err
	}
	e.closers = append(e.closers, closeLocker)

	if e.resolver, err = resolver.New(resolver.Config{
		Edges:     g,
		Catalog:   g,
		Extractor: extractor.New(extractorCfg),
		Logger:    a.logger.WithField("component", "resolver"),
	}); err != nil {
		e.Close()

		return nil, err
	}

	if e.builder, err = authority.New(authority.Config{
		Catalog:  g,
		Edges:    g,
		Metrics:  g,
		Resolver: e.resolver,
		Locker:   locker,
		Logger:   a.logger.WithField("component", "graph-builder"),
	}); err != nil {
		e.Close()

		return nil, err
	}

	return e, nil
}

func (a *app) newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Snapshot the outgoing links of a single page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSet("node", "url", "file"); err != nil {
				return err
			}

			doc, err := os.ReadFile(a.v.GetString("file"))
			if err != nil {
				return err
			}

			e, err := a.openEnv(extractor.Config{
				InternalDomains:       a.v.GetStringSlice("internal-domains"),
				IgnoreUGCAndSponsored: a.v.GetBool("ignore-ugc"),
			})
			if err != nil {
				return err
			}
			defer e.Close()

			siteID := a.v.GetInt64("site")
			node := &graph.ContentNode{
				ID:     a.v.GetInt64("node"),
				SiteID: siteID,
				URL:    a.v.GetString("url"),
				Title:  a.v.GetString("title"),
			}
			if err := e.graph.UpsertNode(node); err != nil {
				return err
			}

			idx, err := resolver.BuildIndex(e.graph, siteID)
			if err != nil {
				return err
			}

			res, err := e.resolver.Snapshot(idx, resolver.Page{
				NodeID: node.ID,
				URL:    node.URL,
				HTML:   string(doc),
			})
			if err != nil {
				return err
			}

			return writeJSON(cmd, res)
		},
	}

	flags := cmd.Flags()
	flags.Int64("site", 0, "The site that owns the page")
	flags.Int64("node", 0, "The content node id of the page")
	flags.String("url", "", "The canonical URL of the page")
	flags.String("title", "", "The title of the page")
	flags.String("file", "", "Path to the HTML document of the page")
	flags.StringSlice("internal-domains", nil, "Extra hosts whose links are treated as internal")
	flags.Bool("ignore-ugc", false, "Do not treat rel=ugc / rel=sponsored links as nofollow")

	return cmd
}

func (a *app) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the pending internal links of a site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSet("site"); err != nil {
				return err
			}

			e, err := a.openEnv(extractor.Config{})
			if err != nil {
				return err
			}
			defer e.Close()

			resolved, err := e.resolver.ResolveSite(a.v.GetInt64("site"))
			if err != nil {
				return err
			}

			return writeJSON(cmd, map[string]int{"resolved_edges": resolved})
		},
	}

	cmd.Flags().Int64("site", 0, "The site to resolve")

	return cmd
}

func (a *app) newRecomputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute and persist the metrics of a site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSet("site"); err != nil {
				return err
			}

			e, err := a.openEnv(extractor.Config{})
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancelFn := signalContext(cmd.Context())
			defer cancelFn()

			res, err := e.builder.Recompute(ctx, a.v.GetInt64("site"))
			if err != nil {
				return err
			}

			return writeJSON(cmd, res)
		},
	}

	cmd.Flags().Int64("site", 0, "The site to recompute")

	return cmd
}

func (a *app) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the link graph of a site as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSet("site"); err != nil {
				return err
			}

			e, err := a.openEnv(extractor.Config{})
			if err != nil {
				return err
			}
			defer e.Close()

			out, err := e.builder.Export(a.v.GetInt64("site"), a.v.GetBool("with-metrics"))
			if err != nil {
				return err
			}

			return writeJSON(cmd, out)
		},
	}

	cmd.Flags().Int64("site", 0, "The site to export")
	cmd.Flags().Bool("with-metrics", true, "Include the stored metrics of each node")

	return cmd
}

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Periodically recompute sites and expose prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSet("sites"); err != nil {
				return err
			}

			e, err := a.openEnv(extractor.Config{})
			if err != nil {
				return err
			}
			defer e.Close()

			svcGroup := service.NewGroup(a.logger)

			recomputeSvc, err := recompute.New(recompute.Config{
				Recomputer:     e.builder,
				Sites:          toInt64s(a.v.GetIntSlice("sites")),
				UpdateInterval: a.v.GetDuration("update-interval"),
				Logger:         a.logger.WithField("service", "recompute"),
			})
			if err != nil {
				return err
			}
			svcGroup.Add(recomputeSvc)

			if addr := a.v.GetString("telemetry-addr"); addr != "" {
				telemetrySvc, err := telemetry.New(telemetry.Config{
					ListenAddr: addr,
					Logger:     a.logger.WithField("service", "telemetry"),
				})
				if err != nil {
					return err
				}
				svcGroup.Add(telemetrySvc)
			}

			ctx, cancelFn := signalContext(cmd.Context())
			defer cancelFn()

			if err := svcGroup.Execute(ctx); err != nil {
				a.logger.WithField("err", err).Error("shutting down due to an error")

				return err
			}

			a.logger.Info("shutdown complete")

			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntSlice("sites", nil, "The sites to recompute on every pass")
	flags.Duration("update-interval", time.Hour, "Time between subsequent recompute passes")
	flags.String("telemetry-addr", ":9100", "Address to serve prometheus metrics on. Empty disables it")

	return cmd
}

// requireSet returns an error naming the first key that was supplied
// neither as a flag nor through the environment or config file.
func (a *app) requireSet(keys ...string) error {
	for _, key := range keys {
		if !a.v.IsSet(key) {
			return fmt.Errorf("--%s must be specified", key)
		}
	}

	return nil
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	return nil
}

func toInt64s(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}

	return out
}
