package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/sanonone/kektorgraph/internal/server"
	"github.com/sanonone/kektorgraph/pkg/graph"
	"github.com/sanonone/kektorgraph/pkg/ingest"
	"github.com/sanonone/kektorgraph/pkg/isomorph"
	"github.com/sanonone/kektorgraph/pkg/persistence"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"import":  cmdImport,
	"export":  cmdExport,
	"random":  cmdRandom,
	"list":    cmdList,
	"info":    cmdInfo,
	"check":   cmdCheck,
	"compact": cmdCompact,
	"delete":  cmdDelete,
	"iso":     cmdIso,
	"sub":     cmdSub,
	"serve":   cmdServe,
}

func flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	return fs
}

func wantArgs(fs *flag.FlagSet, n int) error {
	if fs.NArg() != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", fs.Name(), n, fs.NArg())
	}
	return nil
}

func (a *app) graphOptions() []graph.Option {
	return []graph.Option{graph.WithDirect(a.cfg.Store.Direct)}
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func cmdImport(_ context.Context, a *app, args []string) error {
	fs := flagSet("import")
	format := fs.String("format", "adj", "Input format: adj, tsv, bin, json or bundle")
	key := fs.String("key", "", "Store key (defaults to the graph name)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		g   *graph.Graph
		err error
	)
	opts := a.graphOptions()
	switch *format {
	case "adj":
		if err := wantArgs(fs, 1); err != nil {
			return err
		}
		g, err = ingest.ReadAdjacencyFile(fs.Arg(0), opts...)
	case "tsv":
		if err := wantArgs(fs, 2); err != nil {
			return err
		}
		g, err = ingest.ReadTSVFiles(fs.Arg(0), fs.Arg(1), opts...)
	case "bin":
		if err := wantArgs(fs, 1); err != nil {
			return err
		}
		g, err = ingest.ReadBinaryAdjacencyFile(fs.Arg(0), opts...)
	case "json":
		if err := wantArgs(fs, 1); err != nil {
			return err
		}
		g, err = ingest.ReadJSONFile(fs.Arg(0), opts...)
	case "bundle":
		if err := wantArgs(fs, 1); err != nil {
			return err
		}
		if g, err = persistence.ReadBundleFile(fs.Arg(0)); err == nil {
			g = g.WithStorage(a.cfg.Store.Direct)
		}
	default:
		return fmt.Errorf("import: unknown format %q", *format)
	}
	if err != nil {
		return err
	}

	stored, err := a.store.Put(*key, g)
	if err != nil {
		return err
	}
	a.printf("%s\t%d nodes\t%d edges\n", stored, g.NumNodes(), g.NumEdges())
	return nil
}

func cmdExport(_ context.Context, a *app, args []string) error {
	fs := flagSet("export")
	format := fs.String("format", "json", "Output format: json, bin or bundle")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1); err != nil {
		return err
	}
	g, err := a.store.Get(fs.Arg(0))
	if err != nil {
		return err
	}
	switch *format {
	case "json":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(ingest.EncodeJSON(g))
	case "bin":
		return ingest.WriteBinaryAdjacency(a.out, g)
	case "bundle":
		return persistence.WriteBundle(a.out, g)
	}
	return fmt.Errorf("export: unknown format %q", *format)
}

func cmdRandom(_ context.Context, a *app, args []string) error {
	fs := flagSet("random")
	key := fs.String("key", "", "Store key (a UUID when empty)")
	simple := fs.Bool("simple", false, "Avoid self-loops and parallel edges")
	seed := fs.Int64("seed", 1, "Random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := wantArgs(fs, 2); err != nil {
		return err
	}
	n, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("random: nodes: %w", err)
	}
	e, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("random: edges: %w", err)
	}
	g, err := graph.Random(*key, n, e, *seed, *simple, a.graphOptions()...)
	if err != nil {
		return err
	}
	stored, err := a.store.Put(*key, g)
	if err != nil {
		return err
	}
	a.printf("%s\n", stored)
	return nil
}

func cmdList(_ context.Context, a *app, args []string) error {
	fs := flagSet("list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, key := range a.store.NamesWithPrefix(fs.Arg(0)) {
		info, err := a.store.Info(key)
		if err != nil {
			return err
		}
		a.printf("%s\t%d\t%d\n", key, info.NumberOfNodes, info.NumberOfEdges)
	}
	return nil
}

func cmdInfo(_ context.Context, a *app, args []string) error {
	fs := flagSet("info")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1); err != nil {
		return err
	}
	g, err := a.store.Get(fs.Arg(0))
	if err != nil {
		return err
	}
	slack := g.Slack()
	a.printf("name:        %s\n", g.Name())
	a.printf("nodes:       %d\n", g.NumNodes())
	a.printf("edges:       %d\n", g.NumEdges())
	a.printf("connections: %d (slack %d)\n", g.NumConnections(), slack.Connections)
	a.printf("node labels: %d units (slack %d)\n", g.NodeLabelUnits(), slack.NodeLabelUnits)
	a.printf("edge labels: %d units (slack %d)\n", g.EdgeLabelUnits(), slack.EdgeLabelUnits)
	a.printf("generations: %d..%d\n", g.OldestGeneration(), g.NewestGeneration())
	a.printf("direct:      %t\n", g.Direct())
	return nil
}

func cmdCheck(_ context.Context, a *app, args []string) error {
	fs := flagSet("check")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1); err != nil {
		return err
	}
	g, err := a.store.Get(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := g.Check(); err != nil {
		return err
	}
	a.printf("%s: consistent\n", fs.Arg(0))
	return nil
}

func cmdCompact(_ context.Context, a *app, args []string) error {
	fs := flagSet("compact")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1); err != nil {
		return err
	}
	key := fs.Arg(0)
	g, err := a.store.Get(key)
	if err != nil {
		return err
	}
	before := g.Slack()
	if _, err := a.store.Put(key, g.Compact()); err != nil {
		return err
	}
	slog.Info("Graph compacted", "key", key,
		"connections", before.Connections,
		"nodeLabelUnits", before.NodeLabelUnits,
		"edgeLabelUnits", before.EdgeLabelUnits)
	return nil
}

func cmdDelete(_ context.Context, a *app, args []string) error {
	fs := flagSet("delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1); err != nil {
		return err
	}
	return a.store.Delete(fs.Arg(0))
}

func cmdIso(ctx context.Context, a *app, args []string) error {
	fs := flagSet("iso")
	workers := fs.Int("workers", 0, "Concurrent searches (0 means match.max_workers)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 || fs.NArg()%2 != 0 {
		return fmt.Errorf("iso: expected pairs of keys, got %d argument(s)", fs.NArg())
	}

	pairs := make([]isomorph.Pair, 0, fs.NArg()/2)
	for i := 0; i < fs.NArg(); i += 2 {
		ga, err := a.store.Get(fs.Arg(i))
		if err != nil {
			return err
		}
		gb, err := a.store.Get(fs.Arg(i + 1))
		if err != nil {
			return err
		}
		pairs = append(pairs, isomorph.Pair{A: ga, B: gb})
	}

	results, err := isomorph.MatchAll(ctx, pairs, a.cfg.Match.Workers(*workers), a.cfg.MatchOptions()...)
	if err != nil {
		return err
	}
	for i, res := range results {
		a.printf("%s\t%s\t%t\t%s\t%d steps\t%s\n",
			fs.Arg(2*i), fs.Arg(2*i+1), res.Found, res.Reason, res.Stats.Steps, res.Stats.Elapsed)
		if res.Found {
			a.printf("\tmapping %v\n", res.Mapping)
		}
	}
	return nil
}

func cmdSub(ctx context.Context, a *app, args []string) error {
	fs := flagSet("sub")
	labels := fs.Bool("labels", false, "Require equal node and edge labels")
	limit := fs.Int("limit", -1, "Maximum embeddings to report (defaults to match.max_embeddings)")
	injective := fs.Bool("injective", false, "Map parallel pattern edges to distinct target edges")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := wantArgs(fs, 2); err != nil {
		return err
	}
	target, err := a.store.Get(fs.Arg(0))
	if err != nil {
		return err
	}
	pattern, err := a.store.Get(fs.Arg(1))
	if err != nil {
		return err
	}

	opts := a.cfg.MatchOptions()
	if *labels {
		opts = append(opts,
			isomorph.WithNodeComparator(isomorph.NodeLabels),
			isomorph.WithEdgeComparator(isomorph.EdgeLabels))
	}
	if *injective {
		opts = append(opts, isomorph.WithInjectiveEdges())
	}
	if *limit < 0 {
		*limit = a.cfg.Match.MaxEmbeddings
	}

	m := isomorph.NewSubgraphMatcher(target, pattern, opts...)
	found, err := m.FindAll(ctx, *limit)
	for _, emb := range found {
		a.printf("nodes %v\tedges %v\n", emb.Nodes, emb.Edges)
	}
	stats := m.Stats()
	slog.Info("Subgraph search finished", "embeddings", stats.Embeddings,
		"steps", stats.Steps, "backtracks", stats.Backtracks, "elapsed", stats.Elapsed)
	return err
}

func cmdServe(ctx context.Context, a *app, args []string) error {
	fs := flagSet("serve")
	addr := fs.String("addr", a.cfg.Server.Addr, "Listen address for the HTTP API")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg := a.cfg
	cfg.Server.Addr = *addr

	srv := server.NewServer(a.store, cfg)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		srv.Shutdown()
		return <-errCh
	}
}
