// Package main provides the ash CLI entry point.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/GiulioRossetti/ash/pkg/algo"
	"github.com/GiulioRossetti/ash/pkg/ash"
	"github.com/GiulioRossetti/ash/pkg/config"
	"github.com/GiulioRossetti/ash/pkg/readwrite"
	"github.com/GiulioRossetti/ash/pkg/walks"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ash",
		Short: "ash - Attributed Stream Hypergraph engine",
		Long: `ash models systems of temporal group interactions as attributed
stream hypergraphs: hyperedges with discrete presence timelines, nodes
with time-varying attribute profiles, and analysis built on s-overlap
walks and projections.`,
	}
	rootCmd.PersistentFlags().String("config", "", "YAML config file (overlays ASH_* environment)")
	rootCmd.PersistentFlags().String("backend", "", "presence backend: dense or interval")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ash v%s (%s)\n", version, commit)
		},
	})

	statsCmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Print registry statistics",
		Long:  "Load a registry from JSON or interaction CSV and print its temporal statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}
	rootCmd.AddCommand(statsCmd)

	streamCmd := &cobra.Command{
		Use:   "stream [file]",
		Short: "Replay the registry as an interaction stream",
		Args:  cobra.ExactArgs(1),
		RunE:  runStream,
	}
	rootCmd.AddCommand(streamCmd)

	rootCmd.AddCommand(newWalksCmd())
	rootCmd.AddCommand(newSampleCmd())

	centralityCmd := &cobra.Command{
		Use:   "centrality [file]",
		Short: "Score hyperedges on the s-line graph",
		Args:  cobra.ExactArgs(1),
		RunE:  runCentrality,
	}
	centralityCmd.Flags().Int("s", 1, "minimum shared-node overlap")
	centralityCmd.Flags().String("measure", "degree", "degree, closeness, betweenness or pagerank")
	rootCmd.AddCommand(centralityCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newWalksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walks [file]",
		Short: "Enumerate time-respecting s-walks",
		Args:  cobra.ExactArgs(1),
		RunE:  runWalks,
	}
	cmd.Flags().String("origin", "", "origin hyperedge id (required)")
	cmd.Flags().String("target", "", "restrict walks to this destination hyperedge")
	cmd.Flags().Int("s", 1, "minimum shared-node overlap per hop")
	cmd.Flags().Float64("sample-rate", 0, "fraction of source/target pairs to enumerate (default from config)")
	cmd.Flags().Int("budget", 0, "max simple paths per source/target pair (default from config)")
	cmd.Flags().Int64("seed", 0, "random seed for pair sampling (default from config)")
	cmd.MarkFlagRequired("origin")
	return cmd
}

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample [file]",
		Short: "Sample biased random s-walks",
		Args:  cobra.ExactArgs(1),
		RunE:  runSample,
	}
	cmd.Flags().Int("s", 1, "minimum shared-node overlap per hop")
	cmd.Flags().Int("count", 10, "walks per start hyperedge")
	cmd.Flags().Int("length", 5, "maximum hops per walk")
	cmd.Flags().Float64("p", 0, "return bias parameter (default from config)")
	cmd.Flags().Float64("q", 0, "in-out bias parameter (default from config)")
	cmd.Flags().Int64("seed", 0, "random seed (default from config)")
	cmd.Flags().String("stop-at", "", "terminate a walk once it reaches this hyperedge")
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.LoadFromEnv()
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Engine.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildLogger constructs the CLI logger from the logging section: level
// DEBUG..ERROR, format "text" or "json", output stdout/stderr/file path.
func buildLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", lc.Level, err)
	}

	zc := zap.NewProductionConfig()
	if lc.Format == "text" {
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	switch lc.Output {
	case "", "stdout":
		zc.OutputPaths = []string{"stdout"}
	case "stderr":
		zc.OutputPaths = []string{"stderr"}
	default:
		zc.OutputPaths = []string{lc.Output}
	}
	return zc.Build()
}

func loadRegistry(cmd *cobra.Command, path string) (*ash.ASH, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	opts := cfg.Engine.ToOptions()
	if strings.HasSuffix(path, ".csv") || strings.HasSuffix(path, ".tsv") {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		h, err := readwrite.ReadInteractionsCSV(f, opts)
		return h, cfg, err
	}
	h, err := readwrite.LoadJSON(path, opts)
	return h, cfg, err
}

// walkOptionsFrom resolves enumeration options: the config supplies the
// defaults, explicitly set flags win.
func walkOptionsFrom(cfg *config.Config, fl *pflag.FlagSet) walks.WalkOptions {
	opts := walks.WalkOptions{
		Window:     ash.Lifetime(),
		Budget:     cfg.Walks.Budget,
		SampleRate: cfg.Walks.SampleRate,
	}
	if target, _ := fl.GetString("target"); target != "" {
		opts.Target = ash.HyperedgeID(target)
	}
	if fl.Changed("budget") {
		opts.Budget, _ = fl.GetInt("budget")
	}
	if fl.Changed("sample-rate") {
		opts.SampleRate, _ = fl.GetFloat64("sample-rate")
	}
	seed := cfg.Walks.Seed
	if fl.Changed("seed") {
		seed, _ = fl.GetInt64("seed")
	}
	if seed != 0 {
		opts.Rand = rand.New(rand.NewSource(seed))
	}
	return opts
}

// sampleOptionsFrom resolves sampling options the same way: config
// defaults, flag overrides.
func sampleOptionsFrom(cfg *config.Config, fl *pflag.FlagSet) walks.SampleOptions {
	count, _ := fl.GetInt("count")
	length, _ := fl.GetInt("length")
	stopAt, _ := fl.GetString("stop-at")
	opts := walks.SampleOptions{
		Count:  count,
		Length: length,
		P:      cfg.Walks.P,
		Q:      cfg.Walks.Q,
		StopAt: ash.HyperedgeID(stopAt),
		Window: ash.Lifetime(),
	}
	if fl.Changed("p") {
		opts.P, _ = fl.GetFloat64("p")
	}
	if fl.Changed("q") {
		opts.Q, _ = fl.GetFloat64("q")
	}
	seed := cfg.Walks.Seed
	if fl.Changed("seed") {
		seed, _ = fl.GetInt64("seed")
	}
	if seed != 0 {
		opts.Rand = rand.New(rand.NewSource(seed))
	}
	return opts
}

func runStats(cmd *cobra.Command, args []string) error {
	start := time.Now()
	h, cfg, err := loadRegistry(cmd, args[0])
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}
	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger.Debug("registry loaded",
		zap.String("file", args[0]),
		zap.String("backend", cfg.Engine.Backend),
		zap.Duration("elapsed", time.Since(start)))

	if err := h.CheckConsistency(); err != nil {
		return fmt.Errorf("registry check: %w", err)
	}

	lifetime := ash.Lifetime()
	snapshots := h.TemporalSnapshots()
	fmt.Printf("Nodes:          %d\n", h.NumberOfNodes(lifetime))
	fmt.Printf("Hyperedges:     %d\n", h.NumberOfHyperedges(lifetime))
	fmt.Printf("Snapshots:      %d\n", len(snapshots))
	if len(snapshots) > 0 {
		fmt.Printf("Instant range:  [%d, %d]\n", snapshots[0], snapshots[len(snapshots)-1])
	}
	fmt.Printf("Avg nodes/t:    %.2f\n", h.AvgNumberOfNodes())
	fmt.Printf("Avg hedges/t:   %.2f\n", h.AvgNumberOfHyperedges())
	fmt.Printf("Coverage:       %.4f\n", h.Coverage())
	fmt.Printf("Uniformity:     %.4f\n", h.Uniformity())

	dist := h.HyperedgeSizeDistribution(lifetime)
	sizes := make([]int, 0, len(dist))
	for size := range dist {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	fmt.Println("Size distribution:")
	for _, size := range sizes {
		fmt.Printf("  %d nodes: %d\n", size, dist[size])
	}
	return nil
}

func runStream(cmd *cobra.Command, args []string) error {
	h, _, err := loadRegistry(cmd, args[0])
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}
	return h.StreamInteractions(func(it ash.Interaction) error {
		nodes, err := h.GetHyperedgeNodes(it.Hyperedge)
		if err != nil {
			return err
		}
		parts := make([]string, len(nodes))
		for i, n := range nodes {
			parts[i] = string(n)
		}
		fmt.Printf("%d\t%s%s\t{%s}\n", it.T, it.Op, it.Hyperedge, strings.Join(parts, ","))
		return nil
	})
}

func runWalks(cmd *cobra.Command, args []string) error {
	h, cfg, err := loadRegistry(cmd, args[0])
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}
	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	origin, _ := cmd.Flags().GetString("origin")
	s, _ := cmd.Flags().GetInt("s")
	opts := walkOptionsFrom(cfg, cmd.Flags())

	start := time.Now()
	groups, err := walks.TimeRespectingWalks(h, s, ash.HyperedgeID(origin), opts)
	if err != nil {
		return fmt.Errorf("enumerating walks: %w", err)
	}
	total := 0
	for _, ws := range groups {
		total += len(ws)
	}
	logger.Info("walks enumerated",
		zap.String("origin", origin),
		zap.Int("s", s),
		zap.Int("budget", opts.Budget),
		zap.Int("pairs", len(groups)),
		zap.Int("walks", total),
		zap.Duration("elapsed", time.Since(start)))

	if len(groups) == 0 {
		fmt.Println("no time-respecting walks")
		return nil
	}

	pairs := make([]walks.Pair, 0, len(groups))
	for pair := range groups {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].To < pairs[j].To })

	for _, pair := range pairs {
		ws := groups[pair]
		a := walks.Annotate(ws)
		fmt.Printf("%s -> %s: %d walks (shortest %d hops, fastest %d ticks, heaviest %d)\n",
			pair.From, pair.To, len(ws),
			walks.WalkLength(a.Shortest[0]),
			walks.WalkDuration(a.Fastest[0]),
			walks.WalkWeight(a.Heaviest[0]))
	}
	return nil
}

func runSample(cmd *cobra.Command, args []string) error {
	h, cfg, err := loadRegistry(cmd, args[0])
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}
	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	s, _ := cmd.Flags().GetInt("s")
	opts := sampleOptionsFrom(cfg, cmd.Flags())

	start := time.Now()
	ws, err := walks.SampleWalks(h, s, opts)
	if err != nil {
		return fmt.Errorf("sampling walks: %w", err)
	}
	logger.Info("walks sampled",
		zap.Int("s", s),
		zap.Float64("p", opts.P),
		zap.Float64("q", opts.Q),
		zap.Int("walks", len(ws)),
		zap.Duration("elapsed", time.Since(start)))

	for _, w := range ws {
		fmt.Println(formatWalk(w))
	}
	return nil
}

// formatWalk renders a walk as "e1 -[w@t]-> e2 -[w@t]-> e3".
func formatWalk(w walks.Walk) string {
	if len(w) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(string(w[0].From))
	for _, e := range w {
		fmt.Fprintf(&b, " -[%d@%d]-> %s", e.Weight, e.T, e.To)
	}
	return b.String()
}

func runCentrality(cmd *cobra.Command, args []string) error {
	h, _, err := loadRegistry(cmd, args[0])
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}

	s, _ := cmd.Flags().GetInt("s")
	measure, _ := cmd.Flags().GetString("measure")

	var scores map[ash.HyperedgeID]float64
	switch measure {
	case "degree":
		scores = algo.SDegreeCentrality(h, s, ash.Lifetime())
	case "closeness":
		scores = algo.SClosenessCentrality(h, s, ash.Lifetime())
	case "betweenness":
		scores = algo.SBetweennessCentrality(h, s, ash.Lifetime())
	case "pagerank":
		scores = algo.SPageRank(h, s, ash.Lifetime(), 20, 0.85)
	default:
		return fmt.Errorf("unknown measure %q", measure)
	}

	ids := make([]ash.HyperedgeID, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		fmt.Printf("%s\t%.6f\n", id, scores[id])
	}
	return nil
}
