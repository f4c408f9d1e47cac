package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"backlab/internal/backtest"
	"backlab/internal/config"
	"backlab/internal/domain"
	"backlab/internal/marketdata"
	"backlab/internal/store"
	"backlab/internal/strategy"
)

const version = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: backlab-cli <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  version    Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "  fetch      Fetch historical bars and save them as a dataset\n")
		fmt.Fprintf(os.Stderr, "  datasets   List saved datasets\n")
		fmt.Fprintf(os.Stderr, "  backtest   Run a backtest against a saved dataset\n")
		fmt.Fprintf(os.Stderr, "  optimize   Grid-search strategy parameters on a saved dataset\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("backlab-cli %s\n", version)

	case "fetch":
		cmdFetch(os.Args[2:])

	case "datasets":
		cmdDatasets(os.Args[2:])

	case "backtest":
		cmdBacktest(os.Args[2:])

	case "optimize":
		cmdOptimize(os.Args[2:])

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults when missing.
func loadConfig() *config.Config {
	cfgPath := "config/backlab.yaml"
	if p := os.Getenv("BACKLAB_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("loading config: %v", err)
		}
		cfg = config.Default()
	}
	return cfg
}

// logger returns a quiet stderr logger so JSON output stays on stdout.
func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func openSQLite(cfg *config.Config) *store.SQLiteStore {
	ss, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening sqlite store: %v", err)
	}
	return ss
}

func newFetcher(cfg *config.Config) marketdata.Fetcher {
	switch cfg.Fetch.Source {
	case "alpaca":
		if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
			log.Fatal("alpaca source requires APCA_API_KEY_ID and APCA_API_SECRET_KEY")
		}
		return marketdata.NewAlpacaFetcher(
			cfg.Alpaca.APIKey,
			cfg.Alpaca.APISecret,
			cfg.Alpaca.DataURL,
			cfg.Fetch.RateLimitPerMin,
			cfg.Fetch.MaxAttempts,
		)
	case "mock":
		return marketdata.NewMockFetcher()
	default:
		log.Fatalf("unknown fetch source: %q", cfg.Fetch.Source)
		return nil
	}
}

// loadBars reads a dataset's metadata and bar series from local storage.
func loadBars(ctx context.Context, cfg *config.Config, ss *store.SQLiteStore, id string) (*domain.Dataset, []domain.Bar) {
	ds, err := ss.GetDataset(ctx, id)
	if err != nil {
		log.Fatalf("loading dataset %s: %v", id, err)
	}
	ps := store.NewParquetStore(cfg.Storage.DataDir)
	bars, err := ps.ReadBars(ctx, id)
	if err != nil {
		log.Fatalf("reading bars for %s: %v", id, err)
	}
	return ds, bars
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("encoding result: %v", err)
	}
	fmt.Println(string(out))
}

func cmdFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	symbol := fs.String("symbol", "", "ticker symbol (required)")
	days := fs.Int("days", 30, "number of calendar days of history")
	fs.Parse(args)

	if *symbol == "" {
		fmt.Fprintln(os.Stderr, "fetch: -symbol is required")
		fs.Usage()
		os.Exit(1)
	}

	cfg := loadConfig()
	ss := openSQLite(cfg)
	defer ss.Close()

	ctx := context.Background()
	fetcher := newFetcher(cfg)
	sym := strings.ToUpper(*symbol)

	bars, err := fetcher.FetchBars(ctx, sym, *days)
	if err != nil {
		log.Fatalf("fetching bars: %v", err)
	}
	if len(bars) == 0 {
		log.Fatalf("no data found for %s", sym)
	}

	ds := domain.NewDataset(sym, *days, len(bars))
	ps := store.NewParquetStore(cfg.Storage.DataDir)
	if err := ps.WriteBars(ctx, ds.ID, bars); err != nil {
		log.Fatalf("writing bars: %v", err)
	}
	if err := ss.SaveDataset(ctx, ds); err != nil {
		log.Fatalf("saving dataset: %v", err)
	}

	fmt.Printf("saved %d bars for %s as dataset %s\n", len(bars), ds.Symbol, ds.ID)
}

func cmdDatasets(args []string) {
	fs := flag.NewFlagSet("datasets", flag.ExitOnError)
	fs.Parse(args)

	cfg := loadConfig()
	ss := openSQLite(cfg)
	defer ss.Close()

	list, err := ss.ListDatasets(context.Background())
	if err != nil {
		log.Fatalf("listing datasets: %v", err)
	}
	if len(list) == 0 {
		fmt.Println("no datasets saved")
		return
	}

	fmt.Printf("%-16s %-8s %-10s %-8s %s\n", "ID", "SYMBOL", "DURATION", "BARS", "CREATED")
	for _, ds := range list {
		fmt.Printf("%-16s %-8s %-10s %-8d %s\n",
			ds.ID, ds.Symbol, ds.Duration, ds.DataPoints,
			ds.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func cmdBacktest(args []string) {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	id := fs.String("id", "", "dataset id (required)")
	strategyName := fs.String("strategy", strategy.CrossoverName, "strategy name")
	short := fs.Int("short", 10, "short moving-average period")
	long := fs.Int("long", 30, "long moving-average period")
	split := fs.Float64("split", 0, "training split fraction (0, 1]; default from config")
	capital := fs.Float64("capital", 0, "initial capital; default from config")
	fs.Parse(args)

	if *id == "" {
		fmt.Fprintln(os.Stderr, "backtest: -id is required")
		fs.Usage()
		os.Exit(1)
	}

	cfg := loadConfig()
	ss := openSQLite(cfg)
	defer ss.Close()

	if *split == 0 {
		*split = cfg.Backtest.TrainSplit
	}
	if *capital == 0 {
		*capital = cfg.Backtest.InitialCapital
	}

	ctx := context.Background()
	_, bars := loadBars(ctx, cfg, ss, *id)

	engine := backtest.NewEngine(strategy.DefaultRegistry(), logger())
	result, err := engine.Run(bars, backtest.Params{
		Strategy:       *strategyName,
		ShortPeriod:    *short,
		LongPeriod:     *long,
		TrainSplit:     *split,
		InitialCapital: *capital,
	})
	if err != nil {
		log.Fatalf("running backtest: %v", err)
	}

	printJSON(result)
}

func cmdOptimize(args []string) {
	fs := flag.NewFlagSet("optimize", flag.ExitOnError)
	id := fs.String("id", "", "dataset id (required)")
	split := fs.Float64("split", 0, "training split fraction (0, 1]; default from config")
	capital := fs.Float64("capital", 0, "initial capital; default from config")
	fs.Parse(args)

	if *id == "" {
		fmt.Fprintln(os.Stderr, "optimize: -id is required")
		fs.Usage()
		os.Exit(1)
	}

	cfg := loadConfig()
	ss := openSQLite(cfg)
	defer ss.Close()

	if *split == 0 {
		*split = cfg.Backtest.TrainSplit
	}
	if *capital == 0 {
		*capital = cfg.Backtest.InitialCapital
	}

	ctx := context.Background()
	_, bars := loadBars(ctx, cfg, ss, *id)

	optimizer := backtest.NewOptimizer(logger())
	if len(cfg.Backtest.ShortPeriods) > 0 {
		optimizer.ShortPeriods = cfg.Backtest.ShortPeriods
	}
	if len(cfg.Backtest.LongPeriods) > 0 {
		optimizer.LongPeriods = cfg.Backtest.LongPeriods
	}

	result := optimizer.Run(bars, backtest.OptimizeParams{
		TrainSplit:     *split,
		InitialCapital: *capital,
	})

	printJSON(result)
}
