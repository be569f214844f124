package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/rushteam/shoprec/catalog"
	"github.com/rushteam/shoprec/config"
	_ "github.com/rushteam/shoprec/config/builders"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/logging"
	"github.com/rushteam/shoprec/rating"
	"github.com/rushteam/shoprec/service"
)

const usage = `Usage: shoprec [-config shoprec.yaml] <command> [args]

Commands:
  similar [-n N] <product_id>        products similar in content
  user    [-n N] <user_id>           products predicted for a user
  rate    <user_id> <product_id> <score>
  top     [-n N]                     highest average rating
  search  <keyword>                  products whose name contains keyword
  history [-n N]                     recent recommendations
`

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; SHOPREC_CONFIG or ./shoprec.yaml)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger, args[0], args[1:]); err != nil {
		if core.IsDomainError(err) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		logger.Fatal().Err(err).Str("command", args[0]).Msg("shoprec failed")
	}
}

var commands = map[string]bool{
	"similar": true, "user": true, "rate": true, "top": true, "search": true, "history": true,
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger, cmd string, args []string) error {
	if !commands[cmd] {
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	n := fs.Int("n", cfg.Recommend.TopK, "number of results")
	if err := fs.Parse(args); err != nil {
		return err
	}
	args = fs.Args()

	idx, err := catalog.LoadCSVFile(cfg.Data.Catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if cmd == "search" {
		if len(args) != 1 {
			return fmt.Errorf("search: expected <keyword>")
		}
		for _, p := range idx.Search(args[0]) {
			fmt.Printf("%s\t%s\t%s\t%s\t%.2f\n", p.ID, p.Name, p.Category, p.Brand, p.Price)
		}
		return nil
	}

	b, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	snapshot, err := b.loadRatings(ctx)
	if err != nil {
		return fmt.Errorf("load ratings: %w", err)
	}
	ratings := rating.NewStore(idx,
		rating.WithRange(cfg.Recommend.RatingMin, cfg.Recommend.RatingMax),
		rating.WithLogger(logger),
	)
	if err := ratings.Seed(snapshot); err != nil {
		return fmt.Errorf("seed ratings: %w", err)
	}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithHistory(b.history),
		service.WithNeighbors(cfg.Recommend.Neighbors),
		service.WithWorkers(cfg.Recommend.Workers),
	}
	if cfg.Recommend.Pipeline != "" {
		post, err := config.LoadPipeline(cfg.Recommend.Pipeline)
		if err != nil {
			return err
		}
		opts = append(opts, service.WithPostProcess(post))
	}
	rec, err := service.New(ctx, idx, ratings, opts...)
	if err != nil {
		return err
	}

	switch cmd {
	case "similar":
		if len(args) != 1 {
			return fmt.Errorf("similar: expected <product_id>")
		}
		items, err := rec.ByItem(ctx, args[0], *n)
		if err != nil {
			return err
		}
		printItems(items)
	case "user":
		if len(args) != 1 {
			return fmt.Errorf("user: expected <user_id>")
		}
		items, err := rec.ByUser(ctx, args[0], *n)
		if err != nil {
			return err
		}
		printItems(items)
	case "rate":
		if len(args) != 3 {
			return fmt.Errorf("rate: expected <user_id> <product_id> <score>")
		}
		score, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("rate: bad score %q: %w", args[2], err)
		}
		if err := rec.IngestRating(ctx, args[0], args[1], score); err != nil {
			return err
		}
		r := core.Rating{UserID: args[0], ItemID: args[1], Score: score}
		if err := rating.AppendWithRetry(ctx, b.ratings, r, cfg.Storage.RetryAttempts, cfg.Storage.RetryBackoff); err != nil {
			return err
		}
		fmt.Printf("Rated %s -> %g\n", idx.Name(args[1]), score)
	case "top":
		items, err := rec.TopRated(ctx, *n)
		if err != nil {
			return err
		}
		printItems(items)
	case "history":
		entries, err := rec.History(ctx, *n)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Println(e.String())
		}
	}
	return nil
}

func printItems(items []*core.Item) {
	if len(items) == 0 {
		fmt.Println("(no recommendations)")
		return
	}
	for i, it := range items {
		fmt.Printf("%d. %s (%s) %.3f\n", i+1, it.Name, it.ID, it.Score)
	}
}
