package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jwebster45206/rando-engine/internal/logger"
	"github.com/jwebster45206/rando-engine/pkg/logic"
	"github.com/jwebster45206/rando-engine/pkg/world"
)

type options struct {
	dataDir   string
	worldName string
	items     []string
	techs     []string
	start     string
	maxPasses int
	timeout   time.Duration
	asJSON    bool
	verbose   bool
}

func (o *options) logLevel() slog.Level {
	if o.verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("rando", flag.ContinueOnError)
	opts := &options{}
	var items, techs string

	fs.StringVar(&opts.dataDir, "data", "../sm-json-data", "world definition directory")
	fs.StringVar(&opts.worldName, "world", "Super Metroid", "world name")
	fs.StringVar(&items, "items", "Morph,Missile,Bombs,Super,PowerBomb", "comma separated items")
	fs.StringVar(&techs, "techs", "canWalljump,canTrickyWalljump,canMidAirMorph,canCWJ", "comma separated techs")
	fs.StringVar(&opts.start, "start", "Morphing Ball", "name of the origin node")
	fs.IntVar(&opts.maxPasses, "max-passes", 0, "fixed point pass budget (0 = unbounded)")
	fs.DurationVar(&opts.timeout, "timeout", 0, "traversal timeout (0 = none)")
	fs.BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	fs.BoolVar(&opts.verbose, "v", false, "log traversal details to stderr")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.maxPasses < 0 {
		return nil, fmt.Errorf("-max-passes must not be negative")
	}
	opts.items = splitList(items)
	opts.techs = splitList(techs)
	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts *options) error {
	log := logger.NewCLI(opts.logLevel(), os.Stderr)

	if !opts.asJSON {
		fmt.Printf("\nTraversing world from: %q\nUsing items: %v\nUsing techs: %v\n\n", opts.start, opts.items, opts.techs)
		fmt.Println("Finding suitable locations for item placement...")
	}

	start := time.Now()
	w, err := world.Load(opts.worldName, opts.dataDir)
	if err != nil {
		return err
	}
	loaded := time.Since(start)

	origin, err := w.FindNodeByName(opts.start)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	ctx := context.Background()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	start = time.Now()
	abilities := logic.ResolveAbilitySet(opts.items, opts.techs, w)
	res, err := logic.NewFinder(w, abilities, logic.Options{MaxPasses: opts.maxPasses, Logger: log}).Available(ctx, origin)
	if err != nil {
		return err
	}
	traversed := time.Since(start)

	if opts.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Abilities []string `json:"abilities"`
			*logic.Result
		}{abilities.Names(), res})
	}

	fmt.Printf("Loaded world in: %v\n", loaded)
	fmt.Printf("Resolved %d abilities: %v\n", abilities.Len(), abilities.Names())
	fmt.Printf("Traversed world graph in: %v (%d passes)\n", traversed, res.Passes)
	fmt.Print(report(w, res.Locations))
	return nil
}
