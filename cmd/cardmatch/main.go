// Command cardmatch builds the card embedding cache and identifies cards
// from a description or a picture.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/agenthands/cardmatch/internal/app"
	"github.com/agenthands/cardmatch/internal/config"
	"github.com/agenthands/cardmatch/internal/core/index"
	"github.com/agenthands/cardmatch/internal/core/model"
	"github.com/agenthands/cardmatch/internal/core/recognition"
	"github.com/agenthands/cardmatch/internal/logger"
)

const usage = `usage: cardmatch <command> [flags]

commands:
  index       build or load the embedding cache
  match       find the card closest to a description
  recognize   read a card picture and find it
  graph-sync  publish cards, crews and embeddings to Memgraph
  crewmates   list cards sharing a crew with a card (needs graph-sync)

Run "cardmatch <command> -h" for the flags of a command.
`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	var err error
	switch os.Args[1] {
	case "index":
		err = runIndex(ctx, os.Args[2:])
	case "match":
		err = runMatch(ctx, os.Args[2:])
	case "recognize":
		err = runRecognize(ctx, os.Args[2:])
	case "graph-sync":
		err = runGraphSync(ctx, os.Args[2:])
	case "crewmates":
		err = runCrewmates(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "cardmatch %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

// common flags shared by every command
type globalFlags struct {
	configPath string
	verbose    bool
}

func (g *globalFlags) register(fs *flag.FlagSet) {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "config/config.toml"
	}
	fs.StringVar(&g.configPath, "config", defaultPath, "Path to the TOML config file")
	fs.BoolVar(&g.verbose, "v", false, "Log at debug level")
}

func (g *globalFlags) load() (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadOrDefault(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	cfg.ApplyEnv()

	mode := cfg.Log.Mode
	if !g.verbose && mode == "dev" {
		// keep report output readable; dev logging is noisy on a terminal
		mode = "prod"
	}
	zlog, err := logger.New(mode)
	if err != nil {
		return nil, nil, err
	}
	return cfg, zlog, nil
}

func openApp(ctx context.Context, g *globalFlags) (*app.App, error) {
	cfg, zlog, err := g.load()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, zlog)
	if err != nil {
		return nil, err
	}
	if err := a.Matcher.Warm(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func runIndex(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	var g globalFlags
	g.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	start := time.Now()
	a, err := openApp(ctx, &g)
	if err != nil {
		return err
	}
	defer a.Close()

	vectors, _, err := a.Store.Load(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Cards: %d\n", len(a.Matcher.Cards()))
	fmt.Printf("Cached embeddings: %d (%s at %s)\n", len(vectors), a.Config.Cache.Backend, a.Config.Cache.Path)
	fmt.Printf("Elapsed: %.2f seconds\n", time.Since(start).Seconds())
	return nil
}

func runMatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("match", flag.ExitOnError)
	var g globalFlags
	g.register(fs)
	var q model.ExtractedQuery
	fs.StringVar(&q.Name, "name", "", "Card name as read")
	fs.StringVar(&q.Description, "description", "", "Effect text as read")
	fs.StringVar(&q.Tribe, "tribe", "", "Crew / affiliation as read")
	fs.StringVar(&q.Type, "type", "", "Card type as read")
	query := fs.String("query", "", "JSON object with name, description, tribe and type (overrides the field flags)")
	apiBase := fs.String("api-base", defaultAPIBase, "Base URL printed in front of the card API path")
	asJSON := fs.Bool("json", false, "Print the match result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *query != "" {
		if err := json.Unmarshal([]byte(*query), &q); err != nil {
			return fmt.Errorf("invalid -query: %w", err)
		}
	}
	if q.IsEmpty() {
		return index.ErrEmptyQuery
	}

	a, err := openApp(ctx, &g)
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()
	res, err := a.Matcher.Match(ctx, q)
	if err != nil {
		return err
	}

	if *asJSON {
		return printJSON(res)
	}
	writeReport(os.Stdout, res, *apiBase, time.Since(start))
	return nil
}

func runRecognize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("recognize", flag.ExitOnError)
	var g globalFlags
	g.register(fs)
	imagePath := fs.String("image", "", "Path to the card picture (required)")
	mode := fs.String("mode", recognition.ModeVision, "Extraction mode: vision or ocr")
	out := fs.String("out", "", "Write {extracted_data, search_result} JSON to this file")
	apiBase := fs.String("api-base", defaultAPIBase, "Base URL printed in front of the card API path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *imagePath == "" {
		fs.Usage()
		return errors.New("-image is required")
	}

	image, err := os.ReadFile(*imagePath)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, &g)
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()
	rec, err := a.Matcher.Recognize(ctx, image, imageMIMEType(*imagePath), *mode)
	if rec != nil {
		fmt.Printf("Card extracted: %s\n", describe(rec.Extracted))
		if rec.RawText != "" {
			fmt.Printf("OCR text: %q\n", rec.RawText)
		}
		if *out != "" {
			if werr := writeJSONFile(*out, rec); werr != nil {
				return werr
			}
			fmt.Printf("Result written to %s\n", *out)
		}
	}
	if err != nil {
		return err
	}

	writeReport(os.Stdout, rec.Result, *apiBase, time.Since(start))
	return nil
}

func runGraphSync(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("graph-sync", flag.ExitOnError)
	var g globalFlags
	g.register(fs)
	prune := fs.Bool("prune", false, "Delete cards and crews that are no longer in the dataset")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := openApp(ctx, &g)
	if err != nil {
		return err
	}
	defer a.Close()

	publisher, d, err := app.ConnectGraph(ctx, a.Config.Memgraph, a.Logger)
	if err != nil {
		return err
	}
	defer d.Close(ctx)
	publisher.Prune = *prune

	report, err := publisher.Publish(ctx, a.Matcher.Cards(), a.Matcher.Cache())
	if err != nil {
		return err
	}
	fmt.Printf("Sync %s: %d cards, %d crew links, %d pruned\n", report.SyncID, report.Cards, report.Links, report.Pruned)
	return nil
}

func runCrewmates(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("crewmates", flag.ExitOnError)
	var g globalFlags
	g.register(fs)
	slug := fs.String("slug", "", "Card slug, e.g. OP01-016 (required)")
	limit := fs.Int("limit", 20, "Maximum number of cards to list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *slug == "" {
		fs.Usage()
		return errors.New("-slug is required")
	}

	cfg, zlog, err := g.load()
	if err != nil {
		return err
	}
	publisher, d, err := app.ConnectGraph(ctx, cfg.Memgraph, zlog)
	if err != nil {
		return err
	}
	defer d.Close(ctx)

	mates, err := publisher.Crewmates(ctx, *slug, *limit)
	if err != nil {
		return err
	}
	for _, m := range mates {
		fmt.Printf("%-10s %-30s %s\n", m.Slug, m.Name, m.Crew)
	}
	return nil
}

func imageMIMEType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "image/jpeg"
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
