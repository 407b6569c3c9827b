package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chartlens/internal/analyzer"
	"chartlens/internal/capture"
	"chartlens/internal/classifier"
	"chartlens/internal/display"
	"chartlens/internal/interfaces"
	"chartlens/internal/journal"
	"chartlens/internal/logger"
	"chartlens/internal/orchestrator"
	"chartlens/internal/randsrc"
	"chartlens/internal/store"
	"chartlens/internal/ta"
	"chartlens/internal/types"

	"github.com/joho/godotenv"
)

// analyze runs image files through one in-process session, the same way the
// upload endpoint does, and prints every outcome.
func main() {
	_ = godotenv.Load()

	configFile := flag.String("config", "config.yaml", "config file")
	seed := flag.Uint64("seed", 0, "random seed (0 falls back to random_seed, then the clock)")
	wait := flag.Bool("latency", false, "keep the simulated classification delay")
	record := flag.Bool("journal", false, "append outcomes to the journal directory")
	asJSON := flag.Bool("json", false, "print outcomes as JSON lines")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: analyze [flags] image...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := store.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *seed == 0 {
		*seed = cfg.RandomSeed
	}
	rnd := randsrc.New(*seed)

	latency := classifier.Latency{}
	if *wait {
		latency = classifier.Latency{Min: cfg.MinLatency(), Max: cfg.MaxLatency()}
	}

	board := display.NewBoard(
		display.Seed(rnd, cfg.Series.SeedPoints),
		display.NewSparklineRenderer(os.Stderr),
		display.WithMaxPoints(cfg.Series.MaxPoints),
	)

	var sinks []interfaces.OutcomeSink
	if *record {
		j := journal.New(cfg.Journal.Dir)
		defer j.Close()
		sinks = append(sinks, j)
	}

	orch := orchestrator.New(
		capture.NewSource(capture.NewUnavailableDevice(), cfg.Upload.MaxBytes, capture.WithMaxPixels(cfg.Upload.MaxPixels)),
		classifier.New(rnd, classifier.WithLatency(latency)),
		analyzer.New(rnd),
		board,
		sinks...,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !*asJSON {
		fmt.Println("╔══════════════════════════════════════╗")
		fmt.Println("║           Chart Lens Analyze         ║")
		fmt.Println("╚══════════════════════════════════════╝")
	}

	failed := 0
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		out, err := orch.Upload(ctx, [][]byte{data})
		switch {
		case errors.Is(err, capture.ErrNoFileSelected):
			fmt.Fprintf(os.Stderr, "%s: empty file, skipped\n", path)
			continue
		case err != nil:
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			if ctx.Err() != nil {
				os.Exit(1)
			}
			continue
		}
		if *asJSON {
			b, _ := json.Marshal(struct {
				File string `json:"file"`
				*types.Outcome
			}{path, out})
			fmt.Println(string(b))
			continue
		}
		printOutcome(path, out)
	}
	if !*asJSON {
		st := ta.Summarize(board.Points().Values())
		fmt.Printf("\nSérie: %d pontos, último %.2f (%+.2f%% desde o início)\n", st.Points, st.Last, st.ChangePct)
		if st.RSI14 != nil {
			fmt.Printf("RSI 14: %.1f\n", *st.RSI14)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func printOutcome(path string, out *types.Outcome) {
	fmt.Printf("\n%s  [%s %dx%d]\n", path, out.Image.Format, out.Image.Width, out.Image.Height)
	if out.Report == nil {
		fmt.Println("  ⚠️  Imagem não reconhecida como gráfico financeiro. Tente uma imagem com:")
		for _, g := range out.Guidance {
			fmt.Printf("     • %s\n", g)
		}
		return
	}
	r := out.Report
	fmt.Printf("  %s  (%d%% de confiança)\n", r.Headline(), r.Confidence)
	fmt.Printf("  Padrões:      %s\n", r.PatternSummary)
	fmt.Printf("  Indicadores:  %s\n", r.IndicatorSummary)
	fmt.Printf("  Recomendação: %s\n", r.Recommendation)
	fmt.Printf("  Série:        %d pontos\n", out.Points)
}
