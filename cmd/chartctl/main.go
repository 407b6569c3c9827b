package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"chartlens/internal/api"
	"chartlens/internal/display"
	"chartlens/internal/types"

	"github.com/joho/godotenv"
)

const usage = `usage: chartctl [flags] <command> [args]

commands:
  health            wait until the server answers
  state             print the current snapshot
  start             start the camera preview
  stop              stop the camera preview
  capture           snapshot the camera and analyze it
  upload <file>     upload an image and analyze it
  series            print the price series and its indicators
  history [since]   print recorded statistics (since is RFC3339)
  watch             print every finished cycle as it happens
`

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("CHARTLENS_URL", "http://localhost:8080"), "server base URL")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	verbose := flag.Bool("v", false, "log HTTP requests")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cl := api.NewChartLens(*addr, api.WithTimeout(*timeout), api.WithLogging(*verbose))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if flag.Arg(0) != "watch" {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	if err := run(ctx, cl, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "chartctl %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cl *api.ChartLens, cmd string, args []string) error {
	switch cmd {
	case "health":
		if err := cl.WaitHealthy(ctx, 5); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	case "state":
		snap, err := cl.State(ctx)
		if err != nil {
			return err
		}
		return printJSON(snap)
	case "start":
		// empty constraints let the server apply its configured camera defaults
		snap, err := cl.StartCamera(ctx, types.StreamConstraints{})
		if err != nil {
			return err
		}
		return printJSON(snap)
	case "stop":
		snap, err := cl.StopCamera(ctx)
		if err != nil {
			return err
		}
		return printJSON(snap)
	case "capture":
		out, err := cl.Capture(ctx)
		if err != nil {
			return err
		}
		printOutcome(out)
		return nil
	case "upload":
		if len(args) != 1 {
			return errors.New("expected exactly one file")
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		out, err := cl.Upload(ctx, filepath.Base(args[0]), data)
		if errors.Is(err, api.ErrNoContent) {
			fmt.Println("nothing to analyze")
			return nil
		}
		if err != nil {
			return err
		}
		printOutcome(out)
		return nil
	case "series":
		s, err := cl.Series(ctx)
		if err != nil {
			return err
		}
		st, err := cl.SeriesStats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %d points, last %.2f (%+.2f%%)\n", display.Sparkline(s.Values()), st.Points, st.Last, st.ChangePct)
		printIndicator("SMA 7", st.SMA7)
		printIndicator("SMA 20", st.SMA20)
		printIndicator("RSI 14", st.RSI14)
		return nil
	case "history":
		var since time.Time
		if len(args) > 0 {
			t, err := time.Parse(time.RFC3339, args[0])
			if err != nil {
				return fmt.Errorf("invalid since: %w", err)
			}
			since = t
		}
		stats, err := cl.History(ctx, since)
		if err != nil {
			return err
		}
		return printJSON(stats)
	case "watch":
		err := cl.Watch(ctx, func(out api.OutcomeView) error {
			printOutcome(&out)
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printOutcome(out *api.OutcomeView) {
	fmt.Printf("%s %dx%d  state=%s\n", out.Image.Format, out.Image.Width, out.Image.Height, out.State)
	if out.Error != "" {
		fmt.Printf("  failed: %s\n", out.Error)
		return
	}
	if out.Report == nil {
		fmt.Println("  not a chart. Try an image with:")
		for _, g := range out.Guidance {
			fmt.Printf("    - %s\n", g)
		}
		return
	}
	fmt.Printf("  %s  %d%%  %s\n", out.Report.Headline, out.Report.Confidence, out.Report.Tier)
	fmt.Printf("  %s\n", out.Report.Recommendation)
}

func printIndicator(name string, v *float64) {
	if v == nil {
		return
	}
	fmt.Printf("  %-7s %.2f\n", name, *v)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
