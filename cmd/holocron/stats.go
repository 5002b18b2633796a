package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/holocron/internal/util"
	"github.com/OFFIS-RIT/holocron/pkg/report"
	"github.com/OFFIS-RIT/holocron/pkg/stats"
	"github.com/OFFIS-RIT/holocron/pkg/swapi"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

type statsOptions struct {
	baseURL  string
	parallel int
	retries  int
	rate     float64
	timeout  time.Duration
	asJSON   bool
}

var statsOpts statsOptions

// statsCmd computes the statistics once and prints them
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute catalog statistics once and print them",
	RunE:  runStats,
}

func init() {
	f := statsCmd.Flags()
	f.StringVar(&statsOpts.baseURL, "base-url", util.GetEnvString("SWAPI_BASE_URL", swapi.DefaultBaseURL), "catalog API root")
	f.IntVar(&statsOpts.parallel, "parallel", util.GetEnvInt("SWAPI_PARALLEL_REQ", stats.DefaultParallel), "concurrent requests")
	f.IntVar(&statsOpts.retries, "retries", util.GetEnvInt("SWAPI_MAX_RETRIES", 3), "attempts per request on transport errors")
	f.Float64Var(&statsOpts.rate, "rate", util.GetEnvFloat("SWAPI_RATE_LIMIT", 0), "requests per second, 0 for unlimited")
	f.DurationVar(&statsOpts.timeout, "timeout", util.GetEnvSeconds("COMPUTE_TIMEOUT_SECONDS", 2*time.Minute), "overall time limit")
	f.BoolVar(&statsOpts.asJSON, "json", false, "print the result as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsOpts.parallel < 1 {
		return fmt.Errorf("--parallel must be at least 1")
	}

	source, err := swapi.NewClient(swapi.NewClientParams{
		BaseURL:               statsOpts.baseURL,
		Timeout:               util.GetEnvSeconds("SWAPI_TIMEOUT_SECONDS", 30*time.Second),
		MaxRetries:            statsOpts.retries,
		Backoff:               250 * time.Millisecond,
		MaxConcurrentRequests: int64(statsOpts.parallel),
		RequestsPerSecond:     statsOpts.rate,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if statsOpts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, statsOpts.timeout)
		defer cancel()
	}

	res, err := report.Compute(ctx, source, statsOpts.parallel)
	if err != nil {
		return fmt.Errorf("Failed to compute statistics: %w", err)
	}

	if statsOpts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return renderResult(cmd.OutOrStdout(), res)
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(28)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func renderResult(w io.Writer, res report.Result) error {
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(orDash(value)))
		b.WriteString("\n")
	}

	b.WriteString(headingStyle.Render("Films"))
	b.WriteString("\n")
	row("Longest opening crawl", res.LongestCrawl)
	row("Most film appearances", res.MostCharacterAppearances)
	for i, s := range res.TopSpecies {
		row(fmt.Sprintf("Species #%d", i+1), fmt.Sprintf("%s (%d films)", s.Name, s.Appearances))
	}

	b.WriteString("\n")
	b.WriteString(headingStyle.Render("Pilots"))
	b.WriteString("\n")
	if p := res.TopPilotProvider; p != nil {
		row("Top pilot homeworld", fmt.Sprintf("%s (%d pilots)", p.Planet, p.NumberOfPilots))
		for _, pilot := range p.Pilots {
			row("", fmt.Sprintf("%s - %s", pilot.Name, pilot.Species))
		}
	} else {
		row("Top pilot homeworld", "")
	}

	_, err := fmt.Fprintln(w, boxStyle.Render(strings.TrimRight(b.String(), "\n")))
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
