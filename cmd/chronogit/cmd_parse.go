package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"chronogit/internal/dateparse"
	"chronogit/internal/timegen"
)

var (
	parseJSON bool
	parseHour int
	parseFlat bool
)

// parseCmd parses a date expression and shows the timestamps it would
// generate, without touching any repository.
var parseCmd = &cobra.Command{
	Use:   "parse [expression]",
	Short: "Parse a date expression and preview its timestamps",
	Long: `Parses a date expression and prints the commit timestamps chronogit
would generate for it.

Supported expressions:
  1990            a single year (4 commits spread across the year)
  1990-06         a month (2 commits)
  June 1990       same month, written out
  1990-06-15      a single day (1 commit)
  1990-1995       an inclusive year range
  1990,1995,2000  a list of years

Examples:
  chronogit parse 1990
  chronogit parse "Jan 1995"
  chronogit parse 1990-1993 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Output as JSON")
	parseCmd.Flags().IntVar(&parseHour, "hour", -1, "Fixed commit hour 0-23 (default: from config)")
	parseCmd.Flags().BoolVar(&parseFlat, "no-distribute", false, "Use the fixed hour for every commit")
}

func runParse(cmd *cobra.Command, args []string) error {
	expr, err := dateparse.Parse(args[0])
	if err != nil {
		return formatParseError(err)
	}

	gen := timegenConfig()
	if parseHour >= 0 {
		gen.DefaultHour = parseHour
	}
	if parseFlat {
		gen.DistributeTimes = false
	}

	stamps, err := timegen.Generate(expr, gen)
	if err != nil {
		return err
	}

	if parseJSON {
		out := struct {
			Expression string   `json:"expression"`
			Parsed     string   `json:"parsed"`
			Timestamps []string `json:"timestamps"`
		}{
			Expression: args[0],
			Parsed:     expr.String(),
		}
		for _, ts := range stamps {
			out.Timestamps = append(out.Timestamps, ts.Format(time.RFC3339))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Expression: %s\n", expr)
	fmt.Printf("Commits:    %d\n\n", len(stamps))
	for i, ts := range stamps {
		fmt.Printf("  %2d. %s\n", i+1, ts.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}

// timegenConfig builds the generator config from the loaded file config.
func timegenConfig() timegen.Config {
	gen := timegen.DefaultConfig()
	if cfg != nil {
		gen.DefaultHour = cfg.Timestamps.DefaultHour
		gen.DistributeTimes = cfg.Timestamps.DistributeTimes
		gen.ChronologicalOrder = cfg.Timestamps.ChronologicalOrder
	}
	return gen
}

// formatParseError renders a parse failure with the supported formats
// when the input shape was not recognized.
func formatParseError(err error) error {
	var perr *dateparse.ParseError
	if errors.As(err, &perr) && len(perr.Formats) > 0 {
		msg := perr.Error() + "\n\nSupported formats:"
		for _, f := range perr.Formats {
			msg += "\n  " + f
		}
		return errors.New(msg)
	}
	return err
}
