package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	reportpkg "github.com/iamunixtz/jshunter-agent/internal/report"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		Short:   "Generate an HTML report from a saved scan session",
		Example: "jshunter report --from ./reports/example.com_20260824_131722 --format html,json",
		RunE:    runReport,
	}

	cmd.Flags().String("from", "", "Scan session directory (must contain results.json)")
	cmd.Flags().String("format", "html", "Output formats: html,json (json just points to results.json)")

	_ = viper.BindPFlag("report.from", cmd.Flags().Lookup("from"))
	_ = viper.BindPFlag("report.format", cmd.Flags().Lookup("format"))
	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	from := viper.GetString("report.from")
	if from == "" {
		return errors.New("please provide --from pointing to the session directory (with results.json)")
	}

	formats := strings.Split(viper.GetString("report.format"), ",")
	for i := range formats {
		formats[i] = strings.TrimSpace(strings.ToLower(formats[i]))
	}

	// Load the session and render HTML
	session, err := reportpkg.LoadSession(from)
	if err != nil {
		return err
	}

	if contains(formats, "html") {
		htmlPath, err := reportpkg.GenerateHTML(session, from)
		if err != nil {
			return err
		}
		fmt.Printf("📝 HTML report: %s\n", htmlPath)
	}

	// Optional JSON passthrough
	if contains(formats, "json") {
		fmt.Printf("📦 JSON already exists at: %s\n", filepath.Join(from, "results.json"))
	}

	return nil
}

func contains(arr []string, v string) bool {
	for _, x := range arr {
		if x == v {
			return true
		}
	}
	return false
}
