package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var (
	scheduleMode   string
	scheduleCourts int
	dryRun         bool
	reportScoreA   int
	reportScoreB   int
	reportPlayedAt string
)

func init() {
	scheduleCmd.Flags().StringVar(&scheduleMode, "mode", "singles", "Fixture mode: 'singles' or 'teams'")
	scheduleCmd.Flags().IntVar(&scheduleCourts, "courts", 0, "Number of courts (0 uses the server default)")
	scheduleCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Generate fixtures without saving them")
	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Process matches without persisting the results")
	reportCmd.Flags().IntVar(&reportScoreA, "score-a", 0, "Score of side A")
	reportCmd.Flags().IntVar(&reportScoreB, "score-b", 0, "Score of side B")
	reportCmd.Flags().StringVar(&reportPlayedAt, "played-at", "", "When the match was played (RFC3339, defaults to now)")
	reportCmd.MarkFlagRequired("score-a")
	reportCmd.MarkFlagRequired("score-b")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Show the player leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Show the team leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/teams")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List all matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches")
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate a round-robin fixture list",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("mode", scheduleMode)
		if scheduleCourts > 0 {
			params.Set("courts", fmt.Sprint(scheduleCourts))
		}
		if dryRun {
			params.Set("dry_run", "true")
		}
		return performPostRequest("/schedule", params)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <matchID>",
	Short: "Report the result of a scheduled match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("matchID", args[0])
		params.Set("scoreA", fmt.Sprint(reportScoreA))
		params.Set("scoreB", fmt.Sprint(reportScoreB))
		if reportPlayedAt != "" {
			params.Set("playedAt", reportPlayedAt)
		}
		return performPostRequest("/report", params)
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process all reported matches through the rating engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if dryRun {
			params.Set("dry_run", "true")
		}
		return performPostRequest("/process", params)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, params url.Values) error {
	reqURL := host + endpoint
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}
	fmt.Printf("Making request to %s\n", reqURL)

	resp, err := http.Post(reqURL, "application/json", strings.NewReader(""))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
