package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/theme"
)

// StatusCmd shows server health and a session summary
type StatusCmd struct {
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// statusSummary is what the status command reports
type statusSummary struct {
	Address  string                       `json:"address"`
	Server   string                       `json:"server"`
	Sessions map[domain.SessionStatus]int `json:"sessions"`
}

// statusOrder fixes the display order of session status counts
var statusOrder = []domain.SessionStatus{
	domain.StatusRunning,
	domain.StatusIdle,
	domain.StatusCompleted,
	domain.StatusError,
	domain.StatusCancelled,
}

var statusColors = map[domain.SessionStatus]theme.Color{
	domain.StatusCancelled: theme.ColorCancelled,
	domain.StatusCompleted: theme.ColorCompleted,
	domain.StatusError:     theme.ColorError,
	domain.StatusIdle:      theme.ColorIdle,
	domain.StatusRunning:   theme.ColorRunning,
}

// Run executes the status command
func (s *StatusCmd) Run(cli *CLI) error {
	addr := listenAddr(cli.settings)
	client := &http.Client{Timeout: 5 * time.Second}

	summary := statusSummary{
		Address:  addr,
		Server:   "offline",
		Sessions: make(map[domain.SessionStatus]int),
	}

	if resp, err := client.Get(fmt.Sprintf("http://%s/api/health", addr)); err == nil {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			summary.Server = "ok"
		}
	}

	if summary.Server == "ok" {
		resp, err := client.Get(fmt.Sprintf("http://%s/api/sessions", addr))
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		defer resp.Body.Close()

		var sessions []domain.Session
		if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
			return fmt.Errorf("failed to decode session list: %w", err)
		}
		for _, session := range sessions {
			summary.Sessions[session.Status]++
		}
	}

	if s.Format == "json" {
		return s.printJSON(summary)
	}
	return s.printTable(summary)
}

func (s *StatusCmd) printJSON(summary statusSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func (s *StatusCmd) printTable(summary statusSummary) error {
	fmt.Println(theme.TitleStyle.Render("Ralphtown"))

	serverStyle := theme.ErrorStyle
	if summary.Server == "ok" {
		serverStyle = lipgloss.NewStyle().Foreground(theme.ColorRunning)
	}
	fmt.Printf("%s %s %s\n",
		theme.LabelStyle.Render("Server:"),
		serverStyle.Render(summary.Server),
		theme.MutedStyle.Render("("+summary.Address+")"))

	if summary.Server != "ok" {
		fmt.Println(theme.MutedStyle.Render("Start it with: ralphtown serve"))
		return nil
	}

	parts := make([]string, 0, len(statusOrder))
	for _, status := range statusOrder {
		style := lipgloss.NewStyle().Foreground(statusColors[status])
		parts = append(parts, style.Render(fmt.Sprintf("%d %s", summary.Sessions[status], status)))
	}
	fmt.Printf("%s %s\n", theme.LabelStyle.Render("Sessions:"), strings.Join(parts, theme.MutedStyle.Render(" | ")))

	return nil
}
