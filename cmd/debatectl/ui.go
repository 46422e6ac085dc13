package main

import (
	"fmt"
	"strings"

	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/aescanero/debatehub/pkg/frontdoor"
	"github.com/charmbracelet/lipgloss"
)

var (
	purple = lipgloss.Color("99")
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	yellow = lipgloss.Color("214")
	dim    = lipgloss.Color("243")
)

var (
	accentStyle  = lipgloss.NewStyle().Foreground(purple)
	successStyle = lipgloss.NewStyle().Foreground(green)
	errorStyle   = lipgloss.NewStyle().Foreground(red)
	warnStyle    = lipgloss.NewStyle().Foreground(yellow)
	mutedStyle   = lipgloss.NewStyle().Foreground(dim)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(purple).MarginTop(1)
	blockStyle   = lipgloss.NewStyle().PaddingLeft(2)
)

func successMsg(format string, a ...any) string {
	return successStyle.Render("✓") + " " + fmt.Sprintf(format, a...)
}

func warnMsg(format string, a ...any) string {
	return warnStyle.Render("!") + " " + fmt.Sprintf(format, a...)
}

func errorMsg(format string, a ...any) string {
	return errorStyle.Render("✗") + " " + fmt.Sprintf(format, a...)
}

func infoMsg(format string, a ...any) string {
	return accentStyle.Render("●") + " " + fmt.Sprintf(format, a...)
}

// progressBar renders a fixed width bar for a 0..100 percentage
func progressBar(percent int) string {
	const width = 20
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return accentStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}

func renderEvent(event domain.ProgressEvent) string {
	line := fmt.Sprintf("%s %3d%%  %-16s %s",
		progressBar(event.Progress), event.Progress, event.Status, mutedStyle.Render(event.Message))
	switch {
	case event.Failed():
		return errorMsg("%s  %s", line, event.ErrorMessage())
	case event.Completed:
		return successMsg("%s", line)
	default:
		return infoMsg("%s", line)
	}
}

func renderMode(mode frontdoor.Mode, cause error) string {
	switch mode {
	case frontdoor.ModeStreaming:
		return infoMsg("streaming live updates")
	case frontdoor.ModeReconnecting:
		return warnMsg("stream lost, reconnecting (%v)", cause)
	case frontdoor.ModePolling:
		return warnMsg("falling back to polling (%v)", cause)
	case frontdoor.ModeDegraded:
		return errorMsg("delivery degraded: %v", cause)
	default:
		return ""
	}
}

func renderResult(result *domain.Result) string {
	var b strings.Builder

	b.WriteString(boldStyle.Render(result.Topic))
	b.WriteString("  " + mutedStyle.Render(string(result.Kind)+" "+result.SessionID) + "\n")

	if result.Outcome == domain.OutcomeFailed {
		b.WriteString(errorMsg("failed at %s: %s", result.FailedStep, result.Error) + "\n")
		return b.String()
	}

	if d := result.Debate; d != nil {
		for _, round := range d.Rounds {
			b.WriteString(headingStyle.Render(fmt.Sprintf("Round %d", round.RoundNumber)) + "\n")
			b.WriteString(accentStyle.Render(d.RoleA) + "\n")
			b.WriteString(blockStyle.Render(round.ProArgument) + "\n")
			b.WriteString(accentStyle.Render(d.RoleB) + "\n")
			b.WriteString(blockStyle.Render(round.ConArgument) + "\n")
		}
		b.WriteString(headingStyle.Render("Verdict") + "\n")
		b.WriteString(blockStyle.Render(d.Summary) + "\n")
	}

	if biz := result.Business; biz != nil {
		for i, idea := range biz.Ideas {
			b.WriteString(headingStyle.Render(fmt.Sprintf("%d. %s", i+1, idea.Title)))
			b.WriteString("  " + successStyle.Render(fmt.Sprintf("%.1f", idea.Score)) + "\n")
			b.WriteString(blockStyle.Render(idea.Description) + "\n")
			if idea.TargetMarket != "" {
				b.WriteString(blockStyle.Render(mutedStyle.Render("market: ")+idea.TargetMarket) + "\n")
			}
			if idea.Monetization != "" {
				b.WriteString(blockStyle.Render(mutedStyle.Render("revenue: ")+idea.Monetization) + "\n")
			}
			if idea.Refinement != "" {
				b.WriteString(blockStyle.Render(mutedStyle.Render("refined: ")+idea.Refinement) + "\n")
			}
		}
	}
	return b.String()
}
