// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package tui is the interactive console: it shows the warm-up progress,
// offers a retry when the essential data cannot be loaded and then renders
// a live dashboard of the response cache.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/staranto/vyctl/internal/cache"
	"github.com/staranto/vyctl/internal/provider"
	"github.com/staranto/vyctl/internal/warmup"
)

// Source is what the console drives. *provider.Provider satisfies it.
type Source interface {
	Start(ctx context.Context)
	Retry(ctx context.Context) error
	Refresh(ctx context.Context) warmup.Report
	Clear(pattern string) int
	Snapshot() provider.Snapshot
	Subscribe() *cache.Subscription
}

var _ Source = (*provider.Provider)(nil)

type (
	eventMsg  cache.Event
	closedMsg struct{}
	tickMsg   time.Time
	retryMsg  struct{ err error }
	reportMsg warmup.Report
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f6be00"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00c853"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5252"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	headerStyle = lipgloss.NewStyle().Underline(true)
)

// Model is the bubbletea model of the console.
type Model struct {
	ctx     context.Context
	src     Source
	sub     *cache.Subscription
	title   string
	spinner spinner.Model
	snap    provider.Snapshot
	status  string
	started bool
	busy    bool
}

// New returns a console over src. title is shown in the header, typically
// the API base URL.
func New(ctx context.Context, src Source, title string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:     ctx,
		src:     src,
		sub:     src.Subscribe(),
		title:   title,
		spinner: sp,
		snap:    src.Snapshot(),
	}
}

// Run starts the console and blocks until the user quits.
func Run(ctx context.Context, src Source, title string) error {
	m := New(ctx, src, title)
	defer m.sub.Unsubscribe()

	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.start(), m.spinner.Tick, waitForEvent(m.sub), tick())
}

func (m Model) start() tea.Cmd {
	return func() tea.Msg {
		m.src.Start(m.ctx)
		return nil
	}
}

func waitForEvent(sub *cache.Subscription) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub.C()
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.key(msg)

	case eventMsg:
		m.snap = m.src.Snapshot()
		if msg.Type == cache.EventState && msg.Key == provider.StateKey {
			m.status = "cache " + msg.Detail
		}
		return m, waitForEvent(m.sub)

	case closedMsg:
		m.status = "cache closed"
		return m, nil

	case tickMsg:
		m.snap = m.src.Snapshot()
		return m, tick()

	case retryMsg:
		m.busy = false
		m.snap = m.src.Snapshot()
		if msg.err != nil {
			m.status = "retry failed: " + msg.err.Error()
		} else {
			m.status = "cache ready"
		}
		return m, nil

	case reportMsg:
		m.busy = false
		m.snap = m.src.Snapshot()
		r := warmup.Report(msg)
		if err := r.Err(); err != nil {
			m.status = fmt.Sprintf("refreshed %d of %d: %v", r.OK(), len(r.Results), err)
		} else {
			m.status = fmt.Sprintf("refreshed %d entries", r.OK())
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "r":
		if m.busy {
			return m, nil
		}
		switch m.snap.State {
		case warmup.Error:
			m.busy = true
			m.status = "retrying..."
			return m, func() tea.Msg { return retryMsg{err: m.src.Retry(m.ctx)} }
		case warmup.Ready:
			m.busy = true
			m.status = "refreshing..."
			return m, func() tea.Msg { return reportMsg(m.src.Refresh(m.ctx)) }
		}

	case "c":
		if m.snap.State == warmup.Ready {
			n := m.src.Clear("")
			m.snap = m.src.Snapshot()
			m.status = fmt.Sprintf("cleared %d entries", n)
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("vyctl console"))
	if m.title != "" {
		b.WriteString(dimStyle.Render("  " + m.title))
	}
	b.WriteString("\n\n")

	switch m.snap.State {
	case warmup.Uninitialized, warmup.Initializing:
		fmt.Fprintf(&b, "%s Loading essential data...\n", m.spinner.View())

	case warmup.Error:
		b.WriteString(errStyle.Render("Failed to initialize cache"))
		b.WriteString("\n")
		if m.snap.LastError != nil {
			b.WriteString(m.snap.LastError.Error())
			b.WriteString("\n")
		}
		b.WriteString("\nPress r to retry.\n")

	case warmup.Ready:
		b.WriteString(Dashboard(m.snap))
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("\nr retry/refresh  c clear  q quit"))
	b.WriteString("\n")
	return b.String()
}

// Dashboard renders the stats and entries of a ready cache.
func Dashboard(s provider.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  items %s  hits %s  misses %s  hit rate %.1f%%  uptime %s\n",
		okStyle.Render(s.State.String()),
		humanize.Comma(int64(s.Stats.Items)),
		humanize.Comma(int64(s.Stats.Hits)),
		humanize.Comma(int64(s.Stats.Misses)),
		s.Stats.HitRate()*100,
		s.Stats.Uptime(s.Now),
	)

	refreshed := "never"
	if !s.LastRefresh.IsZero() {
		refreshed = humanize.RelTime(s.LastRefresh, s.Now, "ago", "from now")
	}
	fmt.Fprintf(&b, "refresh every %s, last %s\n\n", s.RefreshInterval, refreshed)

	if len(s.Items) == 0 {
		b.WriteString(dimStyle.Render("cache is empty"))
		b.WriteString("\n")
		return b.String()
	}

	width := len("key")
	for _, e := range s.Items {
		width = max(width, len(e.Key))
	}

	fmt.Fprintf(&b, "%s  %s  %s\n",
		headerStyle.Render(pad("key", width)),
		headerStyle.Render(pad("stored", 16)),
		headerStyle.Render("expires"))
	for _, e := range s.Items {
		expires := humanize.RelTime(e.ExpiresAt(), s.Now, "ago", "from now")
		style := lipgloss.NewStyle()
		if !e.Valid(s.Now) {
			style = dimStyle
			expires = "expired"
		}
		fmt.Fprintln(&b, style.Render(fmt.Sprintf("%s  %s  %s",
			pad(e.Key, width),
			pad(humanize.RelTime(e.StoredAt, s.Now, "ago", "from now"), 16),
			expires)))
	}
	return b.String()
}

func pad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
