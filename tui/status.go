package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/riadafridishibly/bigdirs/scanner"
)

const menuText = "r: Roots  s: Rescan  c: Cancel  ↑/↓: Navigate  i: Details  t: Theme  q: Quit"

func headerStartupStatus(_ *Theme, root string, threshold int64) string {
	if root == "" {
		return " Select a root to scan "
	}
	return fmt.Sprintf(" Ready to scan %s for directories of at least %s ", root, humanize.IBytes(uint64(threshold)))
}

func footerStatusMenu(_ *Theme) string {
	return menuText
}

func headerFinalStatus(th *Theme, s *scanner.Session, found int) string {
	sum := s.Summary()
	state := s.State()

	stateText := state.String()
	if state == scanner.StateCancelled {
		stateText = fmt.Sprintf("[%s]%s[-]", th.red.String(), stateText)
	}

	return fmt.Sprintf(" %s | Found: %d | Dirs: %s | Files: %s | Skipped: %s | Size: %s | Elapsed: %s ",
		stateText,
		found,
		humanize.Comma(sum.Dirs),
		humanize.Comma(sum.Files),
		humanize.Comma(sum.Errors),
		humanize.IBytes(uint64(sum.TotalSize)),
		s.Elapsed().Round(time.Second),
	)
}

func headerProgressStatus(p scanner.Progress, elapsed time.Duration) string {
	return fmt.Sprintf(" Scanning %3.0f%% | Dirs: %s of ~%s | Found: %d | %s | %s ",
		p.Fraction*100,
		humanize.Comma(p.DirsVisited),
		humanize.Comma(p.DirsKnown),
		p.Results,
		humanize.IBytes(uint64(p.Bytes)),
		elapsed.Round(time.Second),
	)
}

// progressBar renders fraction as a bar of width cells.
func progressBar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// truncateLeft keeps the tail of p, which is the informative part of a path.
func truncateLeft(p string, width int) string {
	r := []rune(p)
	if width <= 3 || len(r) <= width {
		return p
	}
	return "..." + string(r[len(r)-(width-3):])
}

func (a *App) updateFinalStatus() {
	s := a.ctrl.Current()
	if s == nil {
		a.header.SetText(headerStartupStatus(&a.currentTheme, a.displayPath(a.rootPath), a.opts.Threshold))
		a.footer.SetText(footerStatusMenu(&a.currentTheme))
		return
	}
	if s.IsRunning() {
		return
	}

	a.header.SetText(headerFinalStatus(&a.currentTheme, s, len(a.items)))
	a.footer.SetText(footerStatusMenu(&a.currentTheme))
}

func (a *App) updateProgressStatus(p scanner.Progress) {
	s := a.ctrl.Current()
	if s == nil || !s.IsRunning() {
		a.updateFinalStatus()
		return
	}

	a.header.SetText(headerProgressStatus(p, s.Elapsed()))

	w, _ := a.app.GetScreenSize()
	barWidth := min(30, w/4)
	root := truncateLeft(a.displayPath(s.Root()), w-barWidth-14)
	a.footer.SetText(fmt.Sprintf(" %s  Scanning: %s", progressBar(p.Fraction, barWidth), root))
}
