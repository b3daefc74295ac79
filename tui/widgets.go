package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"codeberg.org/tslocum/cview"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/riadafridishibly/bigdirs/scanner"
)

const cancelRootLabel = "Cancel"

func (a *App) IsScanning() bool {
	return a.ctrl.IsRunning()
}

// startScanning (re)starts the scan of the current root. The controller
// joins any running scan first, which may take a while, so the restart runs
// off the event loop.
func (a *App) startScanning() {
	root := a.rootPath
	a.footer.SetText(" Starting scan...")
	go a.restart(root)
}

func (a *App) restart(root string) {
	s, err := a.ctrl.Start(root, a.opts.Threshold)
	if err != nil {
		log.Errorf("Cannot start scan of %s: %v", root, err)
		a.trySendUIUpdate(func() {
			a.footer.SetText(fmt.Sprintf("[%s]Cannot scan %s: %v", a.currentTheme.red.String(), root, err))
		})
		return
	}

	a.trySendUIUpdate(func() {
		a.items = nil
		a.buildTable()
		a.header.SetText(headerProgressStatus(s.Progress(), 0))
		a.footer.SetText(footerStatusMenu(&a.currentTheme))
	})
	go a.watchSession(a.ctx, s)
}

func (a *App) cancelScanning() {
	if !a.ctrl.IsRunning() {
		return
	}
	a.ctrl.Cancel()
	a.footer.SetText(" Cancelling...")
}

func (a *App) showRootSelector() {
	roots, err := scanner.ListRoots()
	if err != nil {
		log.Errorf("Listing roots: %v", err)
	}
	if len(roots) == 0 {
		roots = []string{string(filepath.Separator)}
	}

	modal := cview.NewModal()
	modal.SetText("Select a root to scan")
	modal.AddButtons(append(roots, cancelRootLabel))
	styleModal(modal, &a.currentTheme)
	modal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
		a.showRoots = false
		a.setRoot(a.layout, true)

		if buttonIndex < 0 || buttonLabel == cancelRootLabel {
			return
		}
		a.rootPath = buttonLabel
		a.startScanning()
	})

	a.rootsModal = modal
	a.showRoots = true
	a.setRoot(modal, false)
}

func (a *App) displayPath(p string) string {
	if !a.opts.ReplaceHomeWithTilde || a.userHomeDir == "" {
		return p
	}
	if after, ok := strings.CutPrefix(p, a.userHomeDir); ok {
		p = "~" + after
	}
	return p
}

func (a *App) buildTable() *cview.Table {
	theme := a.currentTheme
	table := a.table
	table.Clear()

	var total int64
	if s := a.ctrl.Current(); s != nil {
		total = s.Summary().TotalSize
	}

	for row, item := range a.items {
		sizeCell := cview.NewTableCell(fmt.Sprintf(" %s ", humanize.IBytes(uint64(item.Size))))
		sizeCell.SetTextColor(theme.yellow)
		sizeCell.SetAlign(cview.AlignRight)
		sizeCell.SetReference(item)
		table.SetCell(row, 0, sizeCell)

		share := ""
		if total > 0 {
			share = fmt.Sprintf("%5.1f%%", 100*float64(item.Size)/float64(total))
		}
		shareCell := cview.NewTableCell(share)
		shareCell.SetTextColor(theme.dim)
		shareCell.SetAlign(cview.AlignRight)
		table.SetCell(row, 1, shareCell)

		pathCell := cview.NewTableCell(a.displayPath(item.Path))
		pathCell.SetTextColor(theme.fg)
		pathCell.SetAlign(cview.AlignLeft)
		pathCell.SetExpansion(1)
		table.SetCell(row, 2, pathCell)
	}

	return table
}

func (a *App) selectedResult() (scanner.Result, bool) {
	row, _ := a.table.GetSelection()
	cell := a.table.GetCell(row, 0) // the reference lives in the size column
	if cell == nil {
		return scanner.Result{}, false
	}
	r, ok := cell.GetReference().(scanner.Result)
	return r, ok
}

func (a *App) showItemDetail() {
	item, ok := a.selectedResult()
	if !ok {
		return
	}

	var detail strings.Builder
	fmt.Fprintf(&detail, "Path: %s\n", item.Path)
	fmt.Fprintf(&detail, "Size: %s (%s bytes)\n", humanize.IBytes(uint64(item.Size)), humanize.Comma(item.Size))
	if s := a.ctrl.Current(); s != nil {
		fmt.Fprintf(&detail, "Root: %s\n", s.Root())
		fmt.Fprintf(&detail, "Threshold: %s\n", humanize.IBytes(uint64(s.Threshold())))
	}

	a.detailModal.SetText(detail.String())
	a.showDetail = true
	a.setRoot(a.detailModal, false)
}
