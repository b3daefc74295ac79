// Package tui is the interactive front-end: a root selector, a live table of
// large directories and a progress line.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"codeberg.org/tslocum/cview"
	log "github.com/sirupsen/logrus"

	"github.com/riadafridishibly/bigdirs/scanner"
)

type App struct {
	app  *cview.Application
	ctrl *scanner.Controller
	opts Options

	layout      *cview.Flex
	header      *cview.TextView
	footer      *cview.TextView
	table       *cview.Table
	panels      *cview.Panels
	detailModal *cview.Modal
	themeModal  *cview.Modal
	quitModal   *cview.Modal
	rootsModal  *cview.Modal

	rootPath   string
	items      scanner.ResultSet
	showDetail bool
	showTheme  bool
	showQuit   bool
	showRoots  bool

	uiUpdates chan func()
	ctx       context.Context
	cancel    context.CancelFunc

	userHomeDir  string
	currentTheme Theme
}

func (a *App) switchTheme(themeName string) {
	if th, ok := themes[themeName]; ok {
		a.currentTheme = th
	}
}

func styleModal(m *cview.Modal, theme *Theme) {
	m.SetBackgroundColor(theme.modalBg)
	m.SetTextColor(theme.modalFg)
	m.SetButtonBackgroundColor(theme.buttonBg)
	m.SetButtonTextColor(theme.buttonFg)
}

func (a *App) applyTheme() {
	theme := a.currentTheme

	a.header.SetBackgroundColor(theme.headerBg)
	a.header.SetTextColor(theme.headerFg)

	a.footer.SetBackgroundColor(theme.footerBg)
	a.footer.SetTextColor(theme.footerFg)

	styleModal(a.detailModal, &theme)
	styleModal(a.themeModal, &theme)
	styleModal(a.quitModal, &theme)

	a.table.SetBackgroundColor(theme.bg)
	a.panels.SetBackgroundColor(theme.bg)

	a.trySendUIUpdate(func() {
		a.updateFinalStatus()
		a.buildTable()
	})
}

// NewApp wires the widgets to a fresh Controller. opts.Threshold must be
// positive; session options come from the configuration.
func NewApp(opts Options, sessionOpts scanner.SessionOptions) *App {
	app := cview.NewApplication()

	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}
	theme := themeByName(opts.Theme)

	header := cview.NewTextView()
	header.SetDynamicColors(true)
	header.SetTextAlign(cview.AlignCenter)

	footer := cview.NewTextView()
	footer.SetDynamicColors(true)
	footer.SetTextAlign(cview.AlignCenter)

	detailModal := cview.NewModal()
	detailModal.AddButtons([]string{"Okay"})

	themeModal := cview.NewModal()
	themeNames := getThemeNames()
	themeModal.AddButtons(themeNames)

	quitModal := cview.NewModal()
	quitModal.SetText("A scan is still running.")
	quitModal.AddButtons([]string{"Keep scanning", "Cancel and quit"})

	panels := cview.NewPanels()
	table := cview.NewTable()
	table.SetBorder(false)
	table.SetBorders(false)
	table.SetSelectable(true, false)
	table.SetSeparator(' ')
	panels.AddPanel("table", table, true, true)

	a := &App{
		app:          app,
		ctx:          context.Background(),
		opts:         opts,
		header:       header,
		footer:       footer,
		detailModal:  detailModal,
		themeModal:   themeModal,
		quitModal:    quitModal,
		rootPath:     opts.Root,
		panels:       panels,
		table:        table,
		uiUpdates:    make(chan func(), 128),
		currentTheme: theme,
	}

	sessionOpts.Hooks.OnProgress = func(p scanner.Progress) {
		a.trySendUIUpdate(func() { a.updateProgressStatus(p) })
	}
	a.ctrl = scanner.NewController(sessionOpts)

	flex := cview.NewFlex()
	flex.SetDirection(cview.FlexRow)
	flex.AddItem(header, 1, 0, false)
	flex.AddItem(panels, 0, 1, true)
	flex.AddItem(footer, 1, 0, false)
	a.layout = flex

	app.SetInputCapture(a.handleInput)

	detailModal.SetDoneFunc(func(_ int, _ string) {
		a.showDetail = false
		a.setRoot(flex, true)
	})

	themeModal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
		a.showTheme = false
		a.setRoot(flex, true)

		if buttonIndex >= 0 && buttonIndex < len(themeNames) {
			a.switchTheme(buttonLabel)
			a.applyTheme()
		}
	})

	quitModal.SetDoneFunc(func(_ int, buttonLabel string) {
		a.showQuit = false
		a.setRoot(flex, true)

		if buttonLabel == "Cancel and quit" {
			a.quit()
		}
	})

	if home, err := os.UserHomeDir(); err == nil {
		a.userHomeDir = home
	} else {
		log.Warnf("Cannot resolve home directory: %v", err)
	}

	header.SetText(headerStartupStatus(&theme, a.displayPath(a.rootPath), opts.Threshold))
	footer.SetText(footerStatusMenu(&theme))

	a.setRoot(flex, true)
	a.applyTheme()

	return a
}

func (a *App) showThemeSelector() {
	theme := a.currentTheme
	a.themeModal.SetText(fmt.Sprintf("Select Theme (Current: %s)", theme.Name))
	a.showTheme = true
	a.setRoot(a.themeModal, false)
}

// Controller exposes the scan controller, mainly for tests and exports.
func (a *App) Controller() *scanner.Controller {
	return a.ctrl
}

// Stop cancels the running scan and waits for it to unwind.
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.ctrl.Close(ctx); err != nil {
		log.Warnf("Scan did not stop in time: %v", err)
	}
}

// quit leaves the event loop free while the scan unwinds.
func (a *App) quit() {
	a.footer.SetText(" Stopping...")
	go func() {
		a.Stop()
		a.app.Stop()
	}()
}

func (a *App) Run() error {
	log.Debugf("Theme: %s", a.currentTheme.Name)

	ctx, cancel := context.WithCancel(context.Background())
	a.ctx, a.cancel = ctx, cancel
	defer cancel()

	go func() {
		for updateFn := range a.uiUpdates {
			a.app.QueueUpdateDraw(updateFn)
		}
	}()
	go a.processResultUpdates(ctx)

	if a.rootPath != "" {
		a.startScanning()
	} else {
		a.showRootSelector()
	}

	return a.app.Run()
}
