package tui

import "github.com/gdamore/tcell/v3"

func (a *App) handleInput(event *tcell.EventKey) *tcell.EventKey {
	if a.showDetail || a.showTheme || a.showQuit || a.showRoots {
		// vi keys move between modal buttons
		switch event.Str() {
		case "l":
			return tcell.NewEventKey(tcell.KeyRight, tcell.KeyNames[tcell.KeyRight], tcell.ModNone)
		case "h":
			return tcell.NewEventKey(tcell.KeyLeft, tcell.KeyNames[tcell.KeyLeft], tcell.ModNone)
		}

		return event
	}

	switch event.Str() {
	case "s", "S":
		if a.rootPath != "" {
			a.startScanning()
		}
		return nil
	case "r", "R":
		a.showRootSelector()
		return nil
	case "c", "C":
		a.cancelScanning()
		return nil
	case "q", "Q":
		if a.ctrl.IsRunning() {
			a.showQuit = true
			a.setRoot(a.quitModal, false)
			return nil
		}
		a.quit()
		return nil
	case "i", "I":
		a.showItemDetail()
		return nil
	case "t", "T":
		a.showThemeSelector()
		return nil
	}

	return event
}
