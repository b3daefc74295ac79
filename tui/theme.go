package tui

import (
	"slices"

	"github.com/gdamore/tcell/v3"
)

type Theme struct {
	Name     string
	bg       tcell.Color
	fg       tcell.Color
	red      tcell.Color
	green    tcell.Color
	yellow   tcell.Color
	accent   tcell.Color
	dim      tcell.Color
	headerBg tcell.Color
	headerFg tcell.Color
	footerBg tcell.Color
	footerFg tcell.Color
	buttonBg tcell.Color
	buttonFg tcell.Color
	modalBg  tcell.Color
	modalFg  tcell.Color
}

var themes = map[string]Theme{
	"nord": {
		Name:     "Nord",
		bg:       tcell.NewRGBColor(46, 52, 64),
		fg:       tcell.NewRGBColor(216, 222, 233),
		red:      tcell.NewRGBColor(191, 97, 106),
		green:    tcell.NewRGBColor(163, 190, 140),
		yellow:   tcell.NewRGBColor(235, 203, 139),
		accent:   tcell.NewRGBColor(136, 192, 208),
		dim:      tcell.NewRGBColor(76, 86, 106),
		headerBg: tcell.NewRGBColor(129, 161, 193),
		headerFg: tcell.NewRGBColor(46, 52, 64),
		footerBg: tcell.NewRGBColor(67, 76, 94),
		footerFg: tcell.NewRGBColor(216, 222, 233),
		buttonBg: tcell.NewRGBColor(129, 161, 193),
		buttonFg: tcell.NewRGBColor(46, 52, 64),
		modalBg:  tcell.NewRGBColor(59, 66, 82),
		modalFg:  tcell.NewRGBColor(216, 222, 233),
	},
	"gruvbox-dark": {
		Name:     "Gruvbox Dark",
		bg:       tcell.NewRGBColor(40, 40, 40),
		fg:       tcell.NewRGBColor(235, 219, 178),
		red:      tcell.NewRGBColor(204, 36, 29),
		green:    tcell.NewRGBColor(152, 151, 26),
		yellow:   tcell.NewRGBColor(215, 153, 33),
		accent:   tcell.NewRGBColor(214, 93, 14),
		dim:      tcell.NewRGBColor(146, 131, 116),
		headerBg: tcell.NewRGBColor(214, 93, 14),
		headerFg: tcell.NewRGBColor(40, 40, 40),
		footerBg: tcell.NewRGBColor(60, 56, 54),
		footerFg: tcell.NewRGBColor(235, 219, 178),
		buttonBg: tcell.NewRGBColor(214, 93, 14),
		buttonFg: tcell.NewRGBColor(40, 40, 40),
		modalBg:  tcell.NewRGBColor(50, 48, 47),
		modalFg:  tcell.NewRGBColor(235, 219, 178),
	},
	"solarized-dark": {
		Name:     "Solarized Dark",
		bg:       tcell.NewRGBColor(0, 43, 54),
		fg:       tcell.NewRGBColor(147, 161, 161),
		red:      tcell.NewRGBColor(220, 50, 47),
		green:    tcell.NewRGBColor(133, 153, 0),
		yellow:   tcell.NewRGBColor(181, 137, 0),
		accent:   tcell.NewRGBColor(38, 139, 210),
		dim:      tcell.NewRGBColor(88, 110, 117),
		headerBg: tcell.NewRGBColor(38, 139, 210),
		headerFg: tcell.NewRGBColor(0, 43, 54),
		footerBg: tcell.NewRGBColor(7, 54, 66),
		footerFg: tcell.NewRGBColor(147, 161, 161),
		buttonBg: tcell.NewRGBColor(42, 161, 152),
		buttonFg: tcell.NewRGBColor(0, 43, 54),
		modalBg:  tcell.NewRGBColor(7, 54, 66),
		modalFg:  tcell.NewRGBColor(238, 232, 213),
	},
}

const defaultThemeName = "nord"

func themeByName(name string) Theme {
	if th, ok := themes[name]; ok {
		return th
	}
	return themes[defaultThemeName]
}

// getThemeNames returns the theme keys in a stable order for the selector.
func getThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
