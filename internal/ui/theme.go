package ui

import "image/color"

var (
	colBG      = color.RGBA{16, 16, 22, 255}
	colPanelBG = color.RGBA{28, 28, 38, 230}
	colBarBG   = color.RGBA{22, 22, 30, 255}
	colStageBG = color.RGBA{8, 8, 10, 255}

	colButton       = color.RGBA{50, 60, 80, 255}
	colButtonDone   = color.RGBA{40, 160, 80, 255}
	colButtonDebug  = color.RGBA{120, 80, 160, 255}
	colButtonBorder = color.RGBA{200, 200, 210, 255}

	colText    = color.RGBA{235, 235, 240, 255}
	colSubtle  = color.RGBA{150, 150, 165, 255}
	colError   = color.RGBA{230, 70, 70, 255}
	colErrorBG = color.RGBA{60, 10, 10, 220}

	colDim       = color.RGBA{0, 0, 0, 150}
	colSpinner   = color.RGBA{240, 240, 255, 255}
	colProgress  = color.RGBA{0, 200, 255, 255}
	colProgBG    = color.RGBA{40, 40, 50, 255}
	colMissing   = color.RGBA{230, 160, 40, 255}
	colHighlight = color.RGBA{255, 255, 0, 255}
)
