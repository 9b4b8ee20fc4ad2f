package tui

type stage int

const (
	stageEditing stage = iota
	stageConfirmQuit
)

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 2
	// rows outside the viewport: header, status, error, info and short help
	chromeHeight = 5
)

const (
	labelUnsaved  = "Unsaved changes"
	labelNotSaved = "Not saved yet"
)

// embedGlyph stands in for an embedded object in offset-space text.
const embedGlyph = '\uFFFC'
