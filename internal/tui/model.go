package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/csheth/pagewright/internal/document"
	"github.com/csheth/pagewright/internal/overflow"
	"github.com/csheth/pagewright/internal/pagination"
	"github.com/csheth/pagewright/internal/pages"
	"github.com/csheth/pagewright/internal/prefs"
	"github.com/csheth/pagewright/internal/surface"
)

// Config wires runtime options into the editor.
type Config struct {
	DocumentPath string
	Title        string
	Capacity     overflow.Capacity
	LabelRefresh time.Duration
	HistoryLimit int

	// Pages is the document to open. Reflow lays it out again, which is
	// needed for imported content that was never paginated.
	Pages   []document.Content
	Reflow  bool
	SavedAt time.Time
	// Unsaved marks pages that differ from the file on disk, such as an
	// import or an earlier version.
	Unsaved bool

	Prefs  *prefs.Store
	Logger *zap.Logger
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	return newModel(config)
}

func newModel(config Config) *model {
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if config.LabelRefresh <= 0 {
		config.LabelRefresh = 30 * time.Second
	}
	if config.Capacity.Rows <= 0 || config.Capacity.Cols <= 0 {
		config.Capacity, _ = overflow.A4.Capacity()
	}
	store := config.Prefs
	if store == nil {
		store = prefs.NewStore("", log)
	}
	preferences := store.Load()

	queue := &surface.Queue{}
	ctrl := pagination.New(overflow.NewDetector(config.Capacity, log), queue, log)
	ctrl.Load(config.Pages)
	if config.Reflow {
		ctrl.Reflow()
	}
	queue.Flush()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	m := &model{
		config:   config,
		log:      log.Named("tui"),
		ctrl:     ctrl,
		queue:    queue,
		jobs:     newJobBus(log),
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  spin,
		viewport: vp,
		layout:   newPageLayout(),
		store:    store,
		prefs:    preferences,
		palette:  newPalette(preferences.DarkMode),
		savedAt:  config.SavedAt,
		dirty:    config.Unsaved,
		now:      time.Now,
	}
	m.refreshLabel()
	return m
}

type model struct {
	config Config
	log    *zap.Logger
	stage  stage

	ctrl  *pagination.Controller
	queue *surface.Queue
	jobs  *jobBus

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model
	layout   pageLayout

	store   *prefs.Store
	prefs   prefs.Preferences
	palette palette

	// style applies to typed text.
	style document.Style

	dirty    bool
	revision int
	savedAt  time.Time
	label    string
	running  int

	infoMessage  string
	errorMessage string
	helpVisible  bool

	now func() time.Time
}

// focusFlushMsg runs queued focus changes once the frame that triggered them
// has been drawn.
type focusFlushMsg struct{}

type labelTickMsg time.Time

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.labelTick(), m.flushCmd())
}

func (m *model) labelTick() tea.Cmd {
	return tea.Tick(m.config.LabelRefresh, func(t time.Time) tea.Msg { return labelTickMsg(t) })
}

func (m *model) flushCmd() tea.Cmd {
	if m.queue.Pending() == 0 {
		return nil
	}
	return func() tea.Msg { return focusFlushMsg{} }
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case focusFlushMsg:
		m.queue.Flush()
		return m, nil
	case labelTickMsg:
		m.refreshLabel()
		return m, m.labelTick()
	case spinner.TickMsg:
		if m.running > 0 && m.prefs.Animations {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobSignalMsg:
		m.running++
		if m.prefs.Animations {
			return m, m.spinner.Tick
		}
		return m, nil
	case jobResultEnvelope:
		if m.running > 0 {
			m.running--
		}
		return m.Update(msg.Payload)
	case saveResultMsg:
		if msg.err != nil {
			m.log.Warn("Save failed", zap.Error(msg.err))
			m.errorMessage = fmt.Sprintf("save failed: %v", msg.err)
			return m, nil
		}
		m.savedAt = msg.snapshot.SavedAt
		if msg.revision == m.revision {
			m.dirty = false
		}
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Saved version %d to %s", msg.snapshot.Version, m.config.DocumentPath)
		m.refreshLabel()
		return m, nil
	case exportResultMsg:
		if msg.err != nil {
			m.log.Warn("Export failed", zap.Error(msg.err))
			m.errorMessage = fmt.Sprintf("export failed: %v", msg.err)
		} else {
			m.errorMessage = ""
		}
		if len(msg.paths) > 0 {
			m.infoMessage = fmt.Sprintf("Exported %d file(s) next to %s", len(msg.paths), m.config.DocumentPath)
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.help.Width = msg.Width
		return m, nil
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.stage == stageConfirmQuit {
			return m.handleConfirmKey(msg)
		}
		cmd := m.handleKey(msg)
		return m, tea.Batch(cmd, m.flushCmd())
	}
	return m, nil
}

func (m *model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return m, tea.Quit
	}
	m.stage = stageEditing
	m.infoMessage = "Quit cancelled."
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	// A focus change still waiting for its render must land before the key
	// is interpreted.
	m.queue.Flush()

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.label == labelUnsaved {
			m.stage = stageConfirmQuit
			return nil
		}
		return tea.Quit
	case key.Matches(msg, m.keys.Save):
		return m.save()
	case key.Matches(msg, m.keys.DarkMode):
		m.prefs.DarkMode = !m.prefs.DarkMode
		m.palette = newPalette(m.prefs.DarkMode)
		m.store.Save(m.prefs)
		m.infoMessage = fmt.Sprintf("Switched to %s mode.", m.palette.name)
		return nil
	case key.Matches(msg, m.keys.Animations):
		m.prefs.Animations = !m.prefs.Animations
		m.store.Save(m.prefs)
		if m.prefs.Animations {
			m.infoMessage = "Animations on."
		} else {
			m.infoMessage = "Animations off."
		}
		return nil
	case key.Matches(msg, m.keys.Export):
		m.infoMessage = "Exporting…"
		return m.jobs.Start(jobKindExport, exportDocumentJob(m.config.DocumentPath, m.config.Title, m.ctrl.Pages()))
	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
		m.help.ShowAll = m.helpVisible
		return nil
	case key.Matches(msg, m.keys.PrevPage):
		m.report(m.ctrl.Navigator().Previous())
		return nil
	case key.Matches(msg, m.keys.NextPage):
		m.report(m.ctrl.Navigator().Next())
		return nil
	case key.Matches(msg, m.keys.Bold):
		m.style.Bold = !m.style.Bold
		return nil
	case key.Matches(msg, m.keys.Italic):
		m.style.Italic = !m.style.Italic
		return nil
	case key.Matches(msg, m.keys.Heading):
		m.setHeading(int(msg.Runes[0] - '0'))
		return nil
	case key.Matches(msg, m.keys.PlainStyle):
		m.style = document.Style{}
		m.setHeading(0)
		return nil
	}
	m.handleEditingKey(msg)
	return nil
}

func (m *model) save() tea.Cmd {
	m.infoMessage = "Saving…"
	return m.jobs.Start(jobKindSave, saveDocumentJob(
		m.config.DocumentPath, m.config.Title, m.ctrl.Pages(), m.config.HistoryLimit, m.revision))
}

// focused returns the surface holding the cursor.
func (m *model) focused() (*surface.Surface, int, int, bool) {
	s, rank, ok := m.ctrl.Navigator().Focused()
	if !ok {
		return nil, 0, 0, false
	}
	offset, _ := s.CursorOffset()
	return s, rank, offset, true
}

func (m *model) handleEditingKey(msg tea.KeyMsg) {
	s, rank, offset, ok := m.focused()
	if !ok {
		return
	}
	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace:
		if msg.Alt {
			return
		}
		text := string(msg.Runes)
		if msg.Type == tea.KeySpace {
			text = " "
		}
		s.InsertText(offset, text, m.style, surface.OriginUser)
		m.touch()
	case tea.KeyEnter:
		handled, err := m.ctrl.HandleEnter(rank)
		m.report(err)
		if !handled {
			s.InsertText(offset, "\n", m.lineStyle(), surface.OriginUser)
		}
		m.style.Header = 0
		m.touch()
	case tea.KeyBackspace:
		handled, err := m.ctrl.HandleBackspace(rank)
		m.report(err)
		if !handled {
			if offset == 0 {
				return
			}
			s.DeleteBackward(offset, surface.OriginUser)
		}
		m.touch()
	case tea.KeyDelete:
		handled, err := m.ctrl.HandleDelete(rank)
		m.report(err)
		if !handled {
			if offset >= s.Content().Len() {
				return
			}
			s.DeleteForward(offset, surface.OriginUser)
		}
		m.touch()
	case tea.KeyLeft:
		if offset == 0 {
			m.report(m.ctrl.Navigator().Previous())
			return
		}
		s.SetCursor(offset - 1)
	case tea.KeyRight:
		if offset >= s.Content().Len() {
			m.report(m.ctrl.Navigator().Next())
			return
		}
		s.SetCursor(offset + 1)
	case tea.KeyUp:
		m.moveVertical(s, rank, offset, -1)
	case tea.KeyDown:
		m.moveVertical(s, rank, offset, 1)
	case tea.KeyHome:
		start, _ := lineBounds(offsetRunes(s.Content()), offset)
		s.SetCursor(start)
	case tea.KeyEnd:
		_, end := lineBounds(offsetRunes(s.Content()), offset)
		s.SetCursor(end)
	}
}

func (m *model) moveVertical(s *surface.Surface, rank, offset, dir int) {
	runes := offsetRunes(s.Content())
	start, end := lineBounds(runes, offset)
	col := offset - start
	nav := m.ctrl.Navigator()
	if dir < 0 {
		if start == 0 {
			if rank > 1 {
				m.report(nav.FocusPage(rank-1, pagination.FocusEnd, 0))
			}
			return
		}
		prevStart, prevEnd := lineBounds(runes, start-1)
		s.SetCursor(min(prevStart+col, prevEnd))
		return
	}
	if end >= len(runes) {
		if _, ok := m.ctrl.Registry().Next(rank); ok {
			m.report(nav.FocusPage(rank+1, pagination.FocusStart, 0))
		}
		return
	}
	nextStart, nextEnd := lineBounds(runes, end+1)
	s.SetCursor(min(nextStart+col, nextEnd))
}

// lineStyle is the style of the terminator that ends the current line, so a
// heading keeps its level when the line is closed.
func (m *model) lineStyle() document.Style {
	if m.style.Header == 0 {
		return m.style
	}
	return document.Style{Header: m.style.Header}
}

func (m *model) setHeading(level int) {
	m.style.Header = level
	s, _, offset, ok := m.focused()
	if !ok {
		return
	}
	restyled := restyleLine(s.Content(), offset, func(st document.Style) document.Style {
		st.Header = level
		return st
	})
	s.SetContent(restyled, surface.OriginUser)
	m.touch()
}

func (m *model) touch() {
	m.revision++
	m.dirty = true
	m.refreshLabel()
}

func (m *model) refreshLabel() {
	switch {
	case m.dirty:
		m.label = labelUnsaved
	case m.savedAt.IsZero():
		m.label = labelNotSaved
	default:
		m.label = "Last saved " + humanize.RelTime(m.savedAt, m.now(), "ago", "from now")
	}
}

func (m *model) report(err error) {
	if err == nil {
		return
	}
	m.log.Warn("Pagination error", zap.Error(err))
	if errors.Is(err, pages.ErrInvalidOperation) {
		m.errorMessage = err.Error()
		return
	}
	m.errorMessage = fmt.Sprintf("error: %v", err)
}
