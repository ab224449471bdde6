package tui

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/results"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/stats"
)

const (
	chartWidth  = 72
	chartHeight = 20
)

// App represents the TUI results browser
type App struct {
	app        *tview.Application
	pages      *tview.Pages
	loading    *tview.TextView
	resultsBox *tview.Flex
	chartView  *tview.TextView
	statusBar  *tview.TextView

	// Results panels
	summary        *tview.TextView
	estimates      *tview.TextView
	measurements   *tview.TextView
	diagnostics    *tview.TextView
	focusableItems []tview.Primitive
	currentFocus   int

	source    string
	estimator stats.Estimator

	// Shared mutable state protected by mu (accessed from background goroutines)
	mu            sync.Mutex
	table         *results.Table
	distributions []dataset.Distribution
	current       int

	// Atomic flags for cross-goroutine signaling
	loaded    atomic.Bool
	switching atomic.Bool

	cache *ViewCache
}

// NewApp creates a browser over the results loaded from source. The table
// is handed over with SetResults.
func NewApp(source string, e stats.Estimator) *App {
	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		source:    source,
		estimator: e,
		cache:     NewViewCache(),
	}
	a.setupUI()
	return a
}

// SetResults installs the table and renders every distribution in the
// background. The results page opens once every distribution is cached.
func (a *App) SetResults(t *results.Table) {
	dists := t.Distributions()

	a.mu.Lock()
	a.table = t
	a.distributions = dists
	a.current = 0
	a.mu.Unlock()

	if len(dists) == 0 {
		a.ShowError("no results in " + a.source)
		return
	}

	go func() {
		// QueueUpdateDraw blocks until the event loop picks the update up.
		a.cache.PreCacheAll(t, a.estimator, chartWidth, chartHeight)
		a.loaded.Store(true)
		a.app.QueueUpdateDraw(func() {
			a.displayCurrent()
			a.pages.SwitchToPage("results")
			a.updateStatusBar()
		})
	}()
}

// ShowError displays an error message in the loading view.
func (a *App) ShowError(message string) {
	a.app.QueueUpdateDraw(func() {
		a.loading.SetText(fmt.Sprintf("\n[red::b]Error:[white::-] %s\n\n[dim]Press 'q' to quit[white]", tview.Escape(message)))
		a.statusBar.SetText("[red]Error[white] | Press 'q' to quit")
	})
}

// setupUI initializes the user interface
func (a *App) setupUI() {
	a.loading = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false).
		SetWrap(false)
	a.loading.SetBorder(true).SetTitle(" Sorting Benchmark ").SetTitleAlign(tview.AlignCenter)

	a.resultsBox = tview.NewFlex().SetDirection(tview.FlexRow)
	a.setupResultsView()

	a.chartView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	a.chartView.SetBorder(true).SetTitleAlign(tview.AlignCenter)

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetText("[yellow]Loading results...[white] | Press 'q' to quit")
	a.statusBar.SetBorder(false)

	loadingPage := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.loading, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)
	resultsPage := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.resultsBox, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)
	chartPage := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.chartView, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.pages.AddPage("loading", loadingPage, true, true)
	a.pages.AddPage("results", resultsPage, true, false)
	a.pages.AddPage("chart", chartPage, true, false)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q', 'Q':
			a.app.Stop()
			return nil
		case 'r', 'R':
			if a.loaded.Load() {
				a.pages.SwitchToPage("results")
				a.updateStatusBar()
			}
			return nil
		case 'c', 'C':
			if a.loaded.Load() {
				a.pages.SwitchToPage("chart")
				a.updateStatusBar()
			}
			return nil
		case 'd', 'D':
			if a.loaded.Load() {
				a.nextDistribution()
			}
			return nil
		}

		frontPageName, _ := a.pages.GetFrontPage()
		if !a.loaded.Load() {
			return event
		}
		var view *tview.TextView
		switch frontPageName {
		case "results":
			switch event.Key() {
			case tcell.KeyTab:
				a.nextFocus()
				return nil
			case tcell.KeyBacktab:
				a.prevFocus()
				return nil
			}
			view, _ = a.getFocusedItem().(*tview.TextView)
		case "chart":
			view = a.chartView
		}
		if view != nil && scroll(view, event.Key()) {
			return nil
		}
		return event
	})

	a.app.SetRoot(a.pages, true)
}

// scroll moves a text view for the arrow and page keys.
func scroll(tv *tview.TextView, key tcell.Key) bool {
	row, col := tv.GetScrollOffset()
	switch key {
	case tcell.KeyDown:
		tv.ScrollTo(row+1, col)
	case tcell.KeyUp:
		tv.ScrollTo(max(row-1, 0), col)
	case tcell.KeyPgDn:
		tv.ScrollTo(row+10, col)
	case tcell.KeyPgUp:
		tv.ScrollTo(max(row-10, 0), col)
	default:
		return false
	}
	return true
}

// setupResultsView creates the results display layout
func (a *App) setupResultsView() {
	a.summary = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	a.summary.SetBorder(true).SetTitle(" Summary ").SetTitleAlign(tview.AlignLeft)

	a.estimates = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)

	a.measurements = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)

	a.diagnostics = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)

	for _, tv := range []*tview.TextView{a.estimates, a.measurements, a.diagnostics} {
		tv.SetBorder(true).SetTitleAlign(tview.AlignLeft)
	}

	a.focusableItems = []tview.Primitive{a.estimates, a.measurements, a.diagnostics}
	a.currentFocus = 0
	a.updateFocusBorders()

	topRow := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.summary, 0, 1, false)

	bottomRow := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.estimates, 0, 2, false).
		AddItem(a.measurements, 0, 2, false).
		AddItem(a.diagnostics, 0, 1, false)

	a.resultsBox.
		AddItem(topRow, 7, 0, false).
		AddItem(bottomRow, 0, 1, false)
}

// Run starts the TUI application
func (a *App) Run() error {
	a.loading.SetText(fmt.Sprintf("\n[white::b]Sorting Benchmark Results[white::-]\n\n[dim]Source:[white] %s\n\n[yellow]▶[white] Fitting log-log slopes...",
		tview.Escape(a.source)))
	return a.app.Run()
}

// nextDistribution cycles to the next distribution
func (a *App) nextDistribution() {
	// Prevent concurrent switching (atomic CAS)
	if !a.switching.CompareAndSwap(false, true) {
		return
	}

	a.mu.Lock()
	canSwitch := len(a.distributions) > 1
	if canSwitch {
		a.current = (a.current + 1) % len(a.distributions)
	}
	a.mu.Unlock()

	if !canSwitch {
		a.switching.Store(false)
		return
	}
	go func() {
		defer a.switching.Store(false)
		a.ensureCached()
		a.app.QueueUpdateDraw(func() {
			a.displayCurrent()
			a.updateStatusBar()
		})
	}()
}

// ensureCached renders the current distribution if the background loader has
// not reached it yet.
func (a *App) ensureCached() {
	a.mu.Lock()
	t, dist := a.table, a.currentDistribution()
	a.mu.Unlock()
	if _, ok := a.cache.get(dist); !ok {
		a.cache.PreCache(t, dist, a.estimator, chartWidth, chartHeight)
	}
}

// currentDistribution must be called with mu held.
func (a *App) currentDistribution() dataset.Distribution {
	if len(a.distributions) == 0 {
		return ""
	}
	return a.distributions[a.current]
}

// displayCurrent fills the panels from the cache. Runs on the UI goroutine.
func (a *App) displayCurrent() {
	a.mu.Lock()
	dist := a.currentDistribution()
	a.mu.Unlock()

	view, ok := a.cache.get(dist)
	if !ok {
		return
	}
	a.summary.SetText(view.Summary + "[dim]Cache:[white] " + a.cacheStatus())
	a.estimates.SetText(view.Estimate).ScrollToBeginning()
	a.measurements.SetText(view.Measurement).ScrollToBeginning()
	a.diagnostics.SetText(view.Diagnostics).ScrollToBeginning()
	a.chartView.SetText(view.Chart).ScrollToBeginning()
	a.chartView.SetTitle(fmt.Sprintf(" Log-log: %s ", dist.Title()))
}

// Navigation helper functions
func (a *App) nextFocus() {
	a.currentFocus = (a.currentFocus + 1) % len(a.focusableItems)
	a.updateFocusBorders()
	a.updateStatusBar()
}

func (a *App) prevFocus() {
	a.currentFocus = (a.currentFocus - 1 + len(a.focusableItems)) % len(a.focusableItems)
	a.updateFocusBorders()
	a.updateStatusBar()
}

func (a *App) getFocusedItem() tview.Primitive {
	if a.currentFocus >= 0 && a.currentFocus < len(a.focusableItems) {
		return a.focusableItems[a.currentFocus]
	}
	return nil
}

var panelNames = []string{"Slope Estimates", "Measurements", "Diagnostics"}

func (a *App) updateFocusBorders() {
	for i, item := range a.focusableItems {
		if tv, ok := item.(*tview.TextView); ok {
			if i == a.currentFocus {
				tv.SetBorderColor(tcell.ColorYellow).SetTitle(" [::b]" + panelNames[i] + "[FOCUSED] ")
			} else {
				tv.SetBorderColor(tcell.ColorDefault).SetTitle(" " + panelNames[i] + " ")
			}
		}
	}
}

func (a *App) updateStatusBar() {
	if !a.loaded.Load() {
		a.statusBar.SetText("[yellow]Loading results...[white] | Press 'q' to quit")
		return
	}

	a.mu.Lock()
	dist := a.currentDistribution()
	position := fmt.Sprintf("%d/%d", a.current+1, len(a.distributions))
	a.mu.Unlock()

	frontPageName, _ := a.pages.GetFrontPage()
	switch frontPageName {
	case "chart":
		a.statusBar.SetText(fmt.Sprintf("[green]Chart[white] | [cyan]%s (%s)[white] | 'd': next distribution, ↑↓: scroll, 'r': results, 'q': quit",
			dist.Title(), position))
	default:
		a.statusBar.SetText(fmt.Sprintf("[green]Results[white] | [yellow]%s[white] focused | [cyan]%s (%s)[white] | Tab/Shift+Tab: panels, 'd': next distribution, ↑↓: scroll, 'c': chart, 'q': quit",
			panelNames[a.currentFocus], dist.Title(), position))
	}
}

// cacheStatus is shown in the summary while the background loader runs.
func (a *App) cacheStatus() string {
	cached, complete, _, _, _ := a.cache.GetCacheStats()
	if complete {
		return "all distributions ready"
	}
	a.mu.Lock()
	total := len(a.distributions)
	a.mu.Unlock()
	return fmt.Sprintf("%d/%d distributions ready", cached, total)
}
