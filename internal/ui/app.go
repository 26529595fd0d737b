package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"streetgrid/internal/debug"
	"streetgrid/internal/mapping"
	"streetgrid/internal/render"
	"streetgrid/internal/speech"
)

// zoomInFactor/zoomOutFactor are reciprocal-ish 25% steps on the cell size.
const (
	zoomInFactor  = 0.8
	zoomOutFactor = 1.25
)

// fetchResult carries a finished background fetch back to the UI goroutine.
// All engine mutation happens on the Run loop; the fetch goroutine only
// produces this value.
type fetchResult struct {
	set    mapping.FeatureSet
	failed []string
	lat    float64
	lon    float64
	radius int
}

// App is the cursor-driven accessible map browser.
type App struct {
	screen    tcell.Screen
	network   *mapping.StreetNetwork
	provider  mapping.FeatureProvider
	renderer  *render.ASCIIRenderer
	formatter render.GridFormatter
	voice     speech.Output

	mapView *MapView

	cursorX    int
	cursorY    int
	lines      []string
	loading    bool
	lastSpoken string

	results chan fetchResult
	quit    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewApp creates the application around an already-loaded network.
func NewApp(network *mapping.StreetNetwork, provider mapping.FeatureProvider, voice speech.Output) (*App, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}

	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		screen:   screen,
		network:  network,
		provider: provider,
		renderer: render.NewASCIIRenderer(),
		voice:    voice,
		mapView:  NewMapView(),
		cursorX:  network.GridWidth() / 2,
		cursorY:  network.GridHeight() / 2,
		results:  make(chan fetchResult, 1),
		quit:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}

	app.refreshLines()
	return app, nil
}

// Run starts the application main loop.
func (a *App) Run() error {
	defer a.cleanup()

	a.announce(a.formatter.MapSummary(a.network))

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-a.quit:
			return nil

		case res := <-a.results:
			a.applyFetch(res)

		case <-ticker.C:
			a.render()

		default:
			if a.screen.HasPendingEvent() {
				ev := a.screen.PollEvent()
				if !a.handleEvent(ev) {
					return nil
				}
			}
		}
	}
}

// render draws the map, cursor, and status line.
func (a *App) render() {
	a.screen.Clear()

	status := fmt.Sprintf("[%.1fm/cell (%d,%d)] %s",
		a.network.CellSize(), a.cursorX, a.cursorY, a.lastSpoken)
	if a.loading {
		status = "Loading map data...  " + status
	}

	a.mapView.Draw(a.screen, a.lines, a.cursorX, a.cursorY, status)
	a.screen.Show()
}

// handleEvent processes keyboard events. Returns false to quit.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape:
			close(a.quit)
			return false

		case tcell.KeyUp:
			a.moveCursor(0, -1)
		case tcell.KeyDown:
			a.moveCursor(0, 1)
		case tcell.KeyLeft:
			a.moveCursor(-1, 0)
		case tcell.KeyRight:
			a.moveCursor(1, 0)

		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				close(a.quit)
				return false

			case '+', '=':
				a.zoom(zoomInFactor)

			case '-', '_':
				a.zoom(zoomOutFactor)

			case 'c', 'C':
				a.recenter()

			case 's', 'S':
				a.announce(a.formatter.MapSummary(a.network))

			case 'r', 'R':
				a.render()
			}
		}

	case *tcell.EventResize:
		a.screen.Sync()
	}

	return true
}

// moveCursor shifts the cursor within the viewport and announces the cell.
func (a *App) moveCursor(dx, dy int) {
	newX := a.cursorX + dx
	newY := a.cursorY + dy

	if newX < 0 || newX >= a.network.GridWidth() || newY < 0 || newY >= a.network.GridHeight() {
		a.announce("Edge of map")
		return
	}

	a.cursorX = newX
	a.cursorY = newY
	a.announce(a.network.CellDetails(a.cursorX, a.cursorY))
}

// zoom rescales around the current center and announces the outcome.
func (a *App) zoom(factor float64) {
	if a.network.ZoomAtCursor(a.cursorX, a.cursorY, factor) {
		a.refreshLines()
		if factor < 1 {
			a.announce(fmt.Sprintf("Zoomed in. Scale: %.1f meters per character", a.network.CellSize()))
		} else {
			a.announce(fmt.Sprintf("Zoomed out. Scale: %.1f meters per character", a.network.CellSize()))
		}
		return
	}

	if factor < 1 {
		a.announce("Cannot zoom in further. Minimum zoom reached.")
	} else {
		a.announce("Cannot zoom out further. Maximum zoom reached.")
	}
}

// recenter moves the map center to the cursor cell, rebuilding from cache
// when the cached coverage still holds and refetching otherwise.
func (a *App) recenter() {
	if a.loading {
		a.announce("Still loading map data")
		return
	}

	lat, lon := a.network.GridToLatLon(a.cursorX, a.cursorY)

	if !a.network.Cache().NeedsRefetch(lat, lon) {
		if err := a.network.RebuildGrid(lat, lon); err != nil {
			a.announce("Could not recenter: " + err.Error())
			return
		}
		a.cursorX = a.network.GridWidth() / 2
		a.cursorY = a.network.GridHeight() / 2
		a.refreshLines()
		a.announce("Map recentered")
		return
	}

	a.startFetch(lat, lon)
}

// startFetch retrieves fresh feature data in the background. The result is
// handed back to the Run loop before any engine state changes.
func (a *App) startFetch(lat, lon float64) {
	a.loading = true
	a.announce("Loading map data")

	radius := a.network.RequiredRadius()
	go func() {
		set, failed := mapping.FetchFeatures(a.ctx, a.provider, lat, lon, radius)
		select {
		case a.results <- fetchResult{set: set, failed: failed, lat: lat, lon: lon, radius: radius}:
		case <-a.ctx.Done():
		}
	}()
}

// applyFetch loads a completed fetch into the network.
func (a *App) applyFetch(res fetchResult) {
	a.loading = false

	if err := a.network.Load(res.set, res.lat, res.lon, res.radius); err != nil {
		debug.Log("load failed: %v", err)
		a.announce("Could not load map data: " + err.Error())
		return
	}

	a.cursorX = a.network.GridWidth() / 2
	a.cursorY = a.network.GridHeight() / 2
	a.refreshLines()

	if len(res.failed) > 0 {
		a.announce("Some map data failed to load: " + strings.Join(res.failed, ", "))
	}
	a.announce(a.formatter.MapSummary(a.network))
}

func (a *App) refreshLines() {
	a.lines = a.renderer.RenderMap(a.network)
}

// announce sends text to the speech sink and echoes it on the status line,
// so the last utterance stays visible to sighted users.
func (a *App) announce(text string) {
	a.lastSpoken = text
	a.voice.Speak(text)
}

// cleanup restores the terminal.
func (a *App) cleanup() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.screen != nil {
		a.screen.Fini()
	}
}
