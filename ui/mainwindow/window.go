// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"
	"strings"

	"cutout/internal/app"
	"cutout/internal/compositor"
	"cutout/internal/extract"
	"cutout/internal/imageio"
	"cutout/internal/selection"
	"cutout/pkg/geometry"
	"cutout/ui/canvas"
	"cutout/ui/dialogs"
	"cutout/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	state  *app.State
	prefs  *prefs.Prefs
	canvas *canvas.EditorCanvas

	statusBar  *widget.Label
	promptBar  *widget.Entry
	modeGroup  *widget.RadioGroup
	removeBG   *widget.Check
	keepSize   *widget.Check
	keyOut     *widget.Check
	extractBtn *widget.Button
	saveBtn    *widget.Button
}

const (
	modeLabelPan   = "Pan"
	modeLabelPen   = "Pen"
	modeLabelSmart = "Smart Select"
)

// zoomButtonStep is the scale delta for the toolbar and menu zoom actions.
const zoomButtonStep = 0.25

// New creates the main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Cutout")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	win.Resize(fyne.NewSize(1100, 750))

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewEditorCanvas(mw.state)
	mw.statusBar = widget.NewLabel("Ready")

	content := container.NewBorder(
		mw.createToolbar(),
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		mw.canvas,
	)
	mw.SetContent(content)
}

// createToolbar assembles the mode, prompt and extraction controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	mw.modeGroup = widget.NewRadioGroup(
		[]string{modeLabelPan, modeLabelPen, modeLabelSmart},
		func(label string) {
			switch label {
			case modeLabelPen:
				mw.state.SetMode(selection.ModePen)
			case modeLabelSmart:
				mw.state.SetMode(selection.ModeSmartBox)
			default:
				mw.state.SetMode(selection.ModeIdle)
			}
		},
	)
	mw.modeGroup.Horizontal = true
	mw.modeGroup.SetSelected(modeLabelPan)

	mw.promptBar = widget.NewEntry()
	mw.promptBar.SetPlaceHolder("Describe the image to generate...")
	generateBtn := widget.NewButton("Generate", mw.onGenerate)
	mw.promptBar.OnSubmitted = func(string) { mw.onGenerate() }

	mw.removeBG = widget.NewCheck("Remove background", nil)
	mw.removeBG.SetChecked(true)
	mw.keepSize = widget.NewCheck("Keep size", nil)
	mw.keepSize.SetChecked(mw.prefs.Bool(prefs.KeyKeepSize, false))
	mw.keyOut = widget.NewCheck("Key out white", nil)
	mw.keyOut.SetChecked(mw.prefs.Bool(prefs.KeyKeyOut, true))

	mw.extractBtn = widget.NewButton("Extract", mw.onExtract)
	mw.saveBtn = widget.NewButton("Save...", mw.onSaveResult)
	mw.saveBtn.Disable()

	undoBtn := widget.NewButton("Undo", mw.state.Undo)
	redoBtn := widget.NewButton("Redo", mw.state.Redo)
	zoomOutBtn := widget.NewButton("-", mw.onZoomOut)
	zoomInBtn := widget.NewButton("+", mw.onZoomIn)
	fitBtn := widget.NewButton("Fit", mw.canvas.FitImage)

	top := container.NewHBox(
		mw.modeGroup,
		widget.NewSeparator(),
		undoBtn,
		redoBtn,
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
		widget.NewSeparator(),
		mw.removeBG,
		mw.keepSize,
		mw.keyOut,
		mw.extractBtn,
		mw.saveBtn,
	)
	promptRow := container.NewBorder(nil, nil, nil, generateBtn, mw.promptBar)
	return container.NewVBox(top, promptRow)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItem("Save Result...", mw.onSaveResult),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.state.Undo),
		fyne.NewMenuItem("Redo", mw.state.Redo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear Selection", mw.state.Reset),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences...", mw.onPreferences),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		fyne.NewMenuItem("Fit to Window", mw.canvas.FitImage),
		fyne.NewMenuItem("Show Original", func() {
			mw.canvas.ShowWorking()
		}),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventBusyChanged, func(data interface{}) {
		if busy, ok := data.(bool); ok && busy {
			mw.updateStatus("Working...")
		} else {
			mw.updateStatus("Ready")
		}
	})

	mw.state.On(app.EventImageChanged, func(data interface{}) {
		mw.saveBtn.Disable()
		mw.updateStatus("Image loaded")
	})

	mw.state.On(app.EventExtractionDone, func(data interface{}) {
		mw.saveBtn.Enable()
		mw.updateStatus("Extraction complete")
	})

	mw.state.On(app.EventError, func(data interface{}) {
		if err, ok := data.(error); ok {
			mw.updateStatus("Error: " + err.Error())
		}
	})
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) onZoomIn()  { mw.zoomBy(zoomButtonStep) }
func (mw *MainWindow) onZoomOut() { mw.zoomBy(-zoomButtonStep) }

// zoomBy zooms around the center of the visible canvas, the same entry
// point the wheel handler uses.
func (mw *MainWindow) zoomBy(delta float64) {
	size := mw.canvas.Size()
	anchor := geometry.Point2D{X: float64(size.Width) / 2, Y: float64(size.Height) / 2}
	mw.state.Zoom(delta, anchor)
}

func (mw *MainWindow) onGenerate() {
	err := mw.state.Generate(mw.promptBar.Text)
	switch err {
	case nil:
	case app.ErrEmptyPrompt:
		mw.updateStatus("Enter a prompt first")
	case app.ErrBusy:
		mw.updateStatus("Generation already running")
	default:
		mw.updateStatus("Error: " + err.Error())
	}
}

func (mw *MainWindow) onExtract() {
	opts := extract.Options{
		RemoveBackground: mw.removeBG.Checked,
		KeepSize:         mw.keepSize.Checked,
		KeyOut:           mw.keyOut.Checked,
		Key: compositor.Options{
			Tolerance: mw.prefs.Float(prefs.KeyTolerance, compositor.DefaultOptions().Tolerance),
			Softness:  mw.prefs.Float(prefs.KeySoftness, compositor.DefaultOptions().Softness),
		},
	}
	mw.prefs.SetBool(prefs.KeyKeepSize, opts.KeepSize)
	mw.prefs.SetBool(prefs.KeyKeyOut, opts.KeyOut)

	switch err := mw.state.Extract(opts); err {
	case nil:
	case app.ErrNoSelection:
		mw.updateStatus("Close a selection polygon first")
	case app.ErrNoImage:
		mw.updateStatus("Load or generate an image first")
	default:
		mw.updateStatus("Error: " + err.Error())
	}
}

func (mw *MainWindow) onPreferences() {
	dialogs.NewPreferencesDialog(mw.prefs, mw.Window, func() {
		mw.updateStatus("Preferences saved")
	}).Show()
}

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		if err := mw.state.LoadImage(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.saveLastDir(path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".webp"}))
	if dir := mw.lastDir(); dir != nil {
		fd.SetLocation(dir)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveResult() {
	result := mw.state.Extracted()
	if result == nil {
		mw.updateStatus("Nothing to save yet")
		return
	}

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()

		path := writer.URI().Path()
		var data []byte
		var encErr error
		if strings.EqualFold(filepath.Ext(path), ".webp") {
			data, encErr = imageio.EncodeWebP(result)
		} else {
			data, encErr = imageio.EncodePNG(result)
		}
		if encErr != nil {
			dialog.ShowError(encErr, mw.Window)
			return
		}
		if _, err := writer.Write(data); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.saveLastDir(path)
		mw.updateStatus(fmt.Sprintf("Saved %s", filepath.Base(path)))
	}, mw.Window)
	fd.SetFileName("cutout.png")
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".webp"}))
	if dir := mw.lastDir(); dir != nil {
		fd.SetLocation(dir)
	}
	fd.Show()
}

// lastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) lastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir, "")
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir persists the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(filePath))
	if err := mw.prefs.Save(); err != nil {
		mw.updateStatus("Could not save preferences: " + err.Error())
	}
}
