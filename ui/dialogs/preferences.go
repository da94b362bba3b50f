// Package dialogs provides application dialogs.
package dialogs

import (
	"strconv"

	"cutout/internal/compositor"
	"cutout/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// PreferencesDialog edits the backend endpoint and keying parameters.
type PreferencesDialog struct {
	prefs  *prefs.Prefs
	window fyne.Window

	urlEntry       *widget.Entry
	localSegCheck  *widget.Check
	toleranceEntry *widget.Entry
	softnessEntry  *widget.Entry

	// onSave is invoked after the preferences have been written.
	onSave func()
}

// NewPreferencesDialog creates a preferences dialog.
func NewPreferencesDialog(p *prefs.Prefs, window fyne.Window, onSave func()) *PreferencesDialog {
	return &PreferencesDialog{
		prefs:  p,
		window: window,
		onSave: onSave,
	}
}

// Show displays the dialog.
func (d *PreferencesDialog) Show() {
	content := d.createContent()

	dlg := dialog.NewCustomConfirm(
		"Preferences",
		"Save",
		"Cancel",
		content,
		func(save bool) {
			if !save {
				return
			}
			d.applyChanges()
			if d.onSave != nil {
				d.onSave()
			}
		},
		d.window,
	)
	dlg.Resize(fyne.NewSize(420, 0))
	dlg.Show()
}

func (d *PreferencesDialog) createContent() fyne.CanvasObject {
	defaults := compositor.DefaultOptions()

	d.urlEntry = widget.NewEntry()
	d.urlEntry.SetText(d.prefs.String(prefs.KeyBackendURL, prefs.DefaultBackendURL))

	d.localSegCheck = widget.NewCheck("Segment boxes locally (no backend)", nil)
	d.localSegCheck.SetChecked(d.prefs.Bool(prefs.KeyLocalSegment, false))

	d.toleranceEntry = widget.NewEntry()
	d.toleranceEntry.SetText(formatFloat(d.prefs.Float(prefs.KeyTolerance, defaults.Tolerance)))

	d.softnessEntry = widget.NewEntry()
	d.softnessEntry.SetText(formatFloat(d.prefs.Float(prefs.KeySoftness, defaults.Softness)))

	return container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Backend URL", d.urlEntry),
			widget.NewFormItem("Key tolerance", d.toleranceEntry),
			widget.NewFormItem("Key softness", d.softnessEntry),
		),
		d.localSegCheck,
	)
}

// applyChanges writes the edited values back. Unparseable numbers keep
// their previous value.
func (d *PreferencesDialog) applyChanges() {
	d.prefs.SetString(prefs.KeyBackendURL, d.urlEntry.Text)
	d.prefs.SetBool(prefs.KeyLocalSegment, d.localSegCheck.Checked)

	if v, err := strconv.ParseFloat(d.toleranceEntry.Text, 64); err == nil && v >= 0 {
		d.prefs.SetFloat(prefs.KeyTolerance, v)
	}
	if v, err := strconv.ParseFloat(d.softnessEntry.Text, 64); err == nil && v >= 0 {
		d.prefs.SetFloat(prefs.KeySoftness, v)
	}
	_ = d.prefs.Save()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
