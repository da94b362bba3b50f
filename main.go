// Package main provides the entry point for the Cutout application.
package main

import (
	"flag"
	"log"

	"cutout/internal/app"
	"cutout/internal/backend"
	"cutout/internal/version"
	"cutout/ui/mainwindow"
	"cutout/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const appTitle = "Cutout"

func main() {
	backendURL := flag.String("backend", "", "collaborator service base URL (overrides preferences)")
	localSegment := flag.Bool("local-segment", false, "run box segmentation locally instead of via the backend")
	stub := flag.Bool("stub", false, "use stub collaborators (for offline development)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s (%s)", appTitle, version.Version, version.GitCommit)

	appPrefs := prefs.Load()

	url := *backendURL
	if url == "" {
		url = appPrefs.String(prefs.KeyBackendURL, prefs.DefaultBackendURL)
	}

	var b backend.Backend = backend.NewHTTPBackend(url)
	if *stub {
		b = &backend.Stub{}
	}

	state := app.NewState(b)
	if *localSegment || appPrefs.Bool(prefs.KeyLocalSegment, false) {
		state.SetSegmenter(backend.NewGrabCutSegmenter())
	}

	fyneApp := fyneapp.New()
	win := mainwindow.New(fyneApp, state, appPrefs)

	if flag.NArg() > 0 {
		path := flag.Arg(0)
		if err := state.LoadImage(path); err != nil {
			log.Printf("Failed to load image %s: %v", path, err)
		}
	}

	win.ShowAndRun()
}
