package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"streetgrid/internal/debug"
	"streetgrid/internal/geo"
	"streetgrid/internal/mapping"
	"streetgrid/internal/osm"
	"streetgrid/internal/speech"
	"streetgrid/internal/ui"
)

func main() {
	help := flag.Bool("h", false, "Show help message")
	addr := flag.String("addr", "", "Address to center the map on (geocoded via Nominatim)")
	lat := flag.Float64("lat", 0, "Center latitude (used when -addr is not given)")
	lon := flag.Float64("lon", 0, "Center longitude (used when -addr is not given)")
	dataDir := flag.String("data", "", "Load features from local shapefiles in this directory instead of Overpass")
	cellSize := flag.Float64("cell", 25.0, "Initial map scale in meters per character cell")
	speechFile := flag.String("speech", "", "Append announcements to this file (hook for external TTS)")
	debugLog := flag.String("d", "", "Debug log file (e.g., debug.log)")
	flag.Parse()

	if *help {
		fmt.Println("streetgrid - Accessible street maps in the terminal")
		fmt.Println("\nUsage: streetgrid -addr \"12 main st, springfield\" [options]")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// Endpoint overrides may live in a .env file; a missing file is fine.
	_ = godotenv.Load()

	if *debugLog != "" {
		logFile, err := os.Create(*debugLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to create debug log: %v\n", err)
		} else {
			defer logFile.Close()
			debug.SetOutput(logFile)
			debug.Log("streetgrid debug log started")
		}
	}

	var provider mapping.FeatureProvider
	if *dataDir != "" {
		provider = osm.NewShapefileProvider(*dataDir)
	} else if dir := os.Getenv("STREETGRID_DATA_DIR"); dir != "" {
		provider = osm.NewShapefileProvider(dir)
	} else {
		provider = osm.NewOverpassClient(os.Getenv("OVERPASS_URL"))
	}

	centerLat, centerLon := *lat, *lon
	if *addr != "" {
		fmt.Printf("Looking up %q...\n", *addr)
		geocoder := osm.NewGeocoder(os.Getenv("NOMINATIM_URL"))
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		results, err := geocoder.Search(ctx, *addr, 1)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: address lookup failed: %v\n", err)
			os.Exit(1)
		}
		if len(results) == 0 {
			fmt.Fprintf(os.Stderr, "Error: no results for %q\n", *addr)
			os.Exit(1)
		}
		fmt.Printf("Found: %s\n", results[0].DisplayName)
		centerLat, centerLon = results[0].Lat, results[0].Lon
	} else if centerLat == 0 && centerLon == 0 {
		fmt.Fprintln(os.Stderr, "Error: provide -addr or -lat/-lon")
		os.Exit(1)
	}

	config := geo.DefaultViewportConfig()
	config.CellSizeMeters = *cellSize
	network := mapping.NewStreetNetwork(config)

	radius := network.RequiredRadius()
	fmt.Printf("Fetching map data within %dm of %.5f, %.5f...\n", radius, centerLat, centerLon)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	set, failed := mapping.FetchFeatures(ctx, provider, centerLat, centerLon, radius)
	cancel()
	if len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: some map data failed to load: %s\n", strings.Join(failed, ", "))
	}

	if err := network.Load(set, centerLat, centerLon, radius); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to build map grid: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d streets, %d paths, %d buildings, %d intersections\n",
		len(set.Streets), len(set.Paths), len(set.Buildings), len(set.Intersections))

	var voice speech.Output = speech.NewWriter(io.Discard)
	if *speechFile != "" {
		f, err := os.OpenFile(*speechFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to open speech file: %v\n", err)
		} else {
			defer f.Close()
			voice = speech.NewWriter(f)
		}
	}

	app, err := ui.NewApp(network, provider, voice)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create application: %v\n", err)
		os.Exit(1)
	}

	// Run with panic recovery so the terminal is always restored.
	func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(os.Stderr, "\nPanic: %v\n", r)
			}
		}()

		if err := app.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}()
}
