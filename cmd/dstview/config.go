package main

// Flag names for Viper binding
const (
	// Global flags
	FlagVerbose = "verbose"
	FlagConfig  = "config"
	FlagLogFile = "log-file"

	// Output flags
	FlagFormat   = "format"
	FlagStitches = "stitches"

	// Render command flags
	FlagOutput    = "output"
	FlagWidth     = "width"
	FlagHeight    = "height"
	FlagShowJumps = "show-jumps"

	// Batch command flags
	FlagConcurrency = "concurrency"

	// Watch and view flags
	FlagWatch    = "watch"
	FlagDebounce = "debounce"
)
