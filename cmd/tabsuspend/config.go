package main

// Flag names for Viper binding
const (
	// Global flags
	FlagVerbose    = "verbose"
	FlagConfig     = "config"
	FlagLogFile    = "log-file"
	FlagTabsFile   = "tabs-file"
	FlagSocketPath = "socket-path"

	// Start command flags
	FlagDaemon     = "daemon"
	FlagNoWatch    = "no-watch"
	FlagNoPowerBus = "no-power-probe"

	// Stop command flags
	FlagForce = "force"

	// Events command flags
	FlagFollow = "follow"
	FlagCount  = "count"

	// Output format flags
	FlagJSON = "json"

	// Popup command flags
	FlagPlain = "plain"

	// About command flags
	FlagDonated     = "donated"
	FlagDonateAgain = "donate-again"
)
