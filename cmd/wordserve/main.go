// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the WordServe completion server and commandline interface.

WordServe answers top-k query-autocompletion requests over a frozen,
in-memory index of scored multi-word completions. It can operate as a
MessagePack IPC server for editor/generic client integrations, as a
standalone CLI for interactive testing, or as an offline builder that
freezes a "<score> <completion text>" corpus into the binary artifact
the other two modes load.

# Server Mode

The server loads one frozen artifact at startup and answers prefix,
conjunctive, and hybrid top-k requests against it. The
index is immutable after load: there is no online update path.

# CLI Mode

The CLI provides an interactive shell for debugging and testing the
completion engine's functionality.

# Build Mode

-build reads pre-sorted "<score> <completion text>" lines from -data and
writes the frozen artifact to -out.

# Config

Runtime configuration is managed via a `config.toml` file, which supports
settings for the server, engine limits, and CLI. A default configuration is
created automatically if one does not exist.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/Razdeep/autocomplete/internal/cli"
	"github.com/Razdeep/autocomplete/internal/utils"
	"github.com/Razdeep/autocomplete/pkg/artifact"
	"github.com/Razdeep/autocomplete/pkg/build"
	"github.com/Razdeep/autocomplete/pkg/config"
	"github.com/Razdeep/autocomplete/pkg/engine"
	"github.com/Razdeep/autocomplete/pkg/server"
)

const (
	Version = "0.1.0-beta"
	AppName = "wordserve"
	gh      = "https://github.com/Razdeep/autocomplete"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the builder, server, or CLI.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	configFile := flag.String("config", "", "Path to custom config.toml file")
	dataPath := flag.String("data", "data/index.bin", "Path to the frozen index artifact (or build input, with -build)")
	buildMode := flag.Bool("build", false, "Build a frozen index artifact from -data and write it to -out, then exit")
	outPath := flag.String("out", "data/index.bin", "Output artifact path for -build")
	debugMode := flag.Bool("v", false, "Toggle verbose mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	cliConjOnly := flag.Bool("conjunctive", false, "CLI: use the conjunctive pipeline instead of the hybrid topk")
	cliPrefixOnly := flag.Bool("prefix", false, "CLI: use the prefix pipeline instead of the hybrid topk")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of completions to return")
	minLen := flag.Int("prmin", defaultConfig.CLI.DefaultMinLen, "Minimum query length (1 <= n <= prmax)")
	maxLen := flag.Int("prmax", defaultConfig.CLI.DefaultMaxLen, "Maximum query length")
	noFilter := flag.Bool("no-filter", defaultConfig.CLI.DefaultNoFilter, "Disable input filtering (DBG only) - shows all raw completions (numbers, symbols, etc)")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if *buildMode {
		runBuild(*dataPath, *outPath)
		return
	}

	artifactPath := *dataPath
	if resolver, err := utils.NewPathResolver(); err == nil {
		if resolved, err := resolver.GetArtifactPath(*dataPath); err == nil {
			artifactPath = resolved
		}
	}
	log.Debugf("Using artifact at: %s", artifactPath)

	f, err := os.Open(artifactPath)
	if err != nil {
		log.Fatalf("Failed to open artifact %s: %v", artifactPath, err)
	}
	idx, err := artifact.Load(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to load artifact: %v", err)
	}
	log.Debug("Artifact load done")

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: %s", configPath)

	limits := engine.Limits{
		MaxK:                appConfig.Engine.MaxK,
		MaxNumCharsPerQuery: appConfig.Engine.MaxNumCharsPerQuery,
		MaxNumTermsPerQuery: appConfig.Engine.MaxNumTermsPerQuery,
	}
	eng := engine.New(idx, limits)

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	// NOTE: Server interface has vastly different parameters compared to CLI and what it accepts.
	if *cliMode {
		log.SetReportTimestamp(false)
		mode := cli.ModeTopk
		switch {
		case *cliPrefixOnly:
			mode = cli.ModePrefix
		case *cliConjOnly:
			mode = cli.ModeConjunctive
		}
		log.Debug("Input info:",
			"minLen", *minLen,
			"maxLen", *maxLen,
			"limit", *limit,
			"noFilter", *noFilter,
			"mode", mode)

		inputHandler := cli.NewInputHandler(eng, limits, mode, *minLen, *maxLen, *limit, *noFilter)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(eng, limits, appConfig, configPath)

	showStartupInfo(artifactPath)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// runBuild reads pre-sorted "<score> <completion text>" lines from inPath
// and writes the frozen artifact to outPath.
func runBuild(inPath, outPath string) {
	in, err := os.Open(inPath)
	if err != nil {
		log.Fatalf("Failed to open build input %s: %v", inPath, err)
	}
	defer in.Close()

	idx, err := build.Build(in)
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("Failed to create artifact %s: %v", outPath, err)
	}
	defer out.Close()

	if err := artifact.Save(out, idx); err != nil {
		log.Fatalf("Failed to save artifact: %v", err)
	}
	log.Infof("Built artifact with %d completions: %s", idx.Completions.Len(), outPath)
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()

	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["version"] = lipgloss.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})

	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[WordServe] Serves really Fast completions!")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use --help to see available options")
	logger.Print("")
	logger.Print("Find out more at", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dataPath string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" WordServe ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("artifact: ( %s )", dataPath)
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
