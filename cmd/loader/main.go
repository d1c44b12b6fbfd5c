package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
	"gitlab.com/stephen-fox/reqloader/config"
	"gitlab.com/stephen-fox/reqloader/loader"
)

const (
	configArg     = "c"
	executableArg = "exe"
	logFileArg    = "log"
	verboseArg    = "v"
	helpArg       = "h"

	defaultConfigPath = "loader.toml"

	appName = "loader"
	usage   = appName + `
DESCRIPTION
  Spawns a target program and services its requests. The loader
  publishes the handle of a hidden window through a named shared
  memory region, then starts the target. The target sends requests
  to the window and blocks until the loader replies. The loader exits
  when the target exits or the window is closed.

USAGE
  ` + appName + ` [options]

EXAMPLES:
  Use loader.toml from the working directory:
    $ ` + appName + `

  Override the executable and enable verbose logging:
    $ ` + appName + ` -` + executableArg + ` game.exe -` + verboseArg + `

OPTIONS
`
)

func main() {
	log.SetFlags(0)

	config.DefaultExitFn = func(err error) {
		log.Fatalln("fatal:", err)
	}

	err := mainWithError()
	if err != nil {
		log.Fatalln("fatal:", err)
	}
}

func mainWithError() error {
	help := flag.Bool(
		helpArg,
		false,
		"Display this information")

	configPath := flag.String(
		configArg,
		defaultConfigPath,
		"The TOML config file path. Defaults are used if the default file does not exist")

	executable := flag.String(
		executableArg,
		"",
		"The program to spawn (overrides the config file)")

	logFile := flag.String(
		logFileArg,
		"",
		"The log file path (overrides the config file)")

	verbose := flag.Bool(
		verboseArg,
		false,
		"Log every notification and request")

	flag.Parse()

	if *help {
		os.Stderr.WriteString(usage)
		flag.PrintDefaults()
		os.Exit(1)
	}

	var c config.Config
	if isFlagSet(configArg) {
		c = config.LoadOrExit(*configPath)
	} else {
		var err error
		c, err = loadDefaultConfig(*configPath)
		if err != nil {
			return err
		}
	}

	if *executable != "" {
		c.Executable = *executable
	}

	if *logFile != "" {
		c.LogFile = *logFile
	}

	if *verbose {
		c.Verbose = true
	}

	err := c.Validate()
	if err != nil {
		return err
	}

	logOutput := io.Writer(os.Stderr)

	if c.LogFile != "" {
		f, err := os.Create(c.LogFile)
		if err != nil {
			return fmt.Errorf("failed to create log file - %w", err)
		}
		defer f.Close()

		logOutput = io.MultiWriter(os.Stderr, f)
	}

	logger := log.New(logOutput,
		fmt.Sprintf("[%s] ", uuid.NewString()),
		log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	loader.DefaultExitFn = func(err error) {
		logger.Fatalln("fatal:", err)
	}

	loader.RunOrExit(loader.ConfigFromFile(c, logger))

	return nil
}

// loadDefaultConfig loads the default config file. If it does not
// exist, the defaults are used.
func loadDefaultConfig(configPath string) (config.Config, error) {
	c, err := config.Load(configPath)
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, os.ErrNotExist):
		return config.Default(), nil
	default:
		return config.Config{}, err
	}
}

func isFlagSet(name string) bool {
	var set bool

	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})

	return set
}
