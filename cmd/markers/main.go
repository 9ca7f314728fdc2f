package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chpetty/ccmap/internal/config"
	"github.com/chpetty/ccmap/internal/geo"
	"github.com/chpetty/ccmap/internal/logger"
	"github.com/chpetty/ccmap/internal/marker"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input      string `short:"i" long:"in"     description:"Input GeoJSON file. Reads from stdin if empty"`
	Output     string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format     string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE" description:"Optional configuration file for popup layout"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	fields := config.DefaultPopup()
	if opts.ConfigFile != "" {
		var err error
		if fields, err = config.LoadPopup(opts.ConfigFile); err != nil {
			log.Fatal().Err(err).Msg("Failed to load popup layout")
		}
	}

	// Read Input
	var (
		fc  geo.FeatureCollection
		err error
	)
	if opts.Input != "" {
		fc, err = geo.LoadFile(opts.Input)
	} else {
		fc, err = geo.Decode(os.Stdin)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read locations")
	}

	// Icons are served by the server only, so exported markers carry none.
	markers := marker.NewBuilder(fields, nil).Build(fc)

	// marshal
	var outputData []byte
	if opts.Format == "yaml" {
		outputData, err = yaml.Marshal(markers)
	} else {
		outputData, err = json.MarshalIndent(markers, "", "  ")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal markers")
	}

	if opts.Output == "" {
		fmt.Println(string(outputData))
		return
	}

	if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
		log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output")
	}

	log.Info().
		Int("markers", len(markers)).
		Str("path", opts.Output).
		Str("format", opts.Format).
		Msg("Markers exported")
}
