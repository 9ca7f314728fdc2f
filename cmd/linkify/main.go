package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/chpetty/ccmap/internal/logger"
	"github.com/chpetty/ccmap/internal/textfmt"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Args struct {
		Text []string `positional-arg-name:"TEXT" description:"Text to format. Reads stdin line by line if empty"`
	} `positional-args:"yes"`
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

	if len(opts.Args.Text) > 0 {
		fmt.Println(textfmt.Format(strings.Join(opts.Args.Text, " ")))
		return
	}

	out := bufio.NewWriter(os.Stdout)
	defer func() { _ = out.Flush() }()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		_, _ = fmt.Fprintln(out, textfmt.Format(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		_ = out.Flush()
		log.Fatal().Err(err).Msg("Failed to read stdin")
	}
}
