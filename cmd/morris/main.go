package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"morris/internal/app"
	"morris/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "engine config JSON file")
	mode := flag.String("mode", "ai", "starting mode: ai or pvp")
	depth := flag.Int("depth", app.DefaultSessionDepth, "search depth for the computer player")
	timeMs := flag.Int("time", int(app.DefaultSessionTimeLimit.Milliseconds()), "search time limit in milliseconds, 0 for none")
	verbose := flag.Bool("v", false, "log search diagnostics to stderr")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *configPath != "" {
		if err := config.LoadEngineConfig(*configPath); err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("config-load-failed")
		}
	}

	session := app.NewSession(config.GetEngineConfig().Eval, log.Logger)
	for _, line := range []string{fmt.Sprintf("set depth %d", *depth), fmt.Sprintf("set time %d", *timeMs)} {
		if _, err := session.Exec(line); err != nil {
			log.Fatal().Err(err).Str("command", line).Msg("setup-failed")
		}
	}
	if out, _ := session.Exec("new " + *mode); !strings.HasPrefix(out, "New game started") {
		fmt.Fprintln(os.Stderr, out)
		os.Exit(2)
	}

	if err := run(session, os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("session-failed")
	}
}

// run feeds lines to the session until quit or end of input.
func run(session *app.Session, in io.Reader, out io.Writer) error {
	board, _ := session.Exec("board")
	fmt.Fprintln(out, board)
	fmt.Fprint(out, "> ")

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		reply, err := session.Exec(scanner.Text())
		if errors.Is(err, app.ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}
		if reply != "" {
			fmt.Fprintln(out, reply)
		}
		if !session.Over() {
			board, _ := session.Exec("board")
			fmt.Fprintln(out, board)
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}
