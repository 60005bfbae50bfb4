// Command prosefix-correct runs the correction pipeline over a single text
// and writes the run as JSON to stdout or a file
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"prosefix/internal/adapters/languagetool"
	"prosefix/internal/adapters/refiner"
	"prosefix/internal/adapters/spacyd"
	"prosefix/internal/core/checker"
	"prosefix/internal/core/lexicon"
	"prosefix/internal/core/pipeline"
	"prosefix/internal/platform/config"
	"prosefix/internal/platform/logger"
	"prosefix/internal/platform/store"
	correctionsdom "prosefix/internal/services/corrections/domain"
	correctionsrepo "prosefix/internal/services/corrections/repo"
	correctionssvc "prosefix/internal/services/corrections/service"
)

func must(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func readInput(text, file string) (string, error) {
	if text != "" {
		return text, nil
	}
	if file != "" && file != "-" {
		b, err := os.ReadFile(file)
		return string(b), err
	}
	b, err := io.ReadAll(os.Stdin)
	return string(b), err
}

func main() {
	var (
		text     = flag.String("text", "", "text to correct; reads stdin or -file when empty")
		file     = flag.String("file", "", "path to a text file, '-' for stdin")
		out      = flag.String("out", "", "write the run JSON to this file instead of stdout")
		persist  = flag.Bool("persist", false, "store the run in postgres (SERVICE_PGSQL_* env)")
		spacyURL = flag.String("spacy", envOr("SERVICE_SPACY_URL", "http://127.0.0.1:8090"), "spacyd base URL")
		ltURL    = flag.String("lt", envOr("SERVICE_LT_URL", ""), "LanguageTool base URL; empty disables the checker")
		refURL   = flag.String("refiner", envOr("SERVICE_REFINER_URL", ""), "refiner base URL; empty disables the refiner")
		pretty   = flag.Bool("pretty", true, "pretty-print JSON")
	)
	flag.Parse()

	input, err := readInput(*text, *file)
	must(err)
	if strings.TrimSpace(input) == "" {
		must(fmt.Errorf("no input text; pass -text, -file, or pipe stdin"))
	}

	log := logger.Get()
	ctx := context.Background()

	ann := spacyd.New(spacyd.Config{BaseURL: *spacyURL}, *log)

	var chk checker.Checker = checker.Noop()
	if *ltURL != "" {
		chk = languagetool.New(languagetool.Config{BaseURL: *ltURL}, *log)
	}

	var ref checker.Refiner = checker.NoRefiner()
	if *refURL != "" {
		ref = refiner.New(refiner.Config{BaseURL: *refURL}, *log)
	}

	// storage is only opened when the run should be kept
	var st *store.Store
	if *persist {
		pgCfg := config.New().Prefix("SERVICE_PGSQL_")
		st, err = store.Open(ctx, store.Config{
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 2)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			},
		}, store.WithLogger(*log))
		must(err)
		defer func() { _ = st.Close(ctx) }()
	}

	pipe := pipeline.Default(*log, ann, chk, ref, lexicon.MustLoad())

	var db store.TxRunner
	if st != nil {
		db = st.PG
	}
	svc := correctionssvc.New(db, correctionsrepo.NewPG(), pipe)

	run, err := svc.Correct(ctx, correctionsdom.CorrectInput{Text: input, Persist: *persist})
	must(err)

	var enc []byte
	if *pretty {
		enc, err = json.MarshalIndent(run, "", "  ")
	} else {
		enc, err = json.Marshal(run)
	}
	must(err)
	enc = append(enc, '\n')

	if *out != "" {
		must(os.WriteFile(*out, enc, 0o644))
		return
	}
	_, _ = os.Stdout.Write(enc)
}
