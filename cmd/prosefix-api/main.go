// @title         Prosefix API
// @version       0.1.0
// @description   Rule based grammar correction pipeline over HTTP

package main

import (
	"context"

	"prosefix/internal/platform/config"
	"prosefix/internal/platform/logger"
	phttp "prosefix/internal/platform/net/http"
	"prosefix/internal/platform/store"

	"prosefix/internal/adapters/languagetool"
	"prosefix/internal/adapters/refiner"
	"prosefix/internal/adapters/spacyd"
	"prosefix/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_") // pgCfg lives under SERVICE_PGSQL_*
	ltCfg := root.Prefix("SERVICE_LT_")
	spCfg := root.Prefix("SERVICE_SPACY_")
	rfCfg := root.Prefix("SERVICE_REFINER_")

	// bring up logging early
	l := logger.Get()

	// open the platform store (postgres only; runs persist when enabled)
	st, err := store.Open(
		context.Background(),
		store.Config{
			PG: store.PGConfig{
				Enabled:     pgCfg.MayBool("ENABLED", true),
				URL:         pgCfg.MayString("DBURL", ""),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", true),
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// linguistic collaborators shared by every stage
	ann := spacyd.New(spacyd.Config{
		BaseURL: spCfg.MustString("URL"),
		Model:   spCfg.MayString("MODEL", "en_core_web_sm"),
		Timeout: spCfg.MayDuration("TIMEOUT", 0),
	}, *l)

	// prefer an explicit URL; otherwise bootstrap a local server
	ltURL := ltCfg.MayString("URL", "")
	if ltURL == "" {
		lt, err := languagetool.EnsureLocal(context.Background(), languagetool.LocalConfig{
			Dir:  ltCfg.MayString("LOCAL_DIR", ""),
			Port: ltCfg.MayInt("LOCAL_PORT", 8081),
		}, *l)
		if err != nil {
			l.Panic().Err(err).Msg("languagetool bootstrap failed")
		}
		defer func() {
			if err := lt.Stop(); err != nil {
				l.Error().Err(err).Msg("failed to stop languagetool server")
			}
		}()
		ltURL = lt.BaseURL
	}

	chk := languagetool.New(languagetool.Config{
		BaseURL:  ltURL,
		Language: ltCfg.MayString("LANGUAGE", "en-US"),
		Timeout:  ltCfg.MayDuration("TIMEOUT", 0),
	}, *l)

	ref := refiner.New(refiner.Config{
		BaseURL: rfCfg.MayString("URL", ""),
		Timeout: rfCfg.MayDuration("TIMEOUT", 0),
	}, *l)

	// http server (reads CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:        apiCfg,
			Store:         st,
			Logger:        l,
			Annotator:     ann,
			Checker:       chk,
			Refiner:       ref,
			EnableSwagger: apiCfg.MayBool("SWAGGER", true),
		},
	)

	// run
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
