package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/podiumlab/podium/internal/config"
	"github.com/podiumlab/podium/internal/history"
	"github.com/podiumlab/podium/internal/judge"
	"github.com/podiumlab/podium/internal/logging"
	"github.com/podiumlab/podium/internal/notify"
	"github.com/podiumlab/podium/internal/pipeline"
	"github.com/podiumlab/podium/internal/raster"
	"github.com/podiumlab/podium/internal/synth"
	"github.com/podiumlab/podium/internal/transcribe"
	"github.com/podiumlab/podium/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the evaluation server",
	Long: `Start the HTTP server that accepts presentation submissions on
POST /evaluate and streams stage events back as NDJSON. History is served
on GET /history/{user_id}; DELETE /history wipes it in dev mode only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if errs := config.Validate(cfg); len(errs) > 0 {
			return fmt.Errorf("invalid config: %s", errs[0])
		}

		log := logging.New(cfg.Logging.Level)
		ctx := cmd.Context()

		store, err := history.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		var limiter *rate.Limiter
		if cfg.Collaborators.RateLimit > 0 {
			limiter = rate.NewLimiter(rate.Limit(cfg.Collaborators.RateLimit), 1)
		}
		judgeClient := judge.NewGeminiClient(cfg.Collaborators.Judge,
			os.Getenv(cfg.Collaborators.Judge.APIKeyEnv), limiter)
		transcriber := transcribe.NewWhisperClient(cfg.Collaborators.Transcriber,
			os.Getenv(cfg.Collaborators.Transcriber.APIKeyEnv))
		rasterizer := raster.NewClient(cfg.Collaborators.Rasterizer)
		synthesizer := synth.NewClient(cfg.Collaborators.Synthesizer)
		mailer := notify.NewMailer(cfg.Notify, os.Getenv(cfg.Notify.PasswordEnv))

		scheduler := pipeline.New(cfg.Pipeline, judgeClient, rasterizer,
			synthesizer, store, mailer, log)

		var resetter web.HistoryResetter
		if cfg.DevMode {
			resetter = store
		}
		server := web.NewServer(scheduler, store, transcriber, resetter,
			cfg.Server.Port, cfg.DevMode, log)
		return server.Start()
	},
}
