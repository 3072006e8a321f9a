package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spicery/ruletok/pkg/api"
	"github.com/spicery/ruletok/pkg/config"
	"github.com/spicery/ruletok/pkg/tokenizer"
	"golang.org/x/sync/errgroup"
)

var interruptSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGINT,
}

func main() {
	// reading app.env config file
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot read config file")
	}

	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Configure the validator to use json tags for field names in errors
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}

	tk, styles, err := newTokenizer(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("rules", cfg.RulesFile).Msg("cannot build tokenizer")
	}

	// stop() or a signal catch makes context Done
	ctx, stop := signal.NotifyContext(context.Background(), interruptSignals...)
	defer stop()

	waitGroup, ctx := errgroup.WithContext(ctx)

	RunGinServer(ctx, waitGroup, cfg, tk, styles)

	err = waitGroup.Wait()
	if err != nil {
		log.Fatal().Err(err).Msg("error from wait group")
	}
}

// newTokenizer builds the tokenizer from RULES_FILE, or from the built-in
// grammar, then applies the configured options.
func newTokenizer(cfg config.Config) (*tokenizer.Tokenizer, *tokenizer.TokenStyle, error) {
	grammar := tokenizer.DefaultGrammar()
	if cfg.RulesFile != "" {
		g, err := tokenizer.LoadGrammarFile(cfg.RulesFile)
		if err != nil {
			return nil, nil, err
		}
		grammar = g
	}

	tk, styles, err := grammar.Build()
	if err != nil {
		return nil, nil, err
	}
	tk.SetLogger(log.With().Str("component", "tokenizer").Logger())

	if cfg.Indent != nil {
		tk.SetIndent(*cfg.Indent)
	}
	if cfg.SimplifySpaces != nil {
		tk.SetSimplifySpaces(*cfg.SimplifySpaces)
	}
	styles.SetTheme(cfg.Theme)

	log.Info().Int("rules", len(tk.Rules())).Int("indent", tk.Indent()).Msg("tokenizer ready")
	return tk, styles, nil
}

func RunGinServer(
	ctx context.Context,
	waitGroup *errgroup.Group,
	cfg config.Config,
	tk *tokenizer.Tokenizer,
	styles *tokenizer.TokenStyle,
) {
	service, err := api.NewService(cfg, tk, styles)
	if err != nil {
		log.Error().Err(err).Msg("cannot create HTTP service")
		return
	}

	waitGroup.Go(func() error {
		log.Info().Msgf("start HTTP server at %s", cfg.HTTPServerAddress)

		err := service.Start()
		if err != nil {
			// returned once the server begins shutting down
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			log.Error().Err(err).Msg("cannot start HTTP server")
		}

		return err
	})

	waitGroup.Go(func() error {
		<-ctx.Done()

		log.Info().Msg("HTTP server: graceful shutdown")

		toCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := service.Shutdown(toCtx)
		if err != nil {
			log.Error().Err(err).Msg("cannot shutdown HTTP server gracefully")
		}

		tk.ClearCache(true)
		log.Info().Msg("HTTP server is stopped")

		return err
	})
}
