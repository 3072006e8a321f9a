package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spicery/ruletok/pkg/config"
	"github.com/spicery/ruletok/pkg/tokenizer"
)

const (
	// api routes
	PingURL     = "/ping"
	TokenizeURL = "/tokenize"
	CompleteURL = "/complete"
	TokenAtURL  = "/token-at"
	RulesURL    = "/rules"
	StylesURL   = "/styles"

	RequestIDHeader = "X-Request-ID"

	// tokenizers kept for per-request options, least recently used dropped
	maxVariants = 8
)

var (
	// api errors
	ErrInvalidParams = errors.New("invalid request parameters")
	ErrTextTooLarge  = errors.New("text is too large")
	ErrTokenNotFound = errors.New("no token at the given position")
	ErrUnknownTheme  = errors.New("unknown theme")
)

// variant identifies a tokenizer configured with per-request options.
type variant struct {
	indent         int
	simplifySpaces bool
}

type Service struct {
	config    config.Config
	tokenizer *tokenizer.Tokenizer
	styles    *tokenizer.TokenStyle
	server    *http.Server
	router    *gin.Engine
	log       zerolog.Logger

	mu       sync.Mutex
	variants *lru.Cache[variant, *tokenizer.Tokenizer]
}

// Returns new service instance tokenizing with tk and rendering with styles.
func NewService(cfg config.Config, tk *tokenizer.Tokenizer, styles *tokenizer.TokenStyle) (*Service, error) {
	if tk == nil {
		return nil, errors.New("api: tokenizer is required")
	}
	if styles == nil {
		styles = tokenizer.NewTokenStyle()
	}

	variants, err := lru.New[variant, *tokenizer.Tokenizer](maxVariants)
	if err != nil {
		return nil, err
	}

	service := &Service{
		config:    cfg,
		tokenizer: tk,
		styles:    styles,
		log:       log.With().Str("component", "api").Logger(),
		variants:  variants,
	}

	server := &http.Server{
		Addr: cfg.HTTPServerAddress,
	}

	// caps how long a client can take to send just the headers
	server.ReadHeaderTimeout = 5 * time.Second
	server.ReadTimeout = 10 * time.Second
	server.WriteTimeout = 15 * time.Second
	server.IdleTimeout = 60 * time.Second

	service.setupRouter(server)

	service.server = server

	return service, nil
}

// tokenizerFor returns the shared tokenizer, or a clone of it when the
// request asks for other options. The maxVariants most recently used clones
// are kept so their cache is reused.
func (service *Service) tokenizerFor(indent *int, simplifySpaces *bool) *tokenizer.Tokenizer {
	want := variant{
		indent:         service.tokenizer.Indent(),
		simplifySpaces: service.tokenizer.SimplifySpaces(),
	}
	base := want
	if indent != nil {
		want.indent = *indent
		if want.indent < 0 {
			want.indent = tokenizer.AutoIndent
		}
	}
	if simplifySpaces != nil {
		want.simplifySpaces = *simplifySpaces
	}
	if want == base {
		return service.tokenizer
	}

	service.mu.Lock()
	defer service.mu.Unlock()
	if tk, ok := service.variants.Get(want); ok {
		return tk
	}
	tk := service.tokenizer.Clone()
	tk.SetIndent(want.indent)
	tk.SetSimplifySpaces(want.simplifySpaces)
	service.variants.Add(want, tk)
	service.log.Debug().Int("indent", want.indent).Bool("simplify_spaces", want.simplifySpaces).Msg("tokenizer variant created")
	return tk
}

// Handler returns the HTTP handler serving the API.
func (service *Service) Handler() http.Handler {
	return service.router
}

// Start runs the HTTP server
func (service *Service) Start() error {
	return service.server.ListenAndServe()
}

func (service *Service) Shutdown(ctx context.Context) error {
	return service.server.Shutdown(ctx)
}
