package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spicery/ruletok/pkg/config"
	"github.com/spicery/ruletok/pkg/tokenizer"
	"golang.org/x/sync/errgroup"
)

const (
	version = "0.1.0"
	usage   = `ruletok - A rule driven tokenizer

Usage:
  ruletok [options]

Options:
  -h, --help              Show this help message
  -v, --version           Show version information
  --input <files>         Comma separated input files (defaults to stdin)
  --output <file>         Output file (defaults to stdout)
  --rules <file>          YAML grammar file (defaults to the built-in grammar)
  --make-rules            Print the built-in grammar as YAML
  --format <format>       Output format: json, table or highlight (default json)
  --indent <n>            Indent width: 0 disables INDENT/DEDENT, -1 detects it
  --simplify-spaces       Collapse whitespace runs inside tokens
  --theme <theme>         Highlight theme (default dark)
  --config <file>         Configuration file (defaults to ./app.env when present)
  --strict                Exit with code 1 when some text is not recognized

Examples:
  ruletok                                       # Read from stdin, write JSON lines to stdout
  ruletok --input main.py --format table        # Print a token table
  ruletok --input a.py,b.py --output tokens.json
  ruletok --rules grammar.yaml --input source.txt --format highlight
  ruletok --make-rules > grammar.yaml           # Start a grammar from the built-in one
  echo "if x: pass" | ruletok

The json format outputs one JSON token object per line.
`
)

const (
	formatJSON      = "json"
	formatTable     = "table"
	formatHighlight = "highlight"
)

var errUnknownTokens = errors.New("text contains unknown tokens")

type options struct {
	showHelp       bool
	showVersion    bool
	makeRules      bool
	simplifySpaces bool
	strict         bool
	inputs         string
	output         string
	rulesFile      string
	format         string
	theme          string
	configFile     string
	indent         int

	set map[string]bool
}

// source is one tokenized input.
type source struct {
	name   string
	tokens *tokenizer.Tokens
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("ruletok", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.showHelp, "h", false, "Show help")
	fs.BoolVar(&opts.showHelp, "help", false, "Show help")
	fs.BoolVar(&opts.showVersion, "v", false, "Show version")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version")
	fs.BoolVar(&opts.makeRules, "make-rules", false, "Print the built-in grammar as YAML")
	fs.BoolVar(&opts.simplifySpaces, "simplify-spaces", false, "Collapse whitespace runs inside tokens")
	fs.BoolVar(&opts.strict, "strict", false, "Exit with code 1 on unknown tokens")
	fs.StringVar(&opts.inputs, "input", "", "Comma separated input files (defaults to stdin)")
	fs.StringVar(&opts.output, "output", "", "Output file (defaults to stdout)")
	fs.StringVar(&opts.rulesFile, "rules", "", "YAML grammar file (optional)")
	fs.StringVar(&opts.format, "format", formatJSON, "Output format: json, table or highlight")
	fs.StringVar(&opts.theme, "theme", "", "Highlight theme")
	fs.StringVar(&opts.configFile, "config", "", "Configuration file")
	fs.IntVar(&opts.indent, "indent", 0, "Indent width")

	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if len(fs.Args()) > 0 {
		return nil, fmt.Errorf("unexpected positional arguments, use --input and --output flags instead")
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	switch opts.format {
	case formatJSON, formatTable, formatHighlight:
	default:
		return nil, fmt.Errorf("unknown format '%s'", opts.format)
	}
	return opts, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		fmt.Fprint(stderr, usage)
		return 1
	}

	if opts.showHelp {
		fmt.Fprint(stdout, usage)
		return 0
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "ruletok version %s\n", version)
		return 0
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	logger := newLogger(cfg, stderr)

	output, closeOutput, err := openOutput(opts.output, stdout)
	if err != nil {
		logger.Error().Err(err).Str("file", opts.output).Msg("cannot create output file")
		return 1
	}

	if opts.makeRules {
		err = writeDefaultGrammar(output)
	} else {
		err = tokenizeInputs(opts, cfg, logger, stdin, output)
	}

	if closeErr := closeOutput(); closeErr != nil && err == nil {
		err = fmt.Errorf("cannot close output file '%s': %w", opts.output, closeErr)
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUnknownTokens):
		logger.Warn().Err(err).Msg("tokenization incomplete")
		return 1
	default:
		logger.Error().Err(err).Msg("tokenization failed")
		return 1
	}
}

func loadConfig(filename string) (config.Config, error) {
	if filename != "" {
		return config.LoadConfigFile(filename)
	}
	return config.LoadConfig(".")
}

func newLogger(cfg config.Config, stderr io.Writer) zerolog.Logger {
	var w io.Writer = stderr
	if cfg.IsDevelopment() {
		w = zerolog.ConsoleWriter{Out: stderr}
	}
	return zerolog.New(w).Level(cfg.Level()).With().Timestamp().Logger()
}

func openOutput(filename string, stdout io.Writer) (io.Writer, func() error, error) {
	if filename == "" {
		return stdout, func() error { return nil }, nil
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, nil, err
	}
	return file, file.Close, nil
}

// writeDefaultGrammar outputs the built-in grammar in YAML format.
func writeDefaultGrammar(w io.Writer) error {
	data, err := tokenizer.DefaultGrammar().Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// buildTokenizer loads the grammar and applies configuration, then flags.
func buildTokenizer(opts *options, cfg config.Config, logger zerolog.Logger) (*tokenizer.Tokenizer, *tokenizer.TokenStyle, error) {
	grammar := tokenizer.DefaultGrammar()
	rulesFile := cfg.RulesFile
	if opts.set["rules"] {
		rulesFile = opts.rulesFile
	}
	if rulesFile != "" {
		g, err := tokenizer.LoadGrammarFile(rulesFile)
		if err != nil {
			return nil, nil, err
		}
		grammar = g
	}

	tk, styles, err := grammar.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid grammar: %w", err)
	}
	tk.SetLogger(logger)

	if cfg.Indent != nil {
		tk.SetIndent(*cfg.Indent)
	}
	if opts.set["indent"] {
		tk.SetIndent(opts.indent)
	}
	if cfg.SimplifySpaces != nil {
		tk.SetSimplifySpaces(*cfg.SimplifySpaces)
	}
	if opts.set["simplify-spaces"] {
		tk.SetSimplifySpaces(opts.simplifySpaces)
	}

	theme := cfg.Theme
	if opts.set["theme"] {
		theme = opts.theme
	}
	styles.SetTheme(theme)

	logger.Debug().Str("rules", rulesFile).Int("indent", tk.Indent()).Msg("tokenizer ready")
	return tk, styles, nil
}

func tokenizeInputs(opts *options, cfg config.Config, logger zerolog.Logger, stdin io.Reader, output io.Writer) error {
	tk, styles, err := buildTokenizer(opts, cfg, logger)
	if err != nil {
		return err
	}

	var names []string
	for _, name := range strings.Split(opts.inputs, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}

	var sources []source
	if len(names) == 0 {
		tokens, err := tk.TokenizeReader(stdin)
		if err != nil {
			return err
		}
		sources = []source{{name: "<stdin>", tokens: tokens}}
	} else {
		sources, err = tokenizeFiles(tk, names, cfg.Workers)
		if err != nil {
			return err
		}
	}

	unknown := 0
	for _, src := range sources {
		if len(sources) > 1 {
			if err := writeHeader(output, opts.format, src.name); err != nil {
				return err
			}
		}
		if err := writeTokens(output, opts.format, src.tokens, styles); err != nil {
			return err
		}
		for _, tok := range src.tokens.All() {
			if tok.IsUnknown() {
				unknown++
			}
		}
	}

	logger.Debug().Int("inputs", len(sources)).Interface("cache", tk.CacheStats()).Msg("inputs tokenized")
	if opts.strict && unknown > 0 {
		return fmt.Errorf("%w: %d found", errUnknownTokens, unknown)
	}
	return nil
}

// tokenizeFiles tokenizes files concurrently, results in input order.
func tokenizeFiles(tk *tokenizer.Tokenizer, names []string, workers int) ([]source, error) {
	if len(names) > 1 {
		tk.SetMassUpdate(true)
		defer tk.SetMassUpdate(false)
	}

	sources := make([]source, len(names))
	var g errgroup.Group
	g.SetLimit(max(1, workers))
	for i, name := range names {
		g.Go(func() error {
			data, err := os.ReadFile(name)
			if err != nil {
				return fmt.Errorf("cannot read file '%s': %w", name, err)
			}
			sources[i] = source{name: name, tokens: tk.Tokenize(string(data))}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

func writeHeader(w io.Writer, format, name string) error {
	var err error
	if format == formatJSON {
		var data []byte
		data, err = json.Marshal(map[string]string{"file": name})
		if err == nil {
			_, err = fmt.Fprintln(w, string(data))
		}
	} else {
		_, err = fmt.Fprintf(w, "==> %s <==\n", name)
	}
	return err
}

func writeTokens(w io.Writer, format string, tokens *tokenizer.Tokens, styles *tokenizer.TokenStyle) error {
	switch format {
	case formatTable:
		if _, err := fmt.Fprintf(w, "| %5s | %5s | %2s | %-30s | %2s | %s\n", "col", "row", "in", "type", "ln", "text"); err != nil {
			return err
		}
		for _, tok := range tokens.All() {
			if _, err := fmt.Fprintln(w, tok.String()); err != nil {
				return err
			}
		}
	case formatHighlight:
		var sb strings.Builder
		for _, tok := range tokens.All() {
			switch tok.Type() {
			case tokenizer.Indent, tokenizer.Dedent, tokenizer.WrongIndent, tokenizer.WrongDedent:
				// the indentation is already part of the next token
				continue
			}
			sb.WriteString(styles.Style(tok.Type()).Render(tok.Raw()))
		}
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	default:
		for _, tok := range tokens.All() {
			data, err := json.Marshal(tok)
			if err != nil {
				return fmt.Errorf("JSON encoding error: %w", err)
			}
			if _, err := fmt.Fprintln(w, string(data)); err != nil {
				return err
			}
		}
	}
	return nil
}
