package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rohmanhakim/playlist-resolver/internal/build"
	"github.com/rohmanhakim/playlist-resolver/internal/config"
	"github.com/rohmanhakim/playlist-resolver/internal/fetcher"
	"github.com/rohmanhakim/playlist-resolver/internal/fetcher/cache"
	"github.com/rohmanhakim/playlist-resolver/internal/logging"
	"github.com/rohmanhakim/playlist-resolver/internal/metadata"
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/internal/resolver"
	"github.com/rohmanhakim/playlist-resolver/internal/storage"
	"github.com/rohmanhakim/playlist-resolver/internal/textconv"
	"github.com/rohmanhakim/playlist-resolver/pkg/limiter"
	"github.com/rohmanhakim/playlist-resolver/pkg/timeutil"
	"github.com/spf13/cobra"
)

// unsetDepth marks --max-depth as not given; zero is a valid depth.
const unsetDepth = -1

var (
	cfgFile           string
	maxDepth          int
	noRecurse         bool
	disableUnsafe     bool
	force             bool
	fallback          bool
	baseRef           string
	jsonOutput        bool
	outputDir         string
	parallel          int
	userAgent         string
	timeout           time.Duration
	logLevel          string
	logFormat         string
	descriptionFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "plresolve [flags] <reference>...",
	Short: "Resolve playlist references into their entries.",
	Long: `plresolve takes playlist references (URLs or local paths), works out
which playlist format each one is, and prints the ordered stream of events
it produces: playlists started, entries parsed, playlists ended.

Nested playlists are followed depth-first. Feeds, M3U, PLS, XSPF, OPML,
local directories and podcast catalog pages are understood.`,
	Args:          cobra.MinimumNArgs(1),
	Version:       build.FullVersion(),
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), cfg, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(build.Summary() + "\n")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path, JSON or YAML (e.g., /home/myuser/plresolve.yaml)")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", unsetDepth, "maximum nesting of playlists inside playlists")
	rootCmd.PersistentFlags().BoolVar(&noRecurse, "no-recurse", false, "report nested playlists as entries instead of following them")
	rootCmd.PersistentFlags().BoolVar(&disableUnsafe, "disable-unsafe", false, "skip local directories and desktop launchers")
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "classify every reference from its content, never by name")
	rootCmd.PersistentFlags().BoolVar(&fallback, "fallback", false, "report a reference that is not a playlist as a single entry")
	rootCmd.PersistentFlags().StringVar(&baseRef, "base", "", "base reference for relative arguments and playlist entries")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print events as JSON lines")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "write each reference's events to a file in this directory instead of stdout")
	rootCmd.PersistentFlags().IntVar(&parallel, "parallel", 1, "number of references resolved at the same time")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "text, logfmt or json")
	rootCmd.PersistentFlags().StringVar(&descriptionFormat, "description-format", "", "html or markdown")
}

// InitConfigWithError reads in the config file if set and applies flag
// overrides on top of it, returning any errors.
func InitConfigWithError() (config.Config, error) {
	configBuilder := config.WithDefault()

	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		configBuilder = &cfg
	}

	// Override with CLI flag values where provided
	if maxDepth != unsetDepth {
		configBuilder = configBuilder.WithMaxDepth(maxDepth)
	}

	if noRecurse {
		configBuilder = configBuilder.WithRecurse(false)
	}

	if disableUnsafe {
		configBuilder = configBuilder.WithDisableUnsafe(true)
	}

	if force {
		configBuilder = configBuilder.WithForce(true)
	}

	if fallback {
		configBuilder = configBuilder.WithFallback(true)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if logLevel != "" {
		configBuilder = configBuilder.WithLogLevel(logLevel)
	}

	if logFormat != "" {
		configBuilder = configBuilder.WithLogFormat(logFormat)
	}

	if descriptionFormat != "" {
		configBuilder = configBuilder.WithDescriptionFormat(descriptionFormat)
	}

	return configBuilder.Build()
}

func newRecorder(cfg config.Config, logOutput io.Writer) *metadata.Recorder {
	logger := logging.SetupLogger(logging.Options{
		Level:  cfg.LogLevel(),
		Format: cfg.LogFormat(),
		Output: logOutput,
	})
	return metadata.NewRecorder(logger)
}

// NewResolver wires the production collaborators described by cfg: HTTP and
// local fetchers behind a scheme mux and a content cache, a politeness
// limiter and the description renderer.
func NewResolver(cfg config.Config, metadataSink metadata.MetadataSink) *resolver.Resolver {
	rateLimiter := limiter.NewConcurrentRateLimiter()
	rateLimiter.SetBaseDelay(cfg.BaseDelay())
	rateLimiter.SetJitter(cfg.Jitter())
	rateLimiter.SetRandomSeed(cfg.RandomSeed())
	rateLimiter.SetBackoffParam(timeutil.NewBackoffParam(
		cfg.BackoffInitialDuration(),
		cfg.BackoffMultiplier(),
		cfg.BackoffMaxDuration(),
	))

	mux := fetcher.NewSchemeMux(
		fetcher.NewLocalFetcher(metadataSink),
		fetcher.NewHTTPFetcher(metadataSink, rateLimiter, cfg.HTTPParam()),
	)
	renderer := textconv.New(cfg.DescriptionFormat(), metadataSink)

	return resolver.New(
		fetcher.NewCachingFetcher(mux, cache.NewMemoryCache()),
		metadataSink,
		resolver.WithRegistry(resolver.DefaultRegistry(renderer)),
		resolver.WithPrefixBytes(cfg.PrefixBytes()),
	)
}

// Run resolves refs and prints their events to out. With one reference at a
// time, events are printed as they happen; otherwise each reference's events
// are printed once the batch is done, in argument order. When an output
// directory is set, each reference's events go to their own file and out
// only lists where they were written.
func Run(ctx context.Context, cfg config.Config, refs []string, out io.Writer, logOutput io.Writer) error {
	recorder := newRecorder(cfg, logOutput)
	r := NewResolver(cfg, recorder)
	param := cfg.ResolveParam()

	var store storage.Sink
	if outputDir != "" {
		store = storage.NewLocalSink(recorder)
	}

	var outcomes []resolver.Outcome
	writeFailed := 0
	if parallel <= 1 || len(refs) == 1 {
		for _, ref := range refs {
			var report bytes.Buffer
			p := newPrinter(reportOutput(out, &report, store), jsonOutput)
			outcome := streamOne(ctx, r, ref, param, p)
			outcomes = append(outcomes, outcome)
			if persist(store, ref, report.Bytes(), out) != nil {
				writeFailed++
			}
		}
	} else {
		jobs := make([]resolver.Job, len(refs))
		sinks := make([]*playlist.RecordingSink, len(refs))
		for i, ref := range refs {
			sinks[i] = playlist.NewRecordingSink()
			jobs[i] = resolver.Job{Ref: ref, Base: baseRef, Param: param, Sink: sinks[i]}
		}
		outcomes = r.ResolveMany(ctx, jobs, parallel)
		for i, outcome := range outcomes {
			var report bytes.Buffer
			p := newPrinter(reportOutput(out, &report, store), jsonOutput)
			for _, e := range sinks[i].Events() {
				p.event(e)
			}
			p.outcome(outcome)
			if persist(store, refs[i], report.Bytes(), out) != nil {
				writeFailed++
			}
		}
	}

	var errs []error
	failed := 0
	for _, o := range outcomes {
		if o.Result == playlist.Error || o.Result == playlist.Cancelled {
			failed++
		}
	}
	if failed > 0 {
		errs = append(errs, fmt.Errorf("%d of %d references could not be resolved", failed, len(outcomes)))
	}
	if writeFailed > 0 {
		errs = append(errs, fmt.Errorf("%d of %d reports could not be written to %s", writeFailed, len(outcomes), outputDir))
	}
	return errors.Join(errs...)
}

func reportOutput(out io.Writer, report *bytes.Buffer, store storage.Sink) io.Writer {
	if store == nil {
		return out
	}
	return report
}

// persist writes one reference's report through store and tells out where
// it went. Without a store it does nothing.
func persist(store storage.Sink, ref string, report []byte, out io.Writer) error {
	if store == nil {
		return nil
	}
	ext := "txt"
	if jsonOutput {
		ext = "jsonl"
	}
	result, err := store.Write(outputDir, storage.Artifact{Ref: ref, Content: report, Extension: ext})
	if err != nil {
		fmt.Fprintf(out, "%s -> %s\n", ref, err)
		return err
	}
	fmt.Fprintf(out, "%s -> %s\n", ref, result.Path())
	return nil
}

func streamOne(ctx context.Context, r *resolver.Resolver, ref string, param resolver.ResolveParam, printer *printer) resolver.Outcome {
	events := make(chan playlist.Event)
	done := r.ResolveAsync(ctx, ref, baseRef, param, playlist.NewChannelSink(ctx, events))

	for {
		select {
		case e := <-events:
			printer.event(e)
		case outcome := <-done:
			printer.outcome(outcome)
			return outcome
		}
	}
}

func ResetFlags() {
	cfgFile = ""
	maxDepth = unsetDepth
	noRecurse = false
	disableUnsafe = false
	force = false
	fallback = false
	baseRef = ""
	jsonOutput = false
	outputDir = ""
	parallel = 1
	userAgent = ""
	timeout = 0
	logLevel = ""
	logFormat = ""
	descriptionFormat = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetMaxDepthForTest(depth int) {
	maxDepth = depth
}

func SetNoRecurseForTest(v bool) {
	noRecurse = v
}

func SetDisableUnsafeForTest(v bool) {
	disableUnsafe = v
}

func SetForceForTest(v bool) {
	force = v
}

func SetFallbackForTest(v bool) {
	fallback = v
}

func SetBaseForTest(ref string) {
	baseRef = ref
}

func SetJSONForTest(v bool) {
	jsonOutput = v
}

func SetOutputDirForTest(dir string) {
	outputDir = dir
}

func SetParallelForTest(n int) {
	parallel = n
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetLogLevelForTest(level string) {
	logLevel = level
}

func SetDescriptionFormatForTest(format string) {
	descriptionFormat = format
}
