package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/icscrawl/crawler/internal/config"
	"github.com/icscrawl/crawler/internal/logging"
	"github.com/icscrawl/crawler/internal/supervisor"
	"github.com/icscrawl/crawler/pkg/stopword"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	seedURLs     []string
	saveFile     string
	threadsCount int
	timeDelay    time.Duration
	cacheServer  string
	restart      bool
	allowedHosts []string
)

var rootCmd = &cobra.Command{
	Use:   "crawler",
	Short: "A multi-threaded web crawler for the UCI ICS domain family.",
	Long: `crawler discovers, downloads, and indexes pages across a configured set
of allowed hosts, maintaining a durable frontier so a crashed or restarted
run can resume from where it left off.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(seedURLs) == 0 {
			return fmt.Errorf("--seed-url is required")
		}

		cfg, err := BuildConfig()
		if err != nil {
			return err
		}

		logger, err := logging.NewProduction()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		defer logger.Sync()

		sup := supervisor.New(cfg, restart, logger, stopword.Default())
		return sup.Run(context.Background())
	},
}

// Execute runs the root command, exiting with status 1 on error. Called
// once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path")
	rootCmd.PersistentFlags().StringArrayVar(&seedURLs, "seed-url", []string{}, "one or more starting URLs (can be repeated)")
	rootCmd.PersistentFlags().StringVar(&saveFile, "save-file", "crawl", "path prefix for the durable store (store is <save-file>.db)")
	rootCmd.PersistentFlags().IntVar(&threadsCount, "threads", 0, "number of worker goroutines")
	rootCmd.PersistentFlags().DurationVar(&timeDelay, "time-delay", 0, "minimum delay between fetches to the same host")
	rootCmd.PersistentFlags().StringVar(&cacheServer, "cache-server", "", "opaque cache server address passed to the downloader")
	rootCmd.PersistentFlags().BoolVar(&restart, "restart", false, "delete the existing durable store and start over from the seed URLs")
	rootCmd.PersistentFlags().StringArrayVar(&allowedHosts, "allowed-host", []string{}, "explicit hostname allowlist")
}

// BuildConfig resolves the current flag values into a config.Config,
// preferring --config-file when set.
func BuildConfig() (config.Config, error) {
	if cfgFile != "" {
		return config.WithConfigFile(cfgFile)
	}

	urls, err := parseSeedURLs(seedURLs)
	if err != nil {
		return config.Config{}, err
	}

	builder := config.WithDefault(urls)
	if saveFile != "" {
		builder.WithSaveFile(saveFile)
	}
	if threadsCount > 0 {
		builder.WithThreadsCount(threadsCount)
	}
	if timeDelay > 0 {
		builder.WithTimeDelay(timeDelay)
	}
	if cacheServer != "" {
		builder.WithCacheServer(cacheServer)
	}
	if len(allowedHosts) > 0 {
		builder.WithAllowedHosts(toSet(allowedHosts))
	}

	return builder.Build()
}

func parseSeedURLs(raw []string) ([]url.URL, error) {
	urls := make([]url.URL, 0, len(raw))
	for _, s := range raw {
		u, err := url.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid seed url %q: %w", s, err)
		}
		urls = append(urls, *u)
	}
	return urls, nil
}

// ResetFlags restores every package-level flag variable to its flag default.
// Used between test cases so cobra's shared flag state doesn't leak.
func ResetFlags() {
	cfgFile = ""
	seedURLs = []string{}
	saveFile = "crawl"
	threadsCount = 0
	timeDelay = 0
	cacheServer = ""
	restart = false
	allowedHosts = []string{}
}

// SetSeedURLsForTest sets the --seed-url flag value directly, bypassing
// cobra flag parsing.
func SetSeedURLsForTest(urls []string) {
	seedURLs = urls
}

// SetSaveFileForTest sets the --save-file flag value directly.
func SetSaveFileForTest(path string) {
	saveFile = path
}

// SetThreadsCountForTest sets the --threads flag value directly.
func SetThreadsCountForTest(n int) {
	threadsCount = n
}

// SetConfigFileForTest sets the --config-file flag value directly.
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
