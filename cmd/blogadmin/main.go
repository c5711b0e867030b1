// Command blogadmin manages blog posts through the blog API.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rpupo63/portfolio-blog-backend/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	apiURL   string
	apiToken string
	timeout  time.Duration
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "blogadmin",
	Short: "Manage the portfolio blog",
	Long: `blogadmin is the admin console of the portfolio blog.

Every command except show and whoami requires a token whose identity has the
admin role. The token and API address are read from --token / BLOG_API_TOKEN
and --api / BLOG_API_URL.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(level).With().Timestamp().Logger()
	},
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("BLOG_API_URL", "http://localhost:8080"), "Blog API base URL (or set BLOG_API_URL)")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("BLOG_API_TOKEN"), "Bearer token (or set BLOG_API_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(listCmd, showCmd, createCmd, editCmd, deleteCmd, grantAdminCmd, uploadCmd, whoamiCmd)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func newClient() *client.Client {
	return client.New(apiURL, apiToken)
}

// promptConfirmer asks on out and reads a y/N answer from in.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	answer, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
