// Package cli 实现 taleteller 命令行
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"taleteller/internal/infrastructure/apiclient"
	apperrors "taleteller/pkg/errors"
	"taleteller/pkg/logger"
)

// Version 版本信息，构建时注入
var Version = "dev"

var (
	apiURL  string
	verbose bool
	timeout time.Duration
)

// RootCmd 顶层命令
var RootCmd = &cobra.Command{
	Use:   "taleteller",
	Short: "AI-assisted interactive story writing",
	Long:  "Write stories scene by scene with grammar suggestions, AI plot branches, illustrations and PDF export.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.InitWithWriter(os.Stderr, level, "text")
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Backend base URL (default: $TALETELLER_API or http://localhost:5000)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
	RootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Per-request timeout")
}

func apiBase() string {
	if apiURL != "" {
		return apiURL
	}
	if env := os.Getenv("TALETELLER_API"); env != "" {
		return env
	}
	return "http://localhost:5000"
}

func newClient(sessionID string) *apiclient.Client {
	opts := []apiclient.Option{apiclient.WithTimeout(timeout)}
	if sessionID != "" {
		opts = append(opts, apiclient.WithSessionID(sessionID))
	}
	return apiclient.New(apiBase(), opts...)
}

// userMessage 面向用户的错误文本，不含上游细节
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	if appErr.Detail != "" {
		return appErr.Message + ": " + appErr.Detail
	}
	return appErr.Message
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %s\n", msg, userMessage(err))
	os.Exit(1)
}
