package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ideagen",
	Short: "Aegis Ideas - 투자 아이디어 생성 파이프라인",
	Long: `Aegis Ideas Unified CLI

Planning → Research → Analysis → Compliance → Synthesis
5단계 에이전트 파이프라인으로 투자 아이디어를 생성하고 필터링/랭킹합니다.

Usage:
  go run ./cmd/ideagen [command]

Examples:
  go run ./cmd/ideagen api
  go run ./cmd/ideagen generate --user u1 --horizon long --sector technology
  go run ./cmd/ideagen generate --profile config/profiles/growth_weekly.yaml
  go run ./cmd/ideagen scheduler start
  go run ./cmd/ideagen check`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}
