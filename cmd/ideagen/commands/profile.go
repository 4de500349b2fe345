package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-ideas/internal/profile"
)

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "생성 프로필 관리",
}

var profileValidateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "프로필 YAML 검증",
	Long: `프로필 파일을 파싱하고 검증합니다 (알 수 없는 필드, 잘못된 enum, cron 스케줄).

Example:
  go run ./cmd/ideagen profile validate config/profiles/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProfileValidate,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileValidateCmd)
}

func runProfileValidate(cmd *cobra.Command, args []string) error {
	profiles, err := profile.LoadAll(args)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	for i, p := range profiles {
		hash, err := profile.Hash(p)
		if err != nil {
			return fmt.Errorf("hash %s: %w", args[i], err)
		}

		params := p.GenerationParameters()
		PrintSuccess(fmt.Sprintf("%s (v%d)", p.Meta.ProfileID, p.Meta.Version))
		PrintKeyValue("file", args[i], 10)
		PrintKeyValue("schedule", orDash(p.Meta.Schedule), 10)
		PrintKeyValue("horizon", orDash(string(params.InvestmentHorizon)), 10)
		PrintKeyValue("risk", orDash(string(params.RiskTolerance)), 10)
		PrintKeyValue("sectors", orDash(strings.Join(params.Sectors, ", ")), 10)
		PrintKeyValue("max ideas", fmt.Sprintf("%d", params.MaxIdeas()), 10)
		PrintKeyValue("hash", hash[:12], 10)
	}

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
