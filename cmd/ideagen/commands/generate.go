package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-ideas/internal/brain"
	"github.com/wonny/aegis-ideas/internal/contracts"
	"github.com/wonny/aegis-ideas/internal/profile"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "투자 아이디어 1회 생성",
	Long: `파이프라인을 한 번 실행하고 랭킹된 아이디어를 출력합니다.

파라미터는 플래그 또는 --profile YAML 로 지정합니다.
--profile 사용 시 명시적으로 준 플래그가 프로필 값을 덮어씁니다.

Example:
  go run ./cmd/ideagen generate --user u1 --horizon long --risk moderate --sector technology
  go run ./cmd/ideagen generate --profile config/profiles/income_daily.yaml --json`,
	RunE: runGenerate,
}

var genFlags struct {
	profilePath   string
	userID        string
	requestID     string
	horizon       string
	risk          string
	sectors       []string
	assetClasses  []string
	geography     []string
	exclude       []string
	minConfidence float64
	maxIdeas      int
	audience      []string
	jurisdictions []string
	esg           bool
	jsonOutput    bool
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&genFlags.profilePath, "profile", "", "프로필 YAML 경로")
	f.StringVar(&genFlags.userID, "user", "cli", "사용자 ID")
	f.StringVar(&genFlags.requestID, "request-id", "", "요청 ID (default: uuid)")
	f.StringVar(&genFlags.horizon, "horizon", "", "투자 기간 (short|medium|long)")
	f.StringVar(&genFlags.risk, "risk", "", "위험 성향 (conservative|moderate|aggressive)")
	f.StringSliceVar(&genFlags.sectors, "sector", nil, "섹터 (반복 가능)")
	f.StringSliceVar(&genFlags.assetClasses, "asset-class", nil, "자산군 (stock, etf, ...)")
	f.StringSliceVar(&genFlags.geography, "geography", nil, "지역")
	f.StringSliceVar(&genFlags.exclude, "exclude", nil, "제외 종목 (이름 또는 티커)")
	f.Float64Var(&genFlags.minConfidence, "min-confidence", 0, "최소 신뢰도 (0-1)")
	f.IntVar(&genFlags.maxIdeas, "max-ideas", contracts.DefaultMaximumIdeas, "최대 아이디어 수")
	f.StringSliceVar(&genFlags.audience, "audience", nil, "대상 투자자 (retail, accredited, institutional)")
	f.StringSliceVar(&genFlags.jurisdictions, "jurisdiction", nil, "규제 관할 (US, EU, ...)")
	f.BoolVar(&genFlags.esg, "esg", true, "ESG 검토 포함")
	f.BoolVar(&genFlags.jsonOutput, "json", false, "결과를 JSON 으로 출력")
}

// buildGenerateRequest merges the profile (if any) with explicitly set flags
func buildGenerateRequest(cmd *cobra.Command) (*contracts.GenerationRequest, error) {
	req := &contracts.GenerationRequest{UserID: genFlags.userID}

	if genFlags.profilePath != "" {
		p, _, err := profile.Load(genFlags.profilePath)
		if err != nil {
			return nil, err
		}
		req = p.Request("")
		if cmd.Flags().Changed("user") {
			req.UserID = genFlags.userID
		}
	}

	flags := cmd.Flags()
	params := &req.Parameters
	req.RequestID = genFlags.requestID

	if flags.Changed("horizon") {
		params.InvestmentHorizon = contracts.TimeHorizon(genFlags.horizon)
	}
	if flags.Changed("risk") {
		params.RiskTolerance = contracts.RiskTolerance(genFlags.risk)
	}
	if flags.Changed("sector") {
		params.Sectors = genFlags.sectors
	}
	if flags.Changed("asset-class") {
		params.AssetClasses = make([]contracts.InvestmentType, 0, len(genFlags.assetClasses))
		for _, c := range genFlags.assetClasses {
			params.AssetClasses = append(params.AssetClasses, contracts.InvestmentType(c))
		}
	}
	if flags.Changed("geography") {
		params.Geography = genFlags.geography
	}
	if flags.Changed("exclude") {
		params.ExcludedInvestments = genFlags.exclude
	}
	if flags.Changed("min-confidence") {
		params.MinimumConfidence = contracts.Float64(genFlags.minConfidence)
	}
	if flags.Changed("max-ideas") {
		params.MaximumIdeas = contracts.Int(genFlags.maxIdeas)
	}
	if flags.Changed("audience") {
		params.TargetAudience = make([]contracts.Audience, 0, len(genFlags.audience))
		for _, a := range genFlags.audience {
			params.TargetAudience = append(params.TargetAudience, contracts.Audience(a))
		}
	}

	if flags.Changed("jurisdiction") || flags.Changed("esg") {
		if req.Context == nil {
			req.Context = &contracts.GenerationContext{}
		}
		if flags.Changed("jurisdiction") {
			req.Context.Jurisdictions = genFlags.jurisdictions
		}
		if flags.Changed("esg") {
			req.Context.IncludeESG = contracts.Bool(genFlags.esg)
		}
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req, err := buildGenerateRequest(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	result, genErr := a.orchestrator.GenerateInvestmentIdeas(cmd.Context(), req)
	if result != nil {
		if err := a.results.SaveResult(cmd.Context(), result); err != nil {
			a.logger.WithError(err).Warn("Failed to store result")
		}
	}

	if genFlags.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if result != nil {
			if err := enc.Encode(result); err != nil {
				return err
			}
		}
		return genErr
	}

	if result != nil {
		printResult(result)
	}

	var ge *brain.GenerationError
	if errors.As(genErr, &ge) {
		PrintError(fmt.Sprintf("Generation failed in %s phase: %v", ge.Phase, ge.Cause))
	}
	return genErr
}

func printResult(result *contracts.IdeaGenerationResult) {
	PrintDoubleSeparator()
	fmt.Printf("  Request   : %s\n", result.RequestID)
	fmt.Printf("  Generated : %d  Filtered: %d  Returned: %d\n",
		result.Metadata.TotalIdeasGenerated, result.Metadata.TotalIdeasFiltered, len(result.Ideas))
	fmt.Printf("  Duration  : %dms\n", result.ProcessingMetrics.TotalProcessingTimeMs)
	PrintSeparator()

	// Steps
	stepWidths := []int{12, 10, 10, 30}
	PrintTableHeader([]string{"PHASE", "STATUS", "MS", "ERROR"}, stepWidths)
	for _, step := range result.Metadata.ProcessingSteps {
		PrintTableRow([]string{
			string(step.Phase),
			string(step.Status),
			fmt.Sprintf("%d", step.DurationMs),
			step.Error,
		}, stepWidths)
	}

	// Filters
	if len(result.Metadata.FilteringCriteria) > 0 {
		fmt.Println()
		filterWidths := []int{22, 12, 24, 8}
		PrintTableHeader([]string{"CRITERION", "TYPE", "VALUE", "REMOVED"}, filterWidths)
		for _, c := range result.Metadata.FilteringCriteria {
			PrintTableRow([]string{
				c.Criterion,
				string(c.Type),
				fmt.Sprintf("%v", c.Value),
				fmt.Sprintf("%d", c.AppliedCount),
			}, filterWidths)
		}
	}

	// Ranked ideas
	if len(result.Ideas) > 0 {
		fmt.Println()
		ideaWidths := []int{4, 32, 7, 10, 10, 8}
		PrintTableHeader([]string{"#", "TITLE", "SCORE", "CONF", "RISK", "HORIZON"}, ideaWidths)
		for _, idea := range result.Ideas {
			PrintTableRow([]string{
				fmt.Sprintf("%d", idea.Rank),
				truncate(idea.Title, 32),
				fmt.Sprintf("%.3f", idea.RankingScore),
				fmt.Sprintf("%.2f", idea.ConfidenceScore),
				string(idea.RiskLevel),
				string(idea.TimeHorizon),
			}, ideaWidths)
		}

		dist := result.Metadata.ConfidenceDistribution
		fmt.Printf("\n  Confidence: high %d / medium %d / low %d (avg %.2f)\n",
			dist.High, dist.Medium, dist.Low, dist.Average)
	}
	PrintDoubleSeparator()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
