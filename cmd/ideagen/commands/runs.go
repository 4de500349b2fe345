package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "생성 실행 이력 조회 (DATABASE_URL 필요)",
}

var runsShowCmd = &cobra.Command{
	Use:   "show [request_id]",
	Short: "실행 1건과 단계별 결과 조회",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsJSON bool

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsShowCmd.Flags().BoolVar(&runsJSON, "json", false, "JSON 으로 출력")
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.audit == nil {
		return fmt.Errorf("run history requires DATABASE_URL")
	}

	run, err := a.audit.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if runsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	PrintDoubleSeparator()
	PrintKeyValue("request", run.RequestID, 9)
	PrintKeyValue("user", run.UserID, 9)
	PrintKeyValue("status", string(run.Status), 9)
	PrintKeyValue("started", run.StartedAt.Format(time.RFC3339), 9)
	PrintKeyValue("duration", fmt.Sprintf("%dms", run.TotalMs), 9)
	PrintKeyValue("ideas", fmt.Sprintf("%d generated, %d filtered, %d returned",
		run.IdeasGenerated, run.IdeasFiltered, run.IdeasReturned), 9)
	if run.Error != "" {
		PrintKeyValue("error", run.Error, 9)
	}
	PrintSeparator()

	widths := []int{12, 10, 10, 30}
	PrintTableHeader([]string{"PHASE", "STATUS", "MS", "ERROR"}, widths)
	for _, step := range run.Steps {
		PrintTableRow([]string{
			string(step.Phase),
			string(step.Status),
			fmt.Sprintf("%d", step.DurationMs),
			step.Error,
		}, widths)
	}
	return nil
}
