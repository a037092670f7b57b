package attach

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jobwatch/jobwatch/cmd/cli/config"
	"github.com/spf13/cobra"
)

//
// ==========================
// Init Attach
// ==========================
//

func InitAttach(rootCmd *cobra.Command) {

	attachCmd := &cobra.Command{
		Use:   "attach",
		Short: "Attach inbound emails to applications",
	}

	attachCmd.AddCommand(runAttachCmd())

	rootCmd.AddCommand(attachCmd)
}

//
// ==========================
// RUN
// ==========================
//

func runAttachCmd() *cobra.Command {

	var limit int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process pending emails: score, attach, promote",
		RunE: func(cmd *cobra.Command, args []string) error {

			token, err := config.Token()
			if err != nil {
				return err
			}

			url := config.APIURL() + "/v1/attach/run"
			if limit > 0 {
				url += "?limit=" + strconv.Itoa(limit)
			}

			req, _ := http.NewRequest("POST", url, nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("api returned status %d", resp.StatusCode)
			}

			var sum struct {
				Scanned         int `json:"scanned"`
				Attached        int `json:"attached"`
				SkippedNonJob   int `json:"skipped_non_job"`
				SkippedLowScore int `json:"skipped_low_score"`
				Promoted        int `json:"promoted"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
				return err
			}

			fmt.Printf("Scanned %d emails: %d attached, %d promoted, %d skipped (non-job), %d skipped (low score)\n",
				sum.Scanned, sum.Attached, sum.Promoted, sum.SkippedNonJob, sum.SkippedLowScore)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "max emails to process (0 = server default)")

	return cmd
}
