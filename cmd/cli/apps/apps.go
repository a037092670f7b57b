package apps

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jobwatch/jobwatch/cmd/cli/config"
	"github.com/jobwatch/jobwatch/cmd/cli/output"
	"github.com/spf13/cobra"
)

//
// ==========================
// Init Apps
// ==========================
//

func InitApps(rootCmd *cobra.Command) {

	appsCmd := &cobra.Command{
		Use:   "apps",
		Short: "Manage job applications",
	}

	appsCmd.AddCommand(
		listAppsCmd(),
		createAppCmd(),
		scanAppCmd(),
	)

	rootCmd.AddCommand(appsCmd)
}

//
// ==========================
// LIST
// ==========================
//

func listAppsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List applications",
		RunE: func(cmd *cobra.Command, args []string) error {

			token, err := config.Token()
			if err != nil {
				return err
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/v1/applications", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("api returned status %d", resp.StatusCode)
			}

			var apps []struct {
				ID            string     `json:"id"`
				Company       string     `json:"company"`
				Role          string     `json:"role"`
				Status        string     `json:"status"`
				LastCheckedAt *time.Time `json:"last_checked_at"`
				NextScanAt    *time.Time `json:"next_scan_at"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&apps); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(apps))
			for _, a := range apps {
				rows = append(rows, []interface{}{
					a.ID, a.Company, a.Role, a.Status,
					formatTime(a.LastCheckedAt), formatTime(a.NextScanAt),
				})
			}
			output.RenderTable(
				[]string{"ID", "Company", "Role", "Status", "Last Checked", "Next Scan"},
				rows,
			)
			return nil
		},
	}
}

//
// ==========================
// CREATE
// ==========================
//

func createAppCmd() *cobra.Command {

	var company string
	var role string
	var portal string
	var url string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create application",
		RunE: func(cmd *cobra.Command, args []string) error {

			token, err := config.Token()
			if err != nil {
				return err
			}

			payload := map[string]string{
				"company": company,
				"role":    role,
				"portal":  portal,
				"url":     url,
			}

			body, _ := json.Marshal(payload)

			req, _ := http.NewRequest("POST", config.APIURL()+"/v1/applications", bytes.NewBuffer(body))
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			var out any
			json.NewDecoder(resp.Body).Decode(&out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "company name")
	cmd.Flags().StringVar(&role, "role", "", "role title")
	cmd.Flags().StringVar(&portal, "portal", "", "portal name (greenhouse, lever, ...)")
	cmd.Flags().StringVar(&url, "url", "", "application status page URL")

	return cmd
}

//
// ==========================
// SCAN
// ==========================
//

func scanAppCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <id>",
		Short: "Scan an application page now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {

			token, err := config.Token()
			if err != nil {
				return err
			}

			req, _ := http.NewRequest("POST", config.APIURL()+"/v1/applications/"+args[0]+"/scan", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			var out any
			json.NewDecoder(resp.Body).Decode(&out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("scan failed with status %d", resp.StatusCode)
			}
			return nil
		},
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
