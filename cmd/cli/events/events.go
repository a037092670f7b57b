package events

import (
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
// Init Events
// ==========================
//

func InitEvents(rootCmd *cobra.Command) {

	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect application audit events",
	}

	eventsCmd.AddCommand(listEventsCmd())

	rootCmd.AddCommand(eventsCmd)
}

//
// ==========================
// LIST
// ==========================
//

func listEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <application-id>",
		Short: "List events for an application, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {

			token, err := config.Token()
			if err != nil {
				return err
			}

			url := config.APIURL() + "/v1/applications/" + args[0] + "/events"
			req, _ := http.NewRequest("GET", url, nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("api returned status %d", resp.StatusCode)
			}

			var events []struct {
				ID        string    `json:"id"`
				Kind      string    `json:"kind"`
				Source    string    `json:"source"`
				CreatedAt time.Time `json:"created_at"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(events))
			for _, e := range events {
				rows = append(rows, []interface{}{
					e.ID, e.Kind, e.Source, e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			output.RenderTable([]string{"ID", "Kind", "Source", "Created"}, rows)
			return nil
		},
	}
}
