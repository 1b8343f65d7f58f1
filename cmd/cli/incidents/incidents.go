package incidents

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/campushq/labops/cmd/cli/client"
	"github.com/campushq/labops/cmd/cli/output"
	"github.com/campushq/labops/internal/models"
)

// Init registers the incidents command group on the root command.
func Init(rootCmd *cobra.Command) {
	incidentsCmd := &cobra.Command{
		Use:   "incidents",
		Short: "Manage incidents",
	}
	incidentsCmd.AddCommand(listCmd(), setStatusCmd())
	rootCmd.AddCommand(incidentsCmd)
}

func listCmd() *cobra.Command {
	var page, campusID int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List incidents",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("page", strconv.Itoa(page))
			if campusID > 0 {
				q.Set("campus_id", strconv.Itoa(campusID))
			}

			var out struct {
				Data  []models.Incident `json:"data"`
				Page  int               `json:"page"`
				Total int               `json:"total"`
			}
			if err := client.Do("GET", "/api/v1/incidents?"+q.Encode(), nil, true, &out); err != nil {
				return err
			}

			if asJSON {
				b, _ := json.MarshalIndent(out.Data, "", "  ")
				fmt.Println(string(b))
				return nil
			}

			rows := make([][]interface{}, 0, len(out.Data))
			for _, i := range out.Data {
				rows = append(rows, []interface{}{i.ID, i.CampusID, i.Priority, i.Status, i.Title})
			}
			output.RenderTable([]string{"ID", "Campus", "Priority", "Status", "Title"}, rows)
			fmt.Printf("page %d, %d total\n", out.Page, out.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&campusID, "campus", 0, "filter by campus id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")

	return cmd
}

func setStatusCmd() *cobra.Command {
	var status, resolution string

	cmd := &cobra.Command{
		Use:   "set-status [id]",
		Short: "Change an incident's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if status == "" {
				return fmt.Errorf("--status is required")
			}
			payload := map[string]string{"status": status, "resolution": resolution}
			var updated models.Incident
			if err := client.Do("PATCH", "/api/v1/incidents/"+args[0]+"/status", payload, true, &updated); err != nil {
				return err
			}
			fmt.Printf("Incident %d is now %s\n", updated.ID, updated.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "new status (OPEN, IN_PROGRESS, RESOLVED, CLOSED)")
	cmd.Flags().StringVar(&resolution, "resolution", "", "resolution notes")

	return cmd
}
