package audit

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/campushq/labops/cmd/cli/client"
	"github.com/campushq/labops/cmd/cli/output"
	"github.com/campushq/labops/internal/models"
)

// Init registers the audit command group on the root command.
func Init(rootCmd *cobra.Command) {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit log",
	}
	auditCmd.AddCommand(tailCmd(), historyCmd())
	rootCmd.AddCommand(auditCmd)
}

func tailCmd() *cobra.Command {
	var limit, campusID int

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show recent audit entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			if campusID > 0 {
				q.Set("campus_id", strconv.Itoa(campusID))
			}

			var entries []models.AuditEntry
			if err := client.Do("GET", "/api/v1/audit?"+q.Encode(), nil, true, &entries); err != nil {
				return err
			}

			renderEntries(entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	cmd.Flags().IntVar(&campusID, "campus", 0, "filter by campus id")

	return cmd
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [entity-type] [id]",
		Short: "Show one entity's full audit trail, oldest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []models.AuditEntry
			path := "/api/v1/audit/" + url.PathEscape(args[0]) + "/" + url.PathEscape(args[1])
			if err := client.Do("GET", path, nil, true, &entries); err != nil {
				return err
			}
			renderEntries(entries)
			return nil
		},
	}
}

func renderEntries(entries []models.AuditEntry) {
	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{
			e.ID,
			e.CreatedAt.Format(time.RFC3339),
			e.EntityType,
			e.EntityID,
			e.Action,
			e.PerformedBy,
			e.PerformerRole,
		})
	}
	output.RenderTable([]string{"ID", "At", "Entity", "Entity ID", "Action", "By", "Role"}, rows)
	fmt.Printf("%d entries\n", len(entries))
}
