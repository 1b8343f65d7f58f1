package campuses

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campushq/labops/cmd/cli/client"
	"github.com/campushq/labops/cmd/cli/output"
	"github.com/campushq/labops/internal/models"
)

// Init registers the campuses command group on the root command.
func Init(rootCmd *cobra.Command) {
	campusesCmd := &cobra.Command{
		Use:   "campuses",
		Short: "Manage campuses",
	}
	campusesCmd.AddCommand(listCmd(), createCmd())
	rootCmd.AddCommand(campusesCmd)
}

func listCmd() *cobra.Command {
	var page int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List campuses",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Data  []models.Campus `json:"data"`
				Page  int             `json:"page"`
				Total int             `json:"total"`
			}
			path := fmt.Sprintf("/api/v1/campuses?page=%d", page)
			if err := client.Do("GET", path, nil, true, &out); err != nil {
				return err
			}

			if asJSON {
				b, _ := json.MarshalIndent(out.Data, "", "  ")
				fmt.Println(string(b))
				return nil
			}

			rows := make([][]interface{}, 0, len(out.Data))
			for _, c := range out.Data {
				rows = append(rows, []interface{}{c.ID, c.Code, c.Name, c.City})
			}
			output.RenderTable([]string{"ID", "Code", "Name", "City"}, rows)
			fmt.Printf("page %d, %d total\n", out.Page, out.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")

	return cmd
}

func createCmd() *cobra.Command {
	var name, code, address, city, phone string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a campus",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{
				"name":    name,
				"code":    code,
				"address": address,
				"city":    city,
				"phone":   phone,
			}
			var created models.Campus
			if err := client.Do("POST", "/api/v1/campuses", payload, true, &created); err != nil {
				return err
			}
			fmt.Printf("Created campus %d (%s)\n", created.ID, created.Code)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "campus name")
	cmd.Flags().StringVar(&code, "code", "", "short code")
	cmd.Flags().StringVar(&address, "address", "", "street address")
	cmd.Flags().StringVar(&city, "city", "", "city")
	cmd.Flags().StringVar(&phone, "phone", "", "contact phone")

	return cmd
}
