package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"aws-graphx/internal/handlers"
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List the services and resource types aws-graphx can discover",
	Long: `List every service handler and the resource types it covers. The
service names are valid values for 'discover --service'; the resource types
are valid values for 'discover --exclude'.

Example:
  aws-graphx services`,
	RunE: runServices,
}

func runServices(cmd *cobra.Command, args []string) error {
	showTypes, _ := cmd.Flags().GetBool("types")

	total := 0
	for _, service := range handlers.Services() {
		types := handlers.TypesFor(service)
		total += len(types)
		fmt.Printf("%s (%d resource types)\n", service, len(types))
		if showTypes {
			for _, t := range types {
				fmt.Printf("  %s\n", t)
			}
		}
	}
	fmt.Printf("\n%d services, %d resource types\n", len(handlers.Services()), total)
	return nil
}

func init() {
	rootCmd.AddCommand(servicesCmd)
	servicesCmd.Flags().Bool("types", false, "Also list the resource types per service")
}
