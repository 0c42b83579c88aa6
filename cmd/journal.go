package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quantkit/quantkit/controller"
	"github.com/quantkit/quantkit/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal [file]",
	Short: "Inspect a journal file.",
	Long: "`journal [file]` prints the operations recorded in a journal " +
		"database. Filters can narrow the output to one controller or one " +
		"outcome.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		controllerName, _ := cmd.Flags().GetString("controller")
		outcome, _ := cmd.Flags().GetString("outcome")
		limit, _ := cmd.Flags().GetInt("limit")

		dumpJournal(args[0], controllerName, outcome, limit)
	},
}

func init() {
	journalCmd.Flags().String("controller", "",
		"only show operations of this controller")
	journalCmd.Flags().String("outcome", "",
		"only show operations with this outcome "+
			"(committed, rejected, reverted, failed)")
	journalCmd.Flags().Int("limit", 0, "maximum number of records to show")

	rootCmd.AddCommand(journalCmd)
}

func dumpJournal(file, controllerName, outcome string, limit int) {
	reader := journal.NewSQLiteReader(file)
	defer reader.Close()

	reader.MapTable(journal.OperationTable, controller.OperationRecord{})

	params := journal.QueryParams{Limit: limit, OrderBy: "ID"}
	if controllerName != "" {
		params.Where = "Controller = ?"
		params.Args = append(params.Args, controllerName)
	}
	if outcome != "" {
		if params.Where != "" {
			params.Where += " AND "
		}
		params.Where += "Outcome = ?"
		params.Args = append(params.Args, outcome)
	}

	results, total, err := reader.Query(
		context.Background(), journal.OperationTable, params)
	if err != nil {
		log.Fatalf("Error reading journal: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCONTROLLER\tOP\tFROM\tTO\tGEN\tOUTCOME\tERROR")

	for _, r := range results {
		rec := r.(*controller.OperationRecord)
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			rec.ID, rec.Controller, rec.Op,
			rec.FromQty, rec.ToQty, rec.Generation,
			rec.Outcome, rec.Error)
	}

	w.Flush()
	fmt.Printf("%d of %d records shown\n", len(results), total)
}
