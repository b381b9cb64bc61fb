package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stonelake/ticketmap/internal/export"
	"github.com/stonelake/ticketmap/internal/traverse"
	"github.com/stonelake/ticketmap/internal/ui"
)

var childrenCmd = &cobra.Command{
	Use:   "children KEY",
	Short: "Collect a ticket's full descendant tree (children only, unbounded)",
	Args:  cobra.ExactArgs(1),
	RunE:  runChildren,
}

func init() {
	childrenCmd.Flags().String("out", "", "write CSV to this file instead of printing a table")

	rootCmd.AddCommand(childrenCmd)
}

func runChildren(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	printer := ui.New()

	store, err := newStore(cfg)
	if err != nil {
		printer.Error(err.Error())
		return err
	}
	emitter := newEmitter(cfg, printer)
	defer emitter.Close()

	walker := &traverse.Walker{Store: store, Telemetry: emitter}

	res, err := walker.CollectChildren(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printer.Warnings(res.Warnings)

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()
		if err := export.WriteCSV(f, res.Records); err != nil {
			return err
		}
		printer.Success("wrote %d ticket(s) to %s", len(res.Records), out)
		return nil
	}

	fmt.Print(ui.TicketTable(res.Records))
	return nil
}
