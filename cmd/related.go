package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stonelake/ticketmap/internal/export"
	"github.com/stonelake/ticketmap/internal/telemetry"
	"github.com/stonelake/ticketmap/internal/traverse"
	"github.com/stonelake/ticketmap/internal/ui"
)

var relatedCmd = &cobra.Command{
	Use:   "related KEY [KEY...]",
	Short: "Walk a ticket's links and children to a bounded depth",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRelated,
}

func init() {
	relatedCmd.Flags().Int("depth", 1, "how many hops to follow from each root")
	relatedCmd.Flags().Int("limit", 0, "stop after this many tickets (0 = no limit)")
	relatedCmd.Flags().String("out", "", "write CSV to this file instead of printing a table")

	rootCmd.AddCommand(relatedCmd)
}

func runRelated(cmd *cobra.Command, args []string) error {
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

	depth, _ := cmd.Flags().GetInt("depth")
	limit, _ := cmd.Flags().GetInt("limit")
	out, _ := cmd.Flags().GetString("out")

	walker := &traverse.Walker{Store: store, Telemetry: emitter, Limit: limit}

	_ = emitter.Emit(telemetry.Event{Kind: telemetry.KindRunStart, Data: map[string]any{
		"command": "related", "roots": args, "depth": depth,
	}})

	res, err := walker.BuildRelated(cmd.Context(), args, depth)
	if err != nil {
		if errors.Is(err, traverse.ErrEmptyResult) {
			printer.Warnings(res.Warnings)
			printer.Error("no tickets could be fetched for any root")
		}
		return err
	}
	printer.Warnings(res.Warnings)

	_ = emitter.Emit(telemetry.Event{Kind: telemetry.KindRunDone, Data: map[string]any{
		"command": "related", "tickets": len(res.Records), "warnings": len(res.Warnings),
	}})

	if out != "" {
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
