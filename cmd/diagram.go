package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stonelake/ticketmap/internal/config"
	"github.com/stonelake/ticketmap/internal/diagram"
	"github.com/stonelake/ticketmap/internal/export"
	"github.com/stonelake/ticketmap/internal/telemetry"
	"github.com/stonelake/ticketmap/internal/traverse"
	"github.com/stonelake/ticketmap/internal/ui"
)

var diagramCmd = &cobra.Command{
	Use:   "diagram [KEY...]",
	Short: "Render ticket relationships as a draw.io diagram",
	Long: "Diagram renders traversal records as a layered draw.io graph, one row " +
		"per depth, edges colored by link type. Records come from a live walk of " +
		"the given keys, or from a CSV written by 'related --out'.",
	RunE: runDiagram,
}

func init() {
	diagramCmd.Flags().Int("depth", 1, "traversal depth when walking live")
	diagramCmd.Flags().String("input", "", "read records from this CSV instead of walking")
	diagramCmd.Flags().StringP("output", "o", "", "diagram path (default <roots>.drawio)")
	diagramCmd.Flags().String("title", "", "diagram page title (default derived from roots)")
	diagramCmd.Flags().String("palette", "", "TOML file overriding the edge color palette")

	rootCmd.AddCommand(diagramCmd)
}

func runDiagram(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	printer := ui.New()

	input, _ := cmd.Flags().GetString("input")
	if input == "" && len(args) == 0 {
		return errors.New("pass ticket keys to walk, or --input with a CSV")
	}

	emitter := newEmitter(cfg, printer)
	defer emitter.Close()

	records, title, err := diagramRecords(cmd, cfg, printer, emitter, args, input)
	if err != nil {
		return err
	}
	if t, _ := cmd.Flags().GetString("title"); t != "" {
		title = t
	}

	pal := diagram.DefaultPalette()
	if path, _ := cmd.Flags().GetString("palette"); path != "" {
		pal, err = diagram.LoadPalette(path)
		if err != nil {
			return err
		}
	}

	res := diagram.ResolveEdges(records)
	printer.Warnings(res.Warnings)
	if res.UsedFallback {
		_ = emitter.Emit(telemetry.Event{Kind: telemetry.KindEdgeFallback, Data: map[string]any{
			"warnings": len(res.Warnings),
		}})
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = strings.ReplaceAll(title, " ", "_") + ".drawio"
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	if err := diagram.WriteDrawio(f, records, res, title, pal); err != nil {
		return err
	}
	printer.Success("%s: %d node(s), %d edge(s)", output, len(records), len(res.Edges))
	return nil
}

// diagramRecords loads records from the input CSV, or walks the given keys
// live. It also returns a default title derived from the source.
func diagramRecords(cmd *cobra.Command, cfg config.Config, printer *ui.Printer, emitter *telemetry.Emitter, args []string, input string) ([]traverse.Record, string, error) {
	if input != "" {
		f, err := os.Open(input)
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", input, err)
		}
		defer f.Close()
		records, err := export.ReadCSV(f)
		if err != nil {
			return nil, "", err
		}
		title := strings.TrimSuffix(input, ".csv")
		if len(records) > 0 {
			title = records[0].Key()
		}
		return records, title, nil
	}

	store, err := newStore(cfg)
	if err != nil {
		printer.Error(err.Error())
		return nil, "", err
	}
	depth, _ := cmd.Flags().GetInt("depth")
	walker := &traverse.Walker{Store: store, Telemetry: emitter}

	res, err := walker.BuildRelated(cmd.Context(), args, depth)
	if err != nil {
		if errors.Is(err, traverse.ErrEmptyResult) {
			printer.Warnings(res.Warnings)
			printer.Error("no tickets could be fetched for any root")
		}
		return nil, "", err
	}
	printer.Warnings(res.Warnings)
	return res.Records, strings.Join(args, ", "), nil
}
