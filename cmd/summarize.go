package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stonelake/ticketmap/internal/agent"
	"github.com/stonelake/ticketmap/internal/traverse"
	"github.com/stonelake/ticketmap/internal/ui"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize KEY [KEY...]",
	Short: "Walk a ticket's relationships and print an LLM release-readiness summary",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().Int("depth", 1, "how many hops to follow from each root")
	summarizeCmd.Flags().String("model", "", "override the configured completion model")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	printer := ui.New()

	if m, _ := cmd.Flags().GetString("model"); m != "" {
		cfg.LLM.Model = m
	}
	summarizer, err := agent.New(cfg.LLM)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	store, err := newStore(cfg)
	if err != nil {
		printer.Error(err.Error())
		return err
	}
	emitter := newEmitter(cfg, printer)
	defer emitter.Close()

	depth, _ := cmd.Flags().GetInt("depth")
	walker := &traverse.Walker{Store: store, Telemetry: emitter}

	res, err := walker.BuildRelated(cmd.Context(), args, depth)
	if err != nil {
		if errors.Is(err, traverse.ErrEmptyResult) {
			printer.Warnings(res.Warnings)
			printer.Error("no tickets could be fetched for any root")
		}
		return err
	}
	printer.Warnings(res.Warnings)
	printer.Progress("summarizing %d ticket(s) with %s", len(res.Records), cfg.LLM.Model)

	summary, err := summarizer.Summarize(cmd.Context(), res)
	if err != nil {
		return err
	}
	fmt.Println(summary)
	return nil
}
