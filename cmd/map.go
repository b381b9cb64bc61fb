package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stonelake/ticketmap/internal/telemetry"
	"github.com/stonelake/ticketmap/internal/traverse"
	"github.com/stonelake/ticketmap/internal/ui"
	"github.com/stonelake/ticketmap/internal/watch"
	"github.com/stonelake/ticketmap/internal/workbook"
)

var mapCmd = &cobra.Command{
	Use:   "map [KEY...]",
	Short: "Build a multi-sheet workbook from a ticket's relationships",
	Long: "Map walks each root's links and children, collects the full descendant " +
		"tree of every first-level ticket, and writes one workbook: a merged " +
		"overview sheet followed by one sheet per first-level ticket.",
	RunE: runMap,
}

func init() {
	mapCmd.Flags().Int("depth", 1, "overview depth bound")
	mapCmd.Flags().Int("limit", 0, "stop the overview walk after this many tickets (0 = no limit)")
	mapCmd.Flags().String("roots-file", "", "read root keys from a file, one per line")
	mapCmd.Flags().StringP("output", "o", "", "workbook path (default <roots>.xlsx)")
	mapCmd.Flags().Bool("keep-intermediates", false, "also write each per-ticket sheet as its own .xlsx")
	mapCmd.Flags().Bool("watch", false, "rebuild whenever the roots file changes (requires --roots-file)")

	rootCmd.AddCommand(mapCmd)
}

func runMap(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	printer := ui.New()

	rootsFile, _ := cmd.Flags().GetString("roots-file")
	watchMode, _ := cmd.Flags().GetBool("watch")
	if watchMode && rootsFile == "" {
		return errors.New("--watch requires --roots-file")
	}

	roots, err := resolveRoots(args, rootsFile)
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		return errors.New("no root keys: pass keys as arguments or use --roots-file")
	}

	store, err := newStore(cfg)
	if err != nil {
		printer.Error(err.Error())
		return err
	}
	emitter := newEmitter(cfg, printer)
	defer emitter.Close()

	opts := mapOptions{walker: &traverse.Walker{Store: store, Telemetry: emitter}}
	opts.depth, _ = cmd.Flags().GetInt("depth")
	opts.walker.Limit, _ = cmd.Flags().GetInt("limit")
	opts.output, _ = cmd.Flags().GetString("output")
	opts.keepIntermediates, _ = cmd.Flags().GetBool("keep-intermediates")
	if opts.output == "" {
		opts.output = defaultWorkbookPath(roots)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := buildMap(ctx, printer, emitter, roots, opts); err != nil {
		return err
	}
	if !watchMode {
		return nil
	}
	return watchAndRebuild(ctx, printer, emitter, rootsFile, opts)
}

type mapOptions struct {
	walker            *traverse.Walker
	depth             int
	output            string
	keepIntermediates bool
}

// buildMap runs one full overview-then-children pass and writes the workbook.
func buildMap(ctx context.Context, printer *ui.Printer, emitter *telemetry.Emitter, roots []string, opts mapOptions) error {
	printer.Banner("ticketmap: " + strings.Join(roots, ", "))

	_ = emitter.Emit(telemetry.Event{Kind: telemetry.KindRunStart, Data: map[string]any{
		"command": "map", "roots": roots, "depth": opts.depth,
	}})

	printer.Step(1, 3, "building overview (depth %d)", opts.depth)
	overview, err := opts.walker.BuildRelated(ctx, roots, opts.depth)
	if err != nil {
		if errors.Is(err, traverse.ErrEmptyResult) {
			printer.Warnings(overview.Warnings)
			printer.Error("no tickets could be fetched for any root")
		}
		return err
	}
	printer.Warnings(overview.Warnings)
	printer.Progress("%d ticket(s) in overview", len(overview.Records))

	firstLevel := overview.FirstLevelKeys()
	printer.Step(2, 3, "collecting descendants of %d first-level ticket(s)", len(firstLevel))
	children := make(map[string]*traverse.Result, len(firstLevel))
	failures := make(map[string]string)
	for _, key := range firstLevel {
		res, err := opts.walker.CollectChildren(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// A failed branch becomes a placeholder sheet, not a failed run.
			failures[key] = err.Error()
			printer.Warn("descendants of %s: %v", key, err)
			continue
		}
		children[key] = res
		printer.Progress("%s: %d ticket(s)", key, len(res.Records))
	}

	plan := workbook.Assemble(overview, opts.depth, children, failures)
	printer.Warnings(plan.Warnings)

	printer.Step(3, 3, "writing %s", opts.output)
	if err := workbook.Write(plan, opts.output); err != nil {
		return err
	}
	for _, sheet := range plan.Sheets {
		_ = emitter.Emit(telemetry.Event{Kind: telemetry.KindSheetWritten, Key: sheet.Name, Data: map[string]any{
			"rows": len(sheet.Records), "placeholder": sheet.Placeholder,
		}})
	}

	if opts.keepIntermediates {
		for _, sheet := range plan.Sheets[1:] {
			path := sheet.Name + ".xlsx"
			if err := workbook.WriteSingle(sheet, path); err != nil {
				printer.Warn("intermediate %s: %v", path, err)
				continue
			}
			printer.Progress("kept %s", path)
		}
	}

	_ = emitter.Emit(telemetry.Event{Kind: telemetry.KindRunDone, Data: map[string]any{
		"command": "map", "tickets": len(overview.Records), "sheets": len(plan.Sheets),
	}})

	printer.Success("%s: %d sheet(s), %d ticket(s) in overview", opts.output, len(plan.Sheets), len(overview.Records))
	return nil
}

// watchAndRebuild reruns the build whenever the roots file changes, until the
// context is canceled.
func watchAndRebuild(ctx context.Context, printer *ui.Printer, emitter *telemetry.Emitter, rootsFile string, opts mapOptions) error {
	watcher, err := watch.NewWatcher(rootsFile)
	if err != nil {
		return fmt.Errorf("watch %s: %w", rootsFile, err)
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("watch %s: %w", rootsFile, err)
	}
	defer watcher.Stop()

	printer.Progress("watching %s (ctrl-c to stop)", rootsFile)
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-watcher.Changes:
			if !ok {
				return nil
			}
			roots, err := readRootsFile(change.File)
			if err != nil {
				printer.Warn("reread roots: %v", err)
				continue
			}
			if len(roots) == 0 {
				printer.Warn("roots file is empty, keeping previous workbook")
				continue
			}
			if err := buildMap(ctx, printer, emitter, roots, opts); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				printer.Error(err.Error())
			}
		}
	}
}

// resolveRoots merges positional keys with the roots file, if given.
func resolveRoots(args []string, rootsFile string) ([]string, error) {
	roots := append([]string(nil), args...)
	if rootsFile != "" {
		fromFile, err := readRootsFile(rootsFile)
		if err != nil {
			return nil, err
		}
		roots = append(roots, fromFile...)
	}
	return roots, nil
}

// readRootsFile reads ticket keys one per line, skipping blanks and
// #-comments.
func readRootsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("roots file: %w", err)
	}
	defer f.Close()

	var roots []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		roots = append(roots, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("roots file: %w", err)
	}
	return roots, nil
}

// defaultWorkbookPath names the workbook after the roots.
func defaultWorkbookPath(roots []string) string {
	name := strings.Join(roots, "_")
	if len(name) > 64 {
		name = roots[0] + "_and_more"
	}
	return name + ".xlsx"
}
