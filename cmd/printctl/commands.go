// cmd/printctl/commands.go
package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	bridge "printer-bridge/internal/app"
	"printer-bridge/internal/model"
	"printer-bridge/internal/service"
)

func newSearchCommand() *cobra.Command {
	var (
		interfaces []string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search for printers on the configured interfaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := make([]model.InterfaceType, 0, len(interfaces))
			for _, name := range interfaces {
				parsed := model.ParseInterfaceType(name)
				if parsed == model.InterfaceUnknown {
					return fmt.Errorf("unknown interface %q", name)
				}
				filter = append(filter, parsed)
			}

			return runWithStack(cmd, false, func(ctx context.Context, c *bridge.Components) error {
				var found []model.FoundPrinter
				if all {
					printers, err := c.Printer.SearchPrinters(ctx, filter)
					if err != nil {
						return err
					}
					found = printers
				} else {
					printer, err := c.Printer.SearchPrinter(ctx, filter)
					if err != nil {
						return err
					}
					found = []model.FoundPrinter{*printer}
				}
				return renderPrinters(found)
			})
		},
	}

	cmd.Flags().StringSliceVar(&interfaces, "interfaces", nil, "interfaces to scan (default all registered)")
	cmd.Flags().BoolVar(&all, "all", false, "list every printer instead of the first match")
	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Query the printer status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStack(cmd, true, func(ctx context.Context, c *bridge.Components) error {
				status, err := c.Printer.GetStatus(ctx)
				if err != nil {
					return err
				}
				return renderStatus(status)
			})
		},
	}
}

func newPrintCommand() *cobra.Command {
	var (
		file    string
		charset string
		legacy  bool
	)

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print a job file",
		Long: `Print a job file. The file holds either a list of command descriptors or an
object with "commands" and an optional "charset". JSON and YAML are accepted.`,
		Example: `  printctl print -i 192.168.1.50 --interface lan --file receipt.yaml
  printctl print -i /dev/rfcomm0 --interface bluetooth --file receipt.json --charset germany`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := readJobFile(file)
			if err != nil {
				return err
			}
			if charset != "" {
				job.Charset = charset
			}

			return runWithStack(cmd, true, func(ctx context.Context, c *bridge.Components) error {
				var (
					result *service.PrintResult
					err    error
				)
				if legacy {
					result, err = c.Printer.PrintLegacy(ctx, job.Commands)
				} else {
					result, err = c.Printer.Print(ctx, job.Commands, job.Charset)
				}
				if err != nil {
					return err
				}

				for _, skipped := range result.Skipped {
					pterm.Warning.Printfln("skipped %s", skipped)
				}
				pterm.Success.Printfln("Printed %d commands: %s", len(job.Commands), result)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "job file (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&charset, "charset", "", "international character set, overrides the file")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "treat the file as legacy append descriptors")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newDrawerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drawer",
		Short: "Open the cash drawer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStack(cmd, true, func(ctx context.Context, c *bridge.Components) error {
				if err := c.Printer.OpenCashDrawer(ctx); err != nil {
					return err
				}
				pterm.Success.Println("Cash drawer opened")
				return nil
			})
		},
	}
}

func newDisplayCommand() *cobra.Command {
	var (
		text      string
		erase     bool
		backlight bool
		contrast  int
		cursor    string
		charset   string
	)

	cmd := &cobra.Command{
		Use:   "display",
		Short: "Show text on or clear the customer display",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStack(cmd, true, func(ctx context.Context, c *bridge.Components) error {
				if erase {
					if err := c.Printer.ClearDisplay(ctx); err != nil {
						return err
					}
					pterm.Success.Println("Display cleared")
					return nil
				}

				req := service.DisplayRequest{Content: text}
				flags := cmd.Flags()
				if flags.Changed("backlight") {
					req.Backlight = &backlight
				}
				if flags.Changed("contrast") {
					req.Contrast = &contrast
				}
				if flags.Changed("cursor") {
					req.CursorState = &cursor
				}
				if flags.Changed("charset") {
					req.Charset = &charset
				}

				if err := c.Printer.ShowTextOnDisplay(ctx, req); err != nil {
					return err
				}
				pterm.Success.Println("Text shown on display")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "text to show")
	cmd.Flags().BoolVar(&erase, "clear", false, "clear the display")
	cmd.Flags().BoolVar(&backlight, "backlight", true, "turn the backlight on")
	cmd.Flags().IntVar(&contrast, "contrast", 0, "contrast step from -3 to 3")
	cmd.Flags().StringVar(&cursor, "cursor", "off", "cursor state: on, off or blink")
	cmd.Flags().StringVar(&charset, "charset", "usa", "display character set")
	cmd.MarkFlagsMutuallyExclusive("text", "clear")
	cmd.MarkFlagsOneRequired("text", "clear")
	return cmd
}

func renderPrinters(printers []model.FoundPrinter) error {
	data := pterm.TableData{{"Identifier", "Interface", "Emulation", "Model"}}
	for _, p := range printers {
		data = append(data, []string{
			p.ConnectionSettings.Identifier,
			string(p.ConnectionSettings.Interface),
			p.Information.Emulation,
			p.Information.Model,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderStatus(status *model.Status) error {
	width := "unknown"
	if status.DetectedPaperWidth != nil {
		width = strconv.Itoa(*status.DetectedPaperWidth) + " mm"
	}

	data := pterm.TableData{
		{"Condition", "Value"},
		{"printable", yesNo(status.Printable())},
		{"error", yesNo(status.HasError)},
		{"cover open", yesNo(status.CoverOpen)},
		{"paper empty", yesNo(status.PaperEmpty)},
		{"paper near empty", yesNo(status.PaperNearEmpty)},
		{"paper present", yesNo(status.PaperPresent)},
		{"cutter error", yesNo(status.CutterError)},
		{"paper jam", yesNo(status.PaperJamError)},
		{"drawer signal", yesNo(status.DrawerOpenCloseSignal)},
		{"drawer error", yesNo(status.DrawerOpenError)},
		{"print unit open", yesNo(status.PrintUnitOpen)},
		{"paper width", width},
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
