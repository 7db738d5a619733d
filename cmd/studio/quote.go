package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Daemonaise/studio/internal/catalog"
	"github.com/Daemonaise/studio/internal/estimate"
	"github.com/Daemonaise/studio/internal/mesh"
	"github.com/Daemonaise/studio/internal/quote"
)

var (
	quoteMaterial string
	quoteNozzle   string
	quotePrinter  string
)

var quoteCmd = &cobra.Command{
	Use:   "quote <file>",
	Short: "Price a print job for a 3D model file",
	Long: `Parse a mesh file, estimate print time and material use with the
built-in heuristic, and price the job against the default printer fleet.`,
	Args: cobra.ExactArgs(1),
	Run:  runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&quoteMaterial, "material", "m", "pla", "filament id (pla, petg, abs, pa-cf)")
	quoteCmd.Flags().StringVarP(&quoteNozzle, "nozzle", "n", "0.4", "nozzle size in mm")
	quoteCmd.Flags().StringVarP(&quotePrinter, "printer", "p", "", "preferred printer key (default: cheapest fit)")
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) {
	fileName := args[0]

	data, err := os.ReadFile(fileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	metrics, err := mesh.Analyze(fileName, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing mesh: %v\n", err)
		os.Exit(1)
	}

	estimator := estimate.Heuristic{}
	baseline, err := estimator.Estimate(cmd.Context(), metrics, quoteMaterial, quoteNozzle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error estimating job: %v\n", err)
		os.Exit(1)
	}

	engine := quote.New(catalog.Default())
	q, err := engine.Quote(quote.Request{
		Metrics:          metrics,
		FilamentID:       quoteMaterial,
		NozzleSize:       quoteNozzle,
		AutoSelect:       quotePrinter == "",
		PreferredPrinter: quotePrinter,
		Baseline:         baseline,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error quoting job: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Print Quote")
	fmt.Println("===========")
	fmt.Printf("Quote ID: %s\n", q.ID)
	fmt.Printf("File: %s\n\n", fileName)

	fmt.Println("Job:")
	fmt.Printf("  Printer: %s (nozzle %s mm)\n", q.PrinterKey, q.NozzleSize)
	fmt.Printf("  Material: %s\n", q.FilamentID)
	fmt.Printf("  Mode: %s (%s)\n", q.Mode, q.JobScale)
	fmt.Printf("  Segments: %d (tier: %s)\n", q.Segments, q.SegmentationTier)
	fmt.Printf("  Estimated Hours: %.2f\n", q.EstimatedHours)
	fmt.Printf("  Volume: %.2f cm³\n\n", q.VolumeCm3)

	fmt.Println("Costs:")
	fmt.Printf("  Machine: %10.2f\n", q.Costs.Machine)
	fmt.Printf("  Material: %9.2f\n", q.Costs.Material)
	fmt.Printf("  Segmentation: %5.2f\n", q.Costs.Segmentation)
	fmt.Printf("  Risk: %13.2f\n", q.Costs.Risk)
	fmt.Printf("  Total: %12.2f\n\n", q.Costs.Total)

	fmt.Printf("Lead Time: %d-%d days\n", q.LeadTimeMinDays, q.LeadTimeMaxDays)

	if len(q.Warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range q.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}
