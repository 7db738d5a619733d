package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Daemonaise/studio/internal/mesh"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Display printability metrics for a 3D model file",
	Long:  "Parse a mesh file and report its bounding box, surface area, volume, and watertightness estimate.",
	Args:  cobra.ExactArgs(1),
	Run:   runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
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

	fmt.Println("Mesh Analysis")
	fmt.Println("=============")
	fmt.Printf("File: %s (%d bytes)\n", fileName, metrics.FileBytes)
	fmt.Printf("Format: %s\n", strings.ToUpper(string(metrics.Format)))
	fmt.Printf("Units: %s\n\n", metrics.Units)

	fmt.Println("Geometry:")
	fmt.Printf("  Triangles: %d\n", metrics.TriangleCount)
	fmt.Printf("  Bounding Box: %.3f x %.3f x %.3f mm\n",
		metrics.BoundingBoxMm.X, metrics.BoundingBoxMm.Y, metrics.BoundingBoxMm.Z)
	fmt.Printf("  Surface Area: %.3f mm²\n", metrics.SurfaceAreaMm2)
	fmt.Printf("  Volume: %.3f mm³\n", metrics.VolumeMm3)
	fmt.Printf("  Watertight: %v\n", metrics.WatertightEstimate)

	if len(metrics.Notes) > 0 {
		fmt.Println("\nNotes:")
		for _, note := range metrics.Notes {
			fmt.Printf("  - %s\n", note)
		}
	}
}
