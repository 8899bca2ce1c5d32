package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ordenescli/internal/dataprocessing"
	"ordenescli/internal/exporter"
	"ordenescli/pkg/contracts/domain"
)

func summarizeCmd() *cobra.Command {
	var (
		types    []string
		year     int
		months   []int
		vendors  []string
		statuses []string
		outPath  string
		table    string
	)

	cmd := &cobra.Command{
		Use:   "summarize <workbook.xlsx>",
		Short: "Filter a workbook and print its count and amount summaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := domain.Selection{
				Types:    upperAll(types),
				Year:     year,
				Months:   months,
				Vendors:  vendors,
				Statuses: upperAll(statuses),
			}
			return runSummarize(cmd.OutOrStdout(), args[0], sel, outPath, table)
		},
	}

	cmd.Flags().StringSliceVar(&types, "type", nil, "order types to keep (e.g. CORRECTIVO)")
	cmd.Flags().IntVar(&year, "year", 0, "creation year to keep (0 keeps all)")
	cmd.Flags().IntSliceVar(&months, "month", nil, "creation months to keep, 1-12 (requires --year)")
	cmd.Flags().StringSliceVar(&vendors, "vendor", nil, "vendors to keep")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "user statuses to keep")
	cmd.Flags().StringVar(&outPath, "out", "", "write the summaries to this .xlsx or .csv file")
	cmd.Flags().StringVar(&table, "table", "count", "table for CSV output: count or amount")
	return cmd
}

func runSummarize(out io.Writer, path string, sel domain.Selection, outPath, table string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ds, err := dataprocessing.NewNormalizer(logger).ParseWorkbook(f)
	if err != nil {
		return err
	}
	for _, w := range ds.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	subset := dataprocessing.ApplyFilters(ds, sel)
	if len(subset) == 0 {
		return fmt.Errorf("no rows match the selected filters")
	}

	countTable, err := dataprocessing.BuildSummary(subset, dataprocessing.AggregateCount)
	if err != nil {
		return err
	}
	amountTable, err := dataprocessing.BuildSummary(subset, dataprocessing.AggregateAmount)
	if err != nil {
		return err
	}
	kpis := dataprocessing.ComputeKPIs(subset)

	printKPIs(out, kpis, len(ds.Orders), len(subset))
	printTable(out, "Ordenes por proveedor y estatus", countTable, true)
	printTable(out, "Importes por proveedor y estatus", amountTable, false)

	if outPath == "" {
		return nil
	}

	result := &domain.ReportResult{
		Selection:   sel,
		KPIs:        kpis,
		CountTable:  countTable,
		AmountTable: amountTable,
		RowCount:    len(subset),
	}
	if err := writeOutput(outPath, result, subset, table); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nwrote %s\n", outPath)
	return nil
}

func writeOutput(outPath string, result *domain.ReportResult, subset []domain.Order, table string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".csv":
		summary := result.CountTable
		asInt := true
		if table == "amount" {
			summary = result.AmountTable
			asInt = false
		}
		return exporter.SummaryCSV(f, summary, exporter.CSVOptions{BOMPrefix: true, AsInt: asInt})
	default:
		return exporter.Workbook(f, result, exporter.WorkbookOptions{DetailOrders: subset})
	}
}

func printKPIs(out io.Writer, kpis domain.KPISet, total, matched int) {
	fmt.Fprintf(out, "Ordenes: %d de %d\n", matched, total)
	fmt.Fprintf(out, "Importe total: %.2f\n", kpis.TotalAmount)
	fmt.Fprintf(out, "Proveedor principal: %s\n", kpis.TopVendor)
	fmt.Fprintf(out, "Promedio por proveedor: %.2f\n", kpis.AvgOrdersPerVendor)
}

func printTable(out io.Writer, title string, table domain.SummaryTable, asInt bool) {
	fmt.Fprintf(out, "\n%s\n", title)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", domain.ColumnVendor, strings.Join(table.Columns, "\t"))
	format := func(v float64) string {
		if asInt {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.2f", v)
	}
	for _, row := range table.Rows {
		cells := make([]string, 0, len(row.Cells)+1)
		for _, v := range row.Cells {
			cells = append(cells, format(v))
		}
		cells = append(cells, format(row.Total))
		fmt.Fprintf(tw, "%s\t%s\n", row.Vendor, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func upperAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToUpper(strings.TrimSpace(v)))
	}
	return out
}
