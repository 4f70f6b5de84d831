package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aetheroos/aethero/internal/audit"
)

var (
	auditMinister    string
	auditCompliance  string
	auditLimit       int
	auditReportHours int
	auditExportPath  string
	auditPruneDays   int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query and export the constitutional audit trail",
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List audit entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		cab, err := openCabinet(ctx, cfg, nil)
		if err != nil {
			return err
		}
		defer cab.close(ctx, cfg)

		entries, err := cab.audit.Query(ctx, audit.QueryFilter{
			Minister:   auditMinister,
			Compliance: audit.ComplianceLevel(auditCompliance),
			Limit:      auditLimit,
		})
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s  %s  %s/%s -> %s  [%s]\n",
				e.Timestamp.Format("2006-01-02 15:04:05"), e.ID, e.Minister, e.Action, e.Target, e.Compliance)
		}
		if len(entries) == 0 {
			fmt.Println("No audit entries matched.")
		}
		return nil
	},
}

var auditReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a compliance report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		cab, err := openCabinet(ctx, cfg, nil)
		if err != nil {
			return err
		}
		defer cab.close(ctx, cfg)

		report, err := cab.audit.Report(ctx, auditReportHours, auditMinister)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Append audit entries to the CSV trail file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		cab, err := openCabinet(ctx, cfg, nil)
		if err != nil {
			return err
		}
		defer cab.close(ctx, cfg)

		path := auditExportPath
		if path == "" {
			path = cfg.Audit.CSVPath
		}
		n, err := cab.audit.ExportCSV(ctx, path, audit.QueryFilter{
			Minister:   auditMinister,
			Compliance: audit.ComplianceLevel(auditCompliance),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d entries to %s\n", n, path)
		return nil
	},
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify [entry-id]",
	Short: "Verify an entry's integrity signature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		cab, err := openCabinet(ctx, cfg, nil)
		if err != nil {
			return err
		}
		defer cab.close(ctx, cfg)

		entry, err := cab.audit.GetByID(ctx, args[0])
		if err != nil {
			return err
		}
		ok, err := audit.Verify(*entry)
		if err != nil {
			return err
		}
		if ok {
			fmt.Printf("%s: signature valid\n", entry.ID)
			return nil
		}
		return fmt.Errorf("%s: signature INVALID", entry.ID)
	},
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete audit entries older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		days := auditPruneDays
		if days == 0 {
			days = cfg.Audit.RetentionDays
		}
		if days <= 0 {
			return fmt.Errorf("no retention window: set --days or audit.retention_days in config")
		}

		ctx := context.Background()
		cab, err := openCabinet(ctx, cfg, nil)
		if err != nil {
			return err
		}
		defer cab.close(ctx, cfg)

		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		n, err := cab.audit.DeleteBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d entries older than %s\n", n, cutoff.Format("2006-01-02"))
		return nil
	},
}

func init() {
	auditCmd.PersistentFlags().StringVar(&auditMinister, "minister", "", "filter by minister")
	auditCmd.PersistentFlags().StringVar(&auditCompliance, "compliance", "", "filter by compliance level")
	auditQueryCmd.Flags().IntVar(&auditLimit, "limit", 20, "maximum entries")
	auditReportCmd.Flags().IntVar(&auditReportHours, "hours", 24, "report timeframe in hours")
	auditExportCmd.Flags().StringVar(&auditExportPath, "out", "", "CSV output path (defaults to config audit.csv_path)")
	auditPruneCmd.Flags().IntVar(&auditPruneDays, "days", 0, "retention window in days (defaults to config audit.retention_days)")

	auditCmd.AddCommand(auditQueryCmd)
	auditCmd.AddCommand(auditReportCmd)
	auditCmd.AddCommand(auditExportCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditPruneCmd)
	rootCmd.AddCommand(auditCmd)
}
