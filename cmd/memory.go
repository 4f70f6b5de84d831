package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aetheroos/aethero/internal/memory"
	"github.com/aetheroos/aethero/internal/progress"
)

var (
	memorySearchLimit     int
	memorySearchMinisters []string
	memorySearchTypes     []string
	memorySemantic        bool
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and manage the ministerial memory store",
}

var memorySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored memories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		query := strings.Join(args, " ")

		ctx := context.Background()
		cab, err := openCabinet(ctx, cfg, nil)
		if err != nil {
			return err
		}
		defer cab.close(ctx, cfg)

		if memorySemantic {
			results, err := cab.memory.SemanticSearch(ctx, query, memorySearchLimit,
				float32(cfg.Memory.SimilarityThreshold))
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Printf("%.3f  [%s] %s\n       %s\n", r.Similarity, r.Document.Metadata.Minister, r.Document.ID, r.Document.Content)
			}
			if len(results) == 0 {
				fmt.Println("No memories matched.")
			}
			return nil
		}

		opts := memory.SearchOptions{
			Query:     query,
			Limit:     memorySearchLimit,
			Ministers: memorySearchMinisters,
		}
		for _, t := range memorySearchTypes {
			opts.Types = append(opts.Types, memory.Type(t))
		}

		records, err := cab.memory.Search(ctx, opts)
		if err != nil {
			return err
		}
		for _, r := range records {
			fmt.Printf("%s  [%s/%s] importance %.2f\n    %s\n", r.ID, r.Minister, r.Type, r.Importance, r.Content)
		}
		if len(records) == 0 {
			fmt.Println("No memories matched.")
		}
		return nil
	},
}

var memoryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show memory store statistics",
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

		stats, err := cab.memory.Stats(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

// importRecord is one line of a JSONL memory import file.
type importRecord struct {
	Content    string            `json:"content"`
	Type       string            `json:"memory_type"`
	Minister   string            `json:"minister"`
	Metadata   map[string]string `json:"metadata"`
	Importance float64           `json:"importance"`
}

var memoryImportCmd = &cobra.Command{
	Use:   "import [file.jsonl]",
	Short: "Bulk-import memories from a JSONL file",
	Long: `Reads one JSON object per line and ingests each as a memory record.
Fields: content (required), memory_type, minister, metadata, importance.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening import file: %w", err)
		}
		defer f.Close()

		// Count lines first so the bar has a total.
		total := 0
		counter := bufio.NewScanner(f)
		counter.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
		for counter.Scan() {
			if strings.TrimSpace(counter.Text()) != "" {
				total++
			}
		}
		if err := counter.Err(); err != nil {
			return fmt.Errorf("reading import file: %w", err)
		}
		if _, err := f.Seek(0, 0); err != nil {
			return err
		}

		ctx := context.Background()
		cab, err := openCabinet(ctx, cfg, nil)
		if err != nil {
			return err
		}
		defer cab.close(ctx, cfg)

		reporter := progress.NewReporter("Importing memories")
		reporter.Start(total)

		imported, skipped, line := 0, 0, 0
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			line++
			if text == "" {
				continue
			}

			var rec importRecord
			if err := json.Unmarshal([]byte(text), &rec); err != nil || rec.Content == "" {
				fmt.Fprintf(os.Stderr, "Skipping line %d: invalid record\n", line)
				skipped++
				continue
			}
			if rec.Type == "" {
				rec.Type = string(memory.TypeMinisterial)
			}
			if rec.Minister == "" {
				rec.Minister = "coordinator"
			}
			if rec.Importance == 0 {
				rec.Importance = 0.5
			}

			if _, err := cab.memory.Ingest(ctx, rec.Content, memory.Type(rec.Type), rec.Minister, rec.Metadata, rec.Importance); err != nil {
				fmt.Fprintf(os.Stderr, "Skipping line %d: %v\n", line, err)
				skipped++
				continue
			}
			imported++
			reporter.Update(imported+skipped, "")
		}
		reporter.Finish()

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading import file: %w", err)
		}
		fmt.Printf("Imported %d memories (%d skipped)\n", imported, skipped)
		return nil
	},
}

var memoryClearCmd = &cobra.Command{
	Use:   "clear [minister]",
	Short: "Delete all memories owned by a minister",
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

		n, err := cab.memory.DeleteByMinister(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d memories for %s\n", n, args[0])
		return nil
	},
}

func init() {
	memorySearchCmd.Flags().IntVar(&memorySearchLimit, "limit", 10, "maximum results")
	memorySearchCmd.Flags().StringSliceVar(&memorySearchMinisters, "minister", nil, "filter by minister")
	memorySearchCmd.Flags().StringSliceVar(&memorySearchTypes, "type", nil, "filter by memory type")
	memorySearchCmd.Flags().BoolVar(&memorySemantic, "semantic", false, "use the semantic vector index")

	memoryCmd.AddCommand(memorySearchCmd)
	memoryCmd.AddCommand(memoryStatsCmd)
	memoryCmd.AddCommand(memoryImportCmd)
	memoryCmd.AddCommand(memoryClearCmd)
	rootCmd.AddCommand(memoryCmd)
}
