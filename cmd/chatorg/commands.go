package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/config"
	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/record"
	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/transcript"
)

// --- organize ---

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Organize a single chat transcript",
	Long: `Organize a single chat transcript into a structured record.

Examples:
  chatorg organize --text "User: how do I...?"
  chatorg organize --file ./chat.txt
  chatorg organize --pdf ./exported-chat.pdf
  chatorg organize --url https://example.com/shared-chat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")
		pdfPath, _ := cmd.Flags().GetString("pdf")
		url, _ := cmd.Flags().GetString("url")
		asJSON, _ := cmd.Flags().GetBool("json")

		var content string
		switch {
		case text != "":
			content = text
		case file != "":
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			content = string(data)
		case pdfPath != "":
			extracted, err := transcript.FromPDF(pdfPath)
			if err != nil {
				return fmt.Errorf("reading pdf: %w", err)
			}
			content = extracted
		case url != "":
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			fetched, err := transcript.FromURL(ctx, &http.Client{Timeout: 30 * time.Second}, url)
			if err != nil {
				return fmt.Errorf("fetching url: %w", err)
			}
			content = fetched
		default:
			return fmt.Errorf("one of --text, --file, --pdf, or --url is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Organizing transcript...")
		resp, err := client.post(cmd.Context(), "/organize", map[string]string{"transcript": content})
		if err != nil {
			return err
		}

		var rec record.Record
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}

		printRecord(rec)
		return nil
	},
}

func init() {
	organizeCmd.Flags().String("text", "", "transcript text to organize")
	organizeCmd.Flags().String("file", "", "path to a transcript text file")
	organizeCmd.Flags().String("pdf", "", "path to a PDF export of a chat")
	organizeCmd.Flags().String("url", "", "URL of a shared chat to fetch")
	organizeCmd.Flags().Bool("json", false, "print the record as JSON")
}

// --- batch ---

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Organize multiple transcripts from one input",
	Long: `Split the input on a delimiter line and organize every transcript.

Failed transcripts appear in the output as rows with an empty title and
the error text in the summary column; they never stop the rest of the
batch.

Examples:
  chatorg batch --file ./all-chats.txt
  chatorg batch --file ./all-chats.txt --delimiter "====="`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")
		delimiter, _ := cmd.Flags().GetString("delimiter")

		var blob string
		switch {
		case text != "":
			blob = text
		case file != "":
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			blob = string(data)
		default:
			return fmt.Errorf("one of --text or --file is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Organizing batch...")
		resp, err := client.post(cmd.Context(), "/organize/batch", map[string]string{
			"blob":      blob,
			"delimiter": "\n" + delimiter + "\n",
		})
		if err != nil {
			return err
		}

		var result struct {
			Count   int             `json:"count"`
			Records []record.Record `json:"records"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		failed := 0
		for _, rec := range result.Records {
			if rec.Failed() {
				failed++
			}
		}
		printSuccess("Organized %d transcripts (%d failed)", result.Count, failed)
		for _, rec := range result.Records {
			printRecord(rec)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().String("text", "", "text containing multiple transcripts")
	batchCmd.Flags().String("file", "", "path to a file containing multiple transcripts")
	batchCmd.Flags().String("delimiter", "-----", "delimiter line between transcripts")
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List organized records from this server session",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := fmt.Sprintf("/history?limit=%d&offset=%d", limit, offset)
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var records []record.Record
		if err := decodeJSON(resp, &records); err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No records found.")
			return nil
		}

		for _, rec := range records {
			printRecord(rec)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of records to list")
	historyCmd.Flags().Int("offset", 0, "number of records to skip")
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export session history as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/export")
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
		}

		var writer *os.File
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			writer = f
		} else {
			writer = os.Stdout
		}

		if _, err := io.Copy(writer, resp.Body); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}

		if output != "" {
			printSuccess("History exported to %s", output)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("output", "organized_chats.csv", "output file path (empty for stdout)")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func printRecord(rec record.Record) {
	fmt.Println()
	if rec.Failed() {
		fmt.Printf("%s  %s\n", rec.Date, colorize(colorRed, "(failed)"))
		fmt.Printf("  %s\n", rec.Summary)
		return
	}
	fmt.Printf("%s  %s\n", rec.Date, colorize(colorBold, rec.Title))
	fmt.Printf("  %s\n", rec.Summary)
	if rec.Tags != "" {
		fmt.Printf("  Tags: %s\n", colorize(colorCyan, rec.Tags))
	}
	if rec.Bullets != "" {
		fmt.Printf("  %s\n", rec.Bullets)
	}
	if rec.ActionItems != "" {
		fmt.Printf("  Actions: %s\n", rec.ActionItems)
	}
}
