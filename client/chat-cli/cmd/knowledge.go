package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

const knowledgeSheet = "Sheet1"

// entry 对应 GET /knowledge 返回的一项。
type entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func newKnowledgeCmd(opts *options) *cobra.Command {
	knowledgeCmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Inspect the knowledge base",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every stored question and answer as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := fetchKnowledge(cmd, opts)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	var out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the knowledge base to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := fetchKnowledge(cmd, opts)
			if err != nil {
				return err
			}
			if err := writeWorkbook(entries, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), out)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&out, "out", "o", "knowledge.xlsx", "output .xlsx path")

	knowledgeCmd.AddCommand(listCmd, exportCmd)
	return knowledgeCmd
}

func fetchKnowledge(cmd *cobra.Command, opts *options) ([]entry, error) {
	client := opts.client()
	var entries []entry
	if err := client.GetJSON(cmd.Context(), "/knowledge", &entries); err != nil {
		return nil, fmt.Errorf("list knowledge failed: %w", err)
	}
	return entries, nil
}

// writeWorkbook 写出一个两列的工作簿，第一行为表头。
func writeWorkbook(entries []entry, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]string{{"Question", "Answer"}}
	for _, e := range entries {
		rows = append(rows, []string{e.Question, e.Answer})
	}

	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(knowledgeSheet, cell, value); err != nil {
				return fmt.Errorf("写入单元格 %s 失败: %w", cell, err)
			}
		}
	}

	if err := f.SetColWidth(knowledgeSheet, "A", "B", 48); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存工作簿失败: %w", err)
	}
	return nil
}
