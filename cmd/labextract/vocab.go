package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/record"
	"github.com/joseph-ayodele/labresults-extractor/internal/vocab"
)

var vocabFile string

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Work with the field vocabulary",
}

var vocabCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a vocabulary file and show the row layout it produces",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := vocabFile
		if path == "" {
			path = common.LoadConfig().Vocab.File
		}
		defs, err := vocab.LoadFile(path)
		if err != nil {
			return err
		}
		fields := make([]string, 0, len(defs))
		synonyms := 0
		for _, d := range defs {
			fields = append(fields, d.Field)
			synonyms += len(d.Synonyms)
		}
		schema, err := record.SchemaFor(fields)
		if err != nil {
			return err
		}
		if path == "" {
			path = "(built-in)"
		}
		fmt.Printf("vocabulary %s: %d fields, %d synonyms, %d columns\n", path, len(defs), synonyms, len(schema.Columns()))
		for _, c := range schema.Columns() {
			fmt.Printf("  %-28s %s\n", c.Name, c.Kind)
		}
		return nil
	},
}

var vocabSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema vocabulary files must satisfy",
	RunE: func(cmd *cobra.Command, _ []string) error {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(vocab.FileSchema())
	},
}

func init() {
	vocabCheckCmd.Flags().StringVarP(&vocabFile, "file", "f", "", "vocabulary file (defaults to VOCAB_FILE or the built-in list)")
	vocabCmd.AddCommand(vocabCheckCmd, vocabSchemaCmd)
	rootCmd.AddCommand(vocabCmd)
}
