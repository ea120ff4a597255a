package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var evidenceLimit int

var evidenceCmd = &cobra.Command{
	Use:   "evidence [query]",
	Short: "Build a cited evidence pack",
	Long: `Runs a keyword search and attaches a citation to every hit: document
title and source, byte range, content hash and object hash. Each object is
re-hashed, so "verified" reflects the bytes on disk right now.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvidence,
}

func init() {
	evidenceCmd.Flags().IntVarP(&evidenceLimit, "limit", "n", 5, "maximum number of chunks")
	rootCmd.AddCommand(evidenceCmd)
}

func runEvidence(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	pack, err := a.Store.GetEvidencePack(cmd.Context(), args[0], evidenceLimit)
	if err != nil {
		return fmt.Errorf("evidence failed: %w", err)
	}

	if ok, err := structured(cmd, pack); ok {
		return err
	}

	if len(pack.Chunks) == 0 {
		cmd.Println("No evidence found.")
		return nil
	}
	for i := range pack.Chunks {
		c := pack.Citations[i]
		mark := style(cmd, okStyle, "verified")
		if !c.Verified {
			mark = style(cmd, errStyle, "UNVERIFIED")
		}
		title := c.DocTitle
		if title == "" {
			title = c.DocID
		}

		cmd.Printf("  [%d] %s %s %s\n", i+1, style(cmd, titleStyle, title),
			style(cmd, scoreStyle, fmt.Sprintf("(%.0f)", c.Score)), mark)
		if c.DocSource != "" {
			cmd.Printf("      Source: %s bytes %d-%d\n", c.DocSource, c.ByteOffset, c.ByteOffset+c.ByteLength)
		}
		cmd.Printf("      %s\n", snippet(pack.Chunks[i].Text, 100))
		cmd.Printf("      %s\n", style(cmd, dimStyle, "object "+c.ObjectHash))
		cmd.Println()
	}
	if !pack.AllVerified() {
		cmd.Println(style(cmd, warnStyle, "Some citations failed integrity verification."))
	}
	return nil
}
