package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svg2ico/pkg/errors"
	"github.com/matzehuels/svg2ico/pkg/ico"
)

// inspectCommand creates the inspect command, which lists the frames of an icon.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.ico>",
		Short: "List the images embedded in an ICO file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0])
		},
	}
}

func (c *CLI) runInspect(path string) error {
	entries, err := ico.ReadFile(path)
	if err != nil {
		c.printError("Error: %s", errors.UserMessage(err))
		return reported(err)
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			e.Size().String(),
			strconv.Itoa(e.BitCount),
			strconv.FormatUint(uint64(e.Bytes), 10),
			strconv.FormatUint(uint64(e.Offset), 10),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Size", "Bits", "Bytes", "Offset").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return styleHeader
			}
			if col == 1 {
				return StyleNumber
			}
			return StyleValue
		})

	c.printFile(path)
	fmt.Fprintln(c.Out, t.Render())
	c.printDetail("%d images", len(entries))
	return nil
}
