package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/jobtimeline/pkg/errors"
	"github.com/matzehuels/jobtimeline/pkg/graph"
	"github.com/matzehuels/jobtimeline/pkg/storage"
)

// layoutsCommand manages layouts kept with `layout --save`.
func (c *CLI) layoutsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "Manage saved layouts",
		Long: `Manage layouts kept in the local layout store.

Layouts are saved with 'layout --save' or 'render --save' and addressed by
their hash.`,
	}

	cmd.AddCommand(c.layoutsListCommand())
	cmd.AddCommand(c.layoutsShowCommand())
	cmd.AddCommand(c.layoutsRemoveCommand())
	cmd.AddCommand(c.layoutsPathCommand())

	return cmd
}

func (c *CLI) layoutsListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved layouts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.layoutStore()
			if err != nil {
				return err
			}
			defer store.Close()

			summaries, err := store.ListLayouts(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("No saved layouts")
				return nil
			}
			fmt.Println(summaryTable(summaries))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of layouts (0 for all)")
	return cmd
}

func (c *CLI) layoutsShowCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show <hash|prefix>",
		Short: "Show a saved layout or write it to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.layoutStore()
			if err != nil {
				return err
			}
			defer store.Close()

			hash, err := resolveHash(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			l, err := store.GetLayout(cmd.Context(), hash)
			if err != nil {
				return err
			}

			if output != "" {
				if output == stdinArg {
					data, err := graph.MarshalLayout(l)
					if err != nil {
						return err
					}
					_, err = os.Stdout.Write(append(data, '\n'))
					return err
				}
				if err := graph.WriteLayoutFile(l, output); err != nil {
					return err
				}
				printSuccess("Layout written")
				printFile(output)
				return nil
			}

			printKeyValue("Hash", l.Hash)
			printKeyValue("Title", l.Title)
			printKeyValue("Type", l.VizType)
			printKeyValue("Jobs", fmt.Sprint(len(l.Nodes)))
			printKeyValue("Size", fmt.Sprintf("%.0f x %.0f", l.Width, l.Height))
			if l.IsTimeline() {
				printKeyValue("Lanes", fmt.Sprint(lanesOf(l)))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the layout JSON to a file (- for stdout)")
	cmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return c.completeLayoutHashes(cmd, args, toComplete)
	}
	return cmd
}

func (c *CLI) layoutsRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <hash|prefix>...",
		Aliases: []string{"remove"},
		Short:   "Remove saved layouts",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.layoutStore()
			if err != nil {
				return err
			}
			defer store.Close()

			for _, arg := range args {
				hash, err := resolveHash(cmd.Context(), store, arg)
				if err != nil {
					return err
				}
				if err := store.DeleteLayout(cmd.Context(), hash); err != nil {
					return err
				}
				printSuccess("Removed %s", hash)
			}
			return nil
		},
	}
	cmd.ValidArgsFunction = c.completeLayoutHashes
	return cmd
}

func (c *CLI) layoutsPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the layout store directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := storage.DefaultDir()
			if err != nil {
				return err
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// layoutStore opens the local layout store.
func (c *CLI) layoutStore() (storage.Store, error) {
	store, err := storage.NewFileStore("")
	if err != nil {
		return nil, fmt.Errorf("open layout store: %w", err)
	}
	return store, nil
}

// summaryTable renders saved layout summaries as a table.
func summaryTable(summaries []storage.Summary) string {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{
			s.Hash[:min(12, len(s.Hash))],
			s.Title,
			s.VizType,
			fmt.Sprint(s.Nodes),
			humanize.Time(s.SavedAt),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Hash", "Title", "Type", "Jobs", "Saved").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleHighlight
			}
			return listNormalStyle
		})
	return t.Render()
}

// minPrefix is the shortest hash prefix resolveHash accepts.
const minPrefix = 4

// resolveHash expands a unique hash prefix, as printed by 'layouts list',
// to the full layout hash.
func resolveHash(ctx context.Context, store storage.Store, arg string) (string, error) {
	arg = strings.ToLower(arg)
	if len(arg) == apperr.HashLength {
		return arg, apperr.ValidateHash(arg)
	}
	if len(arg) < minPrefix || len(arg) > apperr.HashLength || strings.Trim(arg, "0123456789abcdef") != "" {
		return "", apperr.New(apperr.ErrCodeInvalidHash, "%q is not a layout hash or a prefix of at least %d hex digits", arg, minPrefix)
	}
	summaries, err := store.ListLayouts(ctx, 0)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, s := range summaries {
		if strings.HasPrefix(s.Hash, arg) {
			matches = append(matches, s.Hash)
		}
	}
	switch len(matches) {
	case 0:
		return "", apperr.New(apperr.ErrCodeLayoutNotFound, "no saved layout matches %s", arg)
	case 1:
		return matches[0], nil
	default:
		return "", apperr.New(apperr.ErrCodeInvalidHash, "prefix %s matches %d layouts", arg, len(matches))
	}
}
