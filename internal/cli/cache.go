package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jobtimeline/pkg/cache"
)

// cacheCommand manages the local cache used by layout, render and visualize.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the layout and artifact cache",
		Long: `Layouts and rendered artifacts are cached under $XDG_CACHE_HOME/jobtimeline.
Pass --no-cache to any pipeline command to bypass it.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show cache location, entry count and size",
			Args:  cobra.NoArgs,
			RunE:  func(*cobra.Command, []string) error { return withLocalCache(showCacheInfo) },
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all cached layouts and artifacts",
			Args:  cobra.NoArgs,
			RunE:  func(*cobra.Command, []string) error { return withLocalCache(clearCache) },
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				dir, err := cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Fprintln(stdout, dir)
				return nil
			},
		},
	)
	return cmd
}

// withLocalCache opens the CLI cache and runs fn. A missing directory is
// reported as an empty cache without creating it.
func withLocalCache(fn func(*cache.FileCache) error) error {
	dir, err := cacheDir()
	if err != nil {
		return fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		printDetail("Directory: %s", dir)
		return nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	return fn(fc)
}

func showCacheInfo(fc *cache.FileCache) error {
	n, size, err := fc.Stats()
	if err != nil {
		return err
	}
	printKeyValue("Directory", fc.Dir())
	printKeyValue("Entries", fmt.Sprint(n))
	printKeyValue("Size", humanize.IBytes(uint64(size)))
	return nil
}

func clearCache(fc *cache.FileCache) error {
	n, err := fc.Clear()
	if err != nil {
		return err
	}
	printSuccess("Cleared %d cached entries", n)
	printDetail("Directory: %s", fc.Dir())
	return nil
}
