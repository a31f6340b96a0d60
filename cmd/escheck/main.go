package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"escheck/internal/version"
)

// exitError carries a process exit status out of RunE without printing anything.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "escheck [ecmaVersion] [files...]",
		Short: "Check JavaScript files against an ECMAScript version",
		Long: `escheck verifies that every given JavaScript file parses under the grammar
of the declared ECMAScript version and reports the first offending location
of each file that does not.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	addCheckFlags(rootCmd)
	rootCmd.AddCommand(newVersionsCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// main runs the root command. A failed check exits with the status carried by
// exitError; any other error is unexpected and exits with 2.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "escheck:", err)
		os.Exit(2)
	}
}

// isTerminal проверяет, является ли writer терминалом
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func colorEnabled(cmd *cobra.Command, w io.Writer) (bool, error) {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return false, err
	}
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "", "auto":
		return isTerminal(w), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}
