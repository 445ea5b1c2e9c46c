package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/postmap/internal/logger"
	"github.com/jmylchreest/postmap/pkg/plugin"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a plugin file",
	Long: `Load a plugin, validate its fields, parse every extractor expression
and confirm every referenced extractor function is registered.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("plugin", "p", "", "path to plugin file, JSON or YAML (required)")
	_ = validateCmd.MarkFlagRequired("plugin")
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("plugin")

	p, err := plugin.FromFile(path)
	if err != nil {
		logger.Error("failed to load plugin", "path", path, "error", err)
		return err
	}

	if verrs := p.Validate(); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, ve := range verrs {
			logger.Error("invalid plugin", "field", ve.Field, "problem", ve.Message)
			errs[i] = ve
		}
		return fmt.Errorf("plugin %s is invalid: %w", path, errors.Join(errs...))
	}

	m, err := loadMapper(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: ok (%s %s)\n", path, p.PluginName, p.Version)
	for _, f := range m.Plugin().All() {
		req := "optional"
		if f.Required {
			req = "required"
		}
		fmt.Fprintf(out, "  %-20s %-8s %-8s %s\n", f.Name, f.Type, req, f.Extractor)
	}
	return nil
}
