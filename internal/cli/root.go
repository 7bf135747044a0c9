package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "infrascope",
	Short: "Infrascope - multi-source infrastructure resource correlation",
	Long: `Infrascope correlates infrastructure resources across a declarative
state document, the cloud resource inventory, and the edge platform API,
infers cross-source relationships, and reports configuration drift between
declared and observed state.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().String("config", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format: json, summary")
	rootCmd.PersistentFlags().StringP("file", "f", "", "write output to file instead of stdout")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("file", rootCmd.PersistentFlags().Lookup("file"))

	rootCmd.AddCommand(newCorrelateCmd())
}

// initEnv lets every bound key resolve from INFRASCOPE_* variables when its
// flag is not set.
func initEnv() {
	viper.SetEnvPrefix("INFRASCOPE")
	viper.AutomaticEnv()

	viper.SetDefault("output", "json")
}

// configFile resolves the engine config file path: flag, then INFRASCOPE_CONFIG
func configFile() string {
	return viper.GetString("config")
}

// outputFormat resolves the report output format: flag, then
// INFRASCOPE_OUTPUT, then json.
func outputFormat() string {
	return viper.GetString("output")
}

// outputPath resolves the report destination; empty means stdout
func outputPath() string {
	return viper.GetString("file")
}
