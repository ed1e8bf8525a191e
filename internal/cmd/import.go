package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/civimap/civimport/pkg/importers"
	"github.com/civimap/civimport/pkg/logging"
	"github.com/civimap/civimport/pkg/scrape"
	"github.com/civimap/civimport/pkg/storage"
	"github.com/civimap/civimport/pkg/storage/memory"
	"github.com/civimap/civimport/pkg/storage/sqlite"
)

var (
	jurisdiction string
	databasePath string
)

var importCmd = &cobra.Command{
	Use:   "import <scrape-dir-or-file>",
	Short: "Reconcile a scrape run into the store",
	Long: `Import reads scraper output (a directory of per-type YAML or JSON
files, or a single batch file) and reconciles every record against the
store: organizations and people first, then memberships, bills, and vote
events, so each stage can resolve references to the ones before it.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&jurisdiction, "jurisdiction", "j", "", "jurisdiction identifier the run belongs to (required)")
	importCmd.Flags().StringVar(&databasePath, "db", "", "sqlite database path (default is an in-memory store)")
	cobra.CheckErr(importCmd.MarkFlagRequired("jurisdiction"))
	cobra.CheckErr(viper.BindPFlag("db", importCmd.Flags().Lookup("db")))

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	log := logging.Default()

	batch, err := scrape.Load(args[0])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runner := importers.NewRunner(jurisdiction, store)
	report, runErr := runner.Run(cmd.Context(), batch)
	report.Log(log)
	fmt.Fprint(cmd.OutOrStdout(), report.String())
	if runErr != nil {
		return runErr
	}

	for _, e := range report.Errors() {
		log.Warn().Str("jurisdiction", jurisdiction).Msg(e.Error())
	}
	return nil
}

// openStore picks the backend: a sqlite database when a path is configured,
// otherwise an in-memory store that lives for this process only.
func openStore() (storage.Store, error) {
	path := databasePath
	if path == "" {
		path = viper.GetString("db")
	}
	if path == "" {
		return memory.New(), nil
	}
	return sqlite.Open(path)
}
