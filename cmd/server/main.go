package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Walehamdi1/QNA/internal/config"
	"github.com/Walehamdi1/QNA/internal/logging"
)

// init configures standard logger flags / Configure les flags du logger standard
func init() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.LstdFlags)
}

// main is the application entry point / Point d'entrée de l'application
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// newRootCmd wires the qna command tree / Construit l'arbre de commandes qna
func newRootCmd() *cobra.Command {
	var (
		envFile string
		cfg     *config.Config
	)

	root := &cobra.Command{
		Use:           "qna",
		Short:         "Survey back end: forms, client answers and supplier reviews",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(envFile)
			if err != nil {
				return err
			}
			cfg = loaded
			logging.Setup(cfg, os.Stdout)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	conf := func() *config.Config { return cfg }

	serve := newServeCmd(conf)
	root.RunE = serve.RunE
	root.AddCommand(serve, newMigrateCmd(conf), newSeedCmd(conf), newBackupCmd(conf))
	return root
}
