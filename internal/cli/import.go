package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unive-tools/schedule-sync/internal/config"
	"github.com/unive-tools/schedule-sync/internal/crypto"
	"github.com/unive-tools/schedule-sync/internal/importer"
	"github.com/unive-tools/schedule-sync/internal/logger"
	"github.com/unive-tools/schedule-sync/internal/notion"
	"github.com/unive-tools/schedule-sync/internal/storage"
)

type importOptions struct {
	configPath string
	dryRun     bool
	noCache    bool
	verbose    bool
	// store replaces the Notion client, used by tests
	store importer.RecordStore
}

// NewImportCmd creates the schedule-import command
func NewImportCmd() *cobra.Command {
	return newImportCmd(&importOptions{})
}

func newImportCmd(opts *importOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule-import",
		Short: "Import a schedule file into Notion",
		Long: `Reads a schedule file written by schedule-extract and adds one page per class to the
classes database and one page per lesson to the sessions database.

Importing the same file twice adds every session twice.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ./schedule.yaml or ~/.config/unive-schedule/schedule.yaml)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the pages that would be created without calling Notion")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Query the classes database for every session")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging and print a summary")

	cmd.AddCommand(newEncryptKeyCmd(opts))

	return cmd
}

func runImport(cmd *cobra.Command, opts *importOptions) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fail(out, MsgImportFailed, err)
		return nil
	}
	if err := setupLogger(cfg, opts.verbose, cmd.ErrOrStderr()); err != nil {
		fail(out, MsgImportFailed, err)
		return nil
	}
	defer finish()

	store, err := newStore(cmd, cfg, opts)
	if err != nil {
		fail(out, MsgImportFailed, err)
		return nil
	}

	p := NewPrompter(cmd.InOrStdin(), out)
	path, err := p.AskDefault(fmt.Sprintf("Type the path of the schedule file to import (default: %s): ", storage.DefaultFileName), storage.DefaultFileName)
	if err != nil {
		return nil
	}

	sched, err := storage.Load(path)
	if err != nil {
		fail(out, MsgImportFailed, err)
		return nil
	}

	cacheSize := cfg.Cache.Size
	if opts.noCache {
		cacheSize = 0
	}

	imp, err := importer.New(store, importer.Options{
		ClassesDatabaseID:        databaseID(cfg.Notion.ClassesDatabaseID, "classes"),
		SessionsDatabaseID:       databaseID(cfg.Notion.SessionsDatabaseID, "sessions"),
		ClassTitleProperty:       cfg.Classes.TitleProperty,
		ClassFullNameProperty:    cfg.Classes.FullNameProperty,
		SessionTitleProperty:     cfg.Sessions.TitleProperty,
		SessionDateProperty:      cfg.Sessions.DateProperty,
		SessionClassProperty:     cfg.Sessions.ClassProperty,
		SessionClassroomProperty: cfg.Sessions.ClassroomProperty,
		TimeOffset:               cfg.Notion.TimeOffset,
		CacheSize:                cacheSize,
		Output:                   out,
	})
	if err != nil {
		fail(out, MsgImportFailed, err)
		return nil
	}

	logger.Info("importing schedule", logger.Fields{
		"file":    path,
		"slots":   sched.Len(),
		"dry_run": opts.dryRun,
	})

	result, err := imp.Import(cmd.Context(), sched)
	if err != nil {
		logger.Error("import failed", logger.Fields{"sessions": result.Sessions}, err)
		fail(out, MsgImportFailed, err)
		return nil
	}

	if opts.verbose {
		WriteImportResult(out, result)
	}
	fmt.Fprintln(out, MsgImportDone)
	return nil
}

// newStore picks where pages go: a test store, the dry-run printer or Notion.
func newStore(cmd *cobra.Command, cfg *config.Config, opts *importOptions) (importer.RecordStore, error) {
	if opts.store != nil {
		return opts.store, nil
	}
	if opts.dryRun {
		return notion.NewDryRunStore(cmd.OutOrStdout()), nil
	}

	if err := cfg.ValidateImport(); err != nil {
		return nil, err
	}
	apiKey, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}

	return notion.NewClient(apiKey,
		notion.WithBaseURL(cfg.Notion.BaseURL),
		notion.WithVersion(cfg.Notion.Version),
		notion.WithTimeout(cfg.Notion.Timeout),
		notion.WithUserAgent(cfg.Source.UserAgent),
	)
}

// databaseID falls back to a placeholder so a dry run works without ids configured.
func databaseID(id, placeholder string) string {
	if id == "" {
		return placeholder
	}
	return id
}

func newEncryptKeyCmd(opts *importOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt-key",
		Short: "Encrypt a Notion API key for notion.api_key_encrypted",
		Long: `Seals a Notion integration token with a passphrase. Put the printed value in
notion.api_key_encrypted and provide the passphrase as secret_key (or UNIVE_SECRET_KEY).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				fail(out, "Could not encrypt the API key.", err)
				return nil
			}

			p := NewPrompter(cmd.InOrStdin(), out)
			key, err := p.Ask("Notion API key: ")
			if err != nil || key == "" {
				fmt.Fprintln(out, "No API key given.")
				return nil
			}

			passphrase := cfg.SecretKey
			if passphrase == "" {
				if passphrase, err = p.Ask("Passphrase: "); err != nil || passphrase == "" {
					fmt.Fprintln(out, "No passphrase given.")
					return nil
				}
			}

			sealed, err := crypto.NewEncryptor(passphrase).Encrypt(key)
			if err != nil {
				fail(out, "Could not encrypt the API key.", err)
				return nil
			}

			fmt.Fprintln(out, sealed)
			return nil
		},
	}
}
