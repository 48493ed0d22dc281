package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/da0bi/psysmon/core/config"
	"github.com/da0bi/psysmon/core/database"
	"github.com/da0bi/psysmon/core/logger"
	"github.com/da0bi/psysmon/core/storage"
	"github.com/da0bi/psysmon/feature/geometry"
	"github.com/da0bi/psysmon/feature/geometry/inventory"
	"github.com/da0bi/psysmon/feature/geometry/project"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// Flags shared by the geometry subcommands
	projectFile string
	dbUser      string
	dbPassword  string
	yesConfirm  bool

	// Flags for geometry import
	replaceMode bool
	backupFirst bool

	// Flags for geometry restore
	snapshotObject string
)

// geometryCmd is the parent command for all geometry operations.
var geometryCmd = &cobra.Command{
	Use:   "geometry",
	Short: "Administer the project's geometry inventory",
	Long: `Administer the persisted geometry inventory of a monitoring project:
the sensors, recorders, networks, stations and arrays describing a
sensor deployment.`,
}

// geometryImportCmd imports a description file into the persisted inventory.
var geometryImportCmd = &cobra.Command{
	Use:   "import <description-file>",
	Short: "Import a geometry description (merge by default, --replace to rebuild)",
	Long: `Import a geometry description file into the project's persisted inventory.

By default the description is union-merged: new entities are inserted,
existing entities (matched by natural key) have their attributes
overwritten with the description's values, and persisted entities absent
from the description are left untouched.

With --replace the persisted inventory is discarded and rebuilt from the
description in one transaction. --backup uploads a snapshot of the
current inventory to object storage before the replace.

The project file is taken from --project, or discovered as the unique
*.ppr file in the working directory.

Examples:
  # Merge a description into the inventory
  psysmon geometry import survey2026.json

  # Rebuild the inventory, keeping a snapshot of the old state
  psysmon geometry import survey2026.json --replace --backup --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runGeometryImport,
}

// geometryRestoreCmd rebuilds the inventory from a stored snapshot.
var geometryRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Rebuild the inventory from a stored snapshot",
	Long: `Rebuild the persisted geometry inventory from a snapshot previously
uploaded with --backup. The restore replaces the whole inventory in one
transaction.`,
	RunE: runGeometryRestore,
}

func init() {
	for _, c := range []*cobra.Command{geometryImportCmd, geometryRestoreCmd} {
		c.Flags().StringVar(&projectFile, "project", "", "Project file (default: the unique *.ppr in the working directory)")
		c.Flags().StringVar(&dbUser, "user", "", "Database user (overrides the project file)")
		c.Flags().StringVar(&dbPassword, "password", "", "Database password (prompted if a user is set and this is empty)")
		c.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive operations (non-interactive)")
	}

	geometryImportCmd.Flags().BoolVar(&replaceMode, "replace", false, "Discard and rebuild the persisted inventory instead of merging")
	geometryImportCmd.Flags().BoolVar(&backupFirst, "backup", false, "Upload a snapshot of the current inventory before a replace")

	geometryRestoreCmd.Flags().StringVar(&snapshotObject, "snapshot", "", "Snapshot object name to restore from")
	_ = geometryRestoreCmd.MarkFlagRequired("snapshot")

	geometryCmd.AddCommand(geometryImportCmd)
	geometryCmd.AddCommand(geometryRestoreCmd)
	RootCmd.AddCommand(geometryCmd)
}

func runGeometryImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	opID := uuid.NewString()
	l = logger.WithOperation(l, opID)

	proj, err := resolveProject(l)
	if err != nil {
		return err
	}

	// The description is parsed fully before any store interaction.
	inv, warnings, err := inventory.ParseFile(args[0])
	if err != nil {
		return err
	}
	reportWarnings(l, warnings)
	l.Info("description parsed",
		zap.String("file", args[0]),
		zap.Int("entities", inv.Size()),
	)

	store, db, err := openStore(cfg, proj, l)
	if err != nil {
		return err
	}
	defer closeDB(db, l)

	if !replaceMode {
		if err := store.Merge(ctx, inv); err != nil {
			return err
		}
		l.Info("inventory merged", zap.String("project", proj.Name))
		return nil
	}

	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	if backupFirst {
		if err := backupInventory(ctx, cfg, proj, opID, store, l); err != nil {
			return err
		}
	}

	if err := store.Replace(ctx, inv); err != nil {
		return err
	}
	l.Info("inventory replaced", zap.String("project", proj.Name))
	return nil
}

func runGeometryRestore(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	l = logger.WithOperation(l, uuid.NewString())

	proj, err := resolveProject(l)
	if err != nil {
		return err
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	inv, warnings, err := geometry.ReadSnapshot(ctx, client, cfg.Storage.Bucket, snapshotObject)
	if err != nil {
		return err
	}
	reportWarnings(l, warnings)
	l.Info("snapshot loaded",
		zap.String("object", snapshotObject),
		zap.Int("entities", inv.Size()),
	)

	store, db, err := openStore(cfg, proj, l)
	if err != nil {
		return err
	}
	defer closeDB(db, l)

	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	if err := store.Replace(ctx, inv); err != nil {
		return err
	}
	l.Info("inventory restored", zap.String("project", proj.Name))
	return nil
}

// resolveProject discovers and loads the project file, applying the
// credential flags on top of the recorded settings.
func resolveProject(l *zap.Logger) (*project.Project, error) {
	path := projectFile
	if path == "" {
		var err error
		path, err = project.Discover(".")
		if err != nil {
			return nil, err
		}
	}

	proj, err := project.Load(path)
	if err != nil {
		return nil, err
	}
	l.Info("project loaded",
		zap.String("file", path),
		zap.String("project", proj.Name),
		zap.String("slug", proj.Slug),
	)

	if dbUser != "" {
		proj.Database.User = dbUser
	}
	return proj, nil
}

// openStore connects to the project database and binds the geometry store
// to it, creating the geometry namespace if needed.
func openStore(cfg *config.Config, proj *project.Project, l *zap.Logger) (*geometry.Store, *gorm.DB, error) {
	dbCfg := cfg.Database
	if proj.Database.Driver != "" {
		dbCfg.Driver = proj.Database.Driver
	}
	if proj.Database.Host != "" {
		dbCfg.Host = proj.Database.Host
	}
	if proj.Database.Port != 0 {
		dbCfg.Port = proj.Database.Port
	}
	if proj.Database.Name != "" {
		dbCfg.Name = proj.Database.Name
	}
	if proj.Database.User != "" {
		dbCfg.User = proj.Database.User
	}
	if dbPassword != "" {
		dbCfg.Password = dbPassword
	} else if dbCfg.Driver == database.DriverMySQL && dbCfg.Password == "" {
		dbCfg.Password = promptPassword(dbCfg.User)
	}
	dbCfg.TablePrefix = proj.TablePrefix()

	if !dbCfg.IsValidDriver() {
		return nil, nil, fmt.Errorf("unsupported database driver %q", dbCfg.Driver)
	}

	db, err := database.Connect(dbCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := geometry.NewStore(db, l)
	if err := store.Migrate(); err != nil {
		return nil, nil, fmt.Errorf("failed to prepare geometry tables: %w", err)
	}
	return store, db, nil
}

// backupInventory uploads a snapshot of the current persisted inventory.
// A replace aborts when the requested backup fails, before any mutation.
func backupInventory(ctx context.Context, cfg *config.Config, proj *project.Project, opID string, store *geometry.Store, l *zap.Logger) error {
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	current, err := store.LoadInventory(ctx)
	if err != nil {
		return err
	}

	objectName, err := geometry.WriteSnapshot(ctx, client, cfg.Storage.Bucket, proj.Slug, opID, current)
	if err != nil {
		return err
	}
	l.Info("inventory snapshot uploaded",
		zap.String("object", objectName),
		zap.Int("entities", current.Size()),
	)
	return nil
}

func reportWarnings(l *zap.Logger, warnings []inventory.Warning) {
	for _, w := range warnings {
		l.Warn("description warning",
			zap.String("kind", string(w.Kind)),
			zap.String("key", w.Key),
			zap.String("message", w.Message),
		)
	}
}

// closeDB closes the underlying connection; the one-shot CLI exits right
// after, so failures are only logged.
func closeDB(db *gorm.DB, l *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		l.Warn("failed to access database handle on close", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		l.Warn("failed to close database connection", zap.Error(err))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Replacing discards the current inventory. Type 'yes' to continue: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}

// promptPassword reads the database password from stdin.
func promptPassword(user string) string {
	fmt.Printf("Password for %s: ", user)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(response)
}
