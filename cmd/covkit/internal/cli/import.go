package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/covkit/cmd/covkit/internal/ui"
	"github.com/example/covkit/coverage/codec"
	"github.com/example/covkit/coverage/domain"
	"github.com/example/covkit/internal/snapshot"
)

const defaultSnapshotFile = "covkit.snapshots"

var (
	importInputs codec.Paths
	importStore  string
	importList   bool
	importDelete bool
)

var importCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Store a data set in a snapshot file",
	Long: `Read matrix files and store them under a name in a snapshot file. Jobs and
commands can then load the data set with --snapshot and --name.

Importing under an existing name replaces that snapshot.

EXAMPLES:
  covkit import base --coverage cov.bin --results res.bin --changeset ch.bin
  covkit import --list
  covkit import base --delete`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	fl := importCmd.Flags()
	fl.StringVar(&importInputs.Coverage, "coverage", "", "coverage matrix file")
	fl.StringVar(&importInputs.Results, "results", "", "test results file")
	fl.StringVar(&importInputs.Changeset, "changeset", "", "changeset file")
	fl.StringVar(&importInputs.Bugs, "bugs", "", "bug set file")
	fl.StringVar(&importStore, "snapshot", defaultSnapshotFile, "snapshot file")
	fl.BoolVar(&importList, "list", false, "list stored snapshots")
	fl.BoolVar(&importDelete, "delete", false, "delete the named snapshot")
}

func runImport(cmd *cobra.Command, args []string) error {
	if !importList && len(args) == 0 {
		return fmt.Errorf("%w: snapshot name is required", domain.ErrInvalidConfig)
	}

	store, err := snapshot.Open(importStore)
	if err != nil {
		return err
	}
	defer store.Close()

	switch {
	case importList:
		return listSnapshots(store)
	case importDelete:
		if err := store.Delete(args[0]); err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("Deleted snapshot %s", args[0]))
		return nil
	}

	if importInputs.Coverage == "" {
		return fmt.Errorf("%w: --coverage is required", domain.ErrInvalidConfig)
	}
	data := domain.NewSelectionData()
	if err := codec.Load(importInputs, data); err != nil {
		return err
	}
	if err := store.Save(args[0], data); err != nil {
		return err
	}
	logger.Info("snapshot saved", zap.String("name", args[0]), zap.String("file", importStore))
	ui.PrintSuccess(fmt.Sprintf("Stored snapshot %s in %s", args[0], importStore))
	return nil
}

func listSnapshots(store *snapshot.Store) error {
	infos, err := store.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		ui.PrintInfo("No snapshots")
		return nil
	}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.Name,
			strconv.Itoa(info.Tests),
			strconv.Itoa(info.CodeElements),
			strconv.Itoa(info.Revisions),
			info.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	ui.PrintTable([]string{"Name", "Tests", "Code elements", "Revisions", "Created"}, rows)
	return nil
}
