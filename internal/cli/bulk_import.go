package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mrlokans/commentbank/internal/apiclient"
	"github.com/mrlokans/commentbank/internal/config"
	"github.com/mrlokans/commentbank/internal/database"
	"github.com/mrlokans/commentbank/internal/entities"
	"github.com/mrlokans/commentbank/internal/entrypoint"
	"github.com/mrlokans/commentbank/internal/importers"
)

// BulkImportCommand imports newline-separated comments into a subject's
// comment bank, either straight into a local database or through the REST
// API of a running server.
type BulkImportCommand struct {
	SubjectID    uint
	FilePath     string
	TeacherID    uint
	DatabasePath string
	ServerURL    string
	Token        string
	Verbose      bool
	DryRun       bool

	In  io.Reader
	Out io.Writer
}

func NewBulkImportCommand() *BulkImportCommand {
	return &BulkImportCommand{
		In:  os.Stdin,
		Out: os.Stdout,
	}
}

func (cmd *BulkImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("bulk-import", flag.ExitOnError)

	var subjectID, teacherID uint
	fs.UintVar(&subjectID, "subject", 0, "ID of the subject receiving the comments (required)")
	fs.StringVar(&cmd.FilePath, "file", "", "File with one comment per line, optionally ending in ', <rating>' (default: stdin)")
	fs.UintVar(&teacherID, "teacher", 1, "Teacher owning the subject (local mode only)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.StringVar(&cmd.ServerURL, "server", "", "URL of a running commentbank server; imports over the API instead of the local database")
	fs.StringVar(&cmd.Token, "token", os.Getenv("COMMENTBANK_TOKEN"), "API token for -server (default: $COMMENTBANK_TOKEN)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "List every parsed comment and removed duplicate")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s bulk-import -subject <id> [-file <path>] [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import pasted comments into a subject's comment bank.\n\n")
		fmt.Fprintf(os.Stderr, "Each non-empty line is one comment. A trailing ', N' with N between 1 and 5\n")
		fmt.Fprintf(os.Stderr, "sets the rating; otherwise the rating is 3. Duplicates, within the paste or\n")
		fmt.Fprintf(os.Stderr, "against existing personalized comments, are skipped.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import into the local database:\n")
		fmt.Fprintf(os.Stderr, "  %s bulk-import -subject 3 -file comments.txt\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Import through a running server:\n")
		fmt.Fprintf(os.Stderr, "  pbpaste | %s bulk-import -subject 3 -server https://comments.school.example -token $TOKEN\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if subjectID == 0 {
		return fmt.Errorf("required flag -subject not provided")
	}
	cmd.SubjectID = subjectID
	cmd.TeacherID = teacherID

	return nil
}

func (cmd *BulkImportCommand) Run(ctx context.Context) error {
	fmt.Fprintln(cmd.Out, "Bulk Comment Import")
	fmt.Fprintln(cmd.Out, "===================")

	if cmd.DryRun {
		fmt.Fprintln(cmd.Out, "DRY RUN MODE - No changes will be made")
		fmt.Fprintln(cmd.Out)
	}

	text, err := cmd.readInput()
	if err != nil {
		return err
	}

	if cmd.ServerURL != "" {
		return cmd.runRemote(ctx, text)
	}
	return cmd.runLocal(ctx, text)
}

func (cmd *BulkImportCommand) readInput() (string, error) {
	if cmd.FilePath == "" {
		data, err := io.ReadAll(cmd.In)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(cmd.FilePath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("comments file not found: %s", cmd.FilePath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read comments file: %w", err)
	}
	fmt.Fprintf(cmd.Out, "File: %s\n", cmd.FilePath)
	return string(data), nil
}

func (cmd *BulkImportCommand) runLocal(ctx context.Context, text string) error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	cfg := config.NewConfig()
	cfg.Database.Path = absDBPath
	fmt.Fprintf(cmd.Out, "Database: %s\n", absDBPath)

	app, err := entrypoint.NewApp(cfg, nil, database.Quiet())
	if err != nil {
		return err
	}
	defer app.Close()

	preview, err := app.ImportService.Preview(ctx, cmd.TeacherID, cmd.SubjectID, text)
	if err != nil {
		return err
	}
	cmd.printBatch(preview.Batch, preview.ExistingCount)

	if cmd.DryRun || len(preview.Unique) == 0 {
		return cmd.finishEarly()
	}

	fmt.Fprintln(cmd.Out, "\nSaving comments...")
	outcome, err := app.ImportService.Import(ctx, cmd.TeacherID, cmd.SubjectID, text, cmd.progress(len(preview.Unique)))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Out, "Import session: %s\n", outcome.SessionID)
	return cmd.printSummary(outcome.BulkSaveResult)
}

func (cmd *BulkImportCommand) runRemote(ctx context.Context, text string) error {
	fmt.Fprintf(cmd.Out, "Server: %s\n", cmd.ServerURL)

	client := apiclient.NewClient(cmd.ServerURL, cmd.Token)
	existing, err := client.ListComments(ctx, cmd.SubjectID, entities.CommentKindPersonalized)
	if err != nil {
		return fmt.Errorf("failed to fetch existing comments: %w", err)
	}

	batch := importers.PrepareBatch(text, existing)
	cmd.printBatch(batch, len(existing))

	if cmd.DryRun || len(batch.Unique) == 0 {
		return cmd.finishEarly()
	}

	fmt.Fprintln(cmd.Out, "\nSaving comments...")
	pipeline := importers.NewPipeline(client.SaveFunc())
	result := pipeline.Save(ctx, strconv.FormatUint(uint64(cmd.SubjectID), 10), batch, cmd.progress(len(batch.Unique)))
	return cmd.printSummary(result)
}

func (cmd *BulkImportCommand) printBatch(batch importers.Batch, existing int) {
	fmt.Fprintf(cmd.Out, "\nParsed %d comments (%d already in the bank)\n", len(batch.Parsed), existing)
	fmt.Fprintf(cmd.Out, "Unique: %d, duplicates skipped: %d\n", len(batch.Unique), batch.DuplicateCount)

	if !cmd.Verbose {
		return
	}
	if len(batch.Unique) > 0 {
		fmt.Fprintln(cmd.Out, "\n=== To Import ===")
		for i, c := range batch.Unique {
			fmt.Fprintf(cmd.Out, "%d. [%d] %s\n", i+1, c.Rating, c.Text)
		}
	}
	if len(batch.RemovedDuplicates) > 0 {
		fmt.Fprintln(cmd.Out, "\n=== Duplicates ===")
		for _, c := range batch.RemovedDuplicates {
			fmt.Fprintf(cmd.Out, "  - %s\n", c.Text)
		}
	}
}

func (cmd *BulkImportCommand) progress(total int) importers.ProgressFunc {
	return func(current int) {
		fmt.Fprintf(cmd.Out, "  [%d/%d]\n", current, total)
	}
}

func (cmd *BulkImportCommand) finishEarly() error {
	if cmd.DryRun {
		fmt.Fprintln(cmd.Out, "\nDry run complete. Use without -dry-run to import.")
	} else {
		fmt.Fprintln(cmd.Out, "\nNothing new to import.")
	}
	return nil
}

func (cmd *BulkImportCommand) printSummary(result importers.BulkSaveResult) error {
	fmt.Fprintln(cmd.Out, "\n=== Import Summary ===")
	fmt.Fprintf(cmd.Out, "Saved: %d/%d\n", len(result.Successful), result.TotalAttempted)
	fmt.Fprintf(cmd.Out, "Duplicates skipped: %d\n", result.DuplicateCount)

	if len(result.Failed) > 0 {
		fmt.Fprintf(cmd.Out, "\n%d comments failed:\n", len(result.Failed))
		for _, f := range result.Failed {
			fmt.Fprintf(cmd.Out, "  [ERROR] #%d %q: %s\n", f.LineNumber, f.OriginalText, f.Reason)
		}
	}

	if len(result.Successful) == 0 && result.TotalAttempted > 0 {
		return fmt.Errorf("no comments were saved")
	}

	fmt.Fprintln(cmd.Out, "\nImport complete!")
	return nil
}
