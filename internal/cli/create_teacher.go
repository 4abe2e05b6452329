package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/commentbank/internal/auth"
	"github.com/mrlokans/commentbank/internal/config"
	"github.com/mrlokans/commentbank/internal/database"
)

// CreateTeacherCommand creates a local teacher account and prints an API
// token for use with bulk-import -server.
type CreateTeacherCommand struct {
	Username     string
	Email        string
	Password     string
	DatabasePath string
	NoToken      bool

	Out io.Writer
}

func NewCreateTeacherCommand() *CreateTeacherCommand {
	return &CreateTeacherCommand{Out: os.Stdout}
}

func (cmd *CreateTeacherCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-teacher", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Login name, 3-64 letters, digits, '.', '_' or '-' (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (required)")
	fs.StringVar(&cmd.Password, "password", os.Getenv("COMMENTBANK_PASSWORD"), "Password, at least 12 characters (default: $COMMENTBANK_PASSWORD)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.BoolVar(&cmd.NoToken, "no-token", false, "Do not generate an API token")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-teacher -username <name> -email <email> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a teacher account for AUTH_MODE=local.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		return fmt.Errorf("required flag -username not provided")
	}
	if cmd.Email == "" {
		return fmt.Errorf("required flag -email not provided")
	}
	if cmd.Password == "" {
		return fmt.Errorf("password required: pass -password or set COMMENTBANK_PASSWORD")
	}

	return nil
}

func (cmd *CreateTeacherCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath, database.Quiet())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	service := auth.NewService(db.DB, cfg.Auth)

	teacher, err := service.CreateTeacher(cmd.Username, cmd.Email, cmd.Password)
	if err != nil {
		return fmt.Errorf("failed to create teacher: %w", err)
	}

	fmt.Fprintf(cmd.Out, "Created teacher %q (id %d)\n", teacher.Username, teacher.ID)

	if cmd.NoToken {
		return nil
	}

	token, err := service.GenerateToken(teacher.ID)
	if err != nil {
		return fmt.Errorf("failed to generate API token: %w", err)
	}

	fmt.Fprintf(cmd.Out, "API token (shown once): %s\n", token)
	return nil
}
