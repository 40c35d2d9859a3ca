package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"cashvelo/internal/config"
	"cashvelo/internal/database"
	"cashvelo/internal/repository"
	"cashvelo/internal/service"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		printUsage(stdout)
		return errors.New("missing command")
	}

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Run migrations so the schema matches the backup format
	if err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	switch args[0] {
	case "export":
		return runExport(ctx, db, args[1:], stderr)
	case "import":
		return runImport(ctx, db, args[1:], stdin, stdout, stderr)
	case "createuser":
		return runCreateUser(ctx, db, args[1:], stdin, stdout, stderr)
	default:
		printUsage(stdout)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runExport(ctx context.Context, db *database.DB, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outputPath := fs.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *outputPath == "" {
		*outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}
	if dir := filepath.Dir(*outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	slog.Info("Exporting database", "output", *outputPath)
	if err := service.NewBackupService(db).Export(ctx, *outputPath); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if info, err := os.Stat(*outputPath); err == nil {
		slog.Info("Export complete", "size_mb", fmt.Sprintf("%.2f", float64(info.Size())/1024/1024))
	}
	return nil
}

func runImport(ctx context.Context, db *database.DB, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputPath := fs.String("input", "", "Input file path (required)")
	clearData := fs.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *inputPath == "" {
		fs.PrintDefaults()
		return errors.New("-input flag is required")
	}
	if _, err := os.Stat(*inputPath); err != nil {
		return fmt.Errorf("input file: %w", err)
	}

	if *clearData {
		fmt.Fprint(stdout, "WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		confirmation, err := readLine(stdin)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if strings.TrimSpace(confirmation) != "yes" {
			fmt.Fprintln(stdout, "Import cancelled")
			return nil
		}
	}

	slog.Info("Importing database", "input", *inputPath, "clear", *clearData)
	if err := service.NewBackupService(db).Import(ctx, *inputPath, *clearData); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Fprintln(stdout, "Import complete!")
	return nil
}

func runCreateUser(ctx context.Context, db *database.DB, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("createuser", flag.ContinueOnError)
	fs.SetOutput(stderr)
	username := fs.String("username", "", "Username (required)")
	email := fs.String("email", "", "Email address (required)")
	fullName := fs.String("name", "", "Full name (defaults to the username)")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" || *email == "" {
		fs.PrintDefaults()
		return errors.New("missing required flags: username, email")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	accounts := service.NewAuthService(repository.NewUserRepository(db), nil, nil)
	user, err := accounts.CreateAccount(ctx, service.SignupInput{
		Username: *username,
		FullName: *fullName,
		Email:    *email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %s\n", user.Username, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}
	return readLine(stdin)
}

// readLine reads one line from non-terminal input such as pipes
func readLine(stdin io.Reader) (string, error) {
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Cashvelo database tool

Usage:
  backup export [-output <file>]                 Export database to JSON file
  backup import -input <file> [-clear]           Import database from JSON file
  backup createuser -username <name> -email <email> [-name <full name>] [-password <pw>]

Environment Variables:
  DATABASE_TYPE    Database type: sqlite, sqlite-pure, postgres, pgx, or mysql (default: sqlite)
  DB_PATH          SQLite database path (default: ./cashvelo.db)
  DATABASE_URL     PostgreSQL or MySQL connection URL
`)
}
