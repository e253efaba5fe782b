// Command admincli bootstraps an administrator account. It creates the user
// if needed, or promotes an existing one, prompting for the password on the
// terminal so it never lands in shell history.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dkoroban/scoreboard/internal/server/config"
	"github.com/dkoroban/scoreboard/internal/server/models"
	"github.com/dkoroban/scoreboard/internal/server/repositories/repomanager"
	"github.com/dkoroban/scoreboard/internal/server/repositories/users"
	"github.com/dkoroban/scoreboard/internal/server/services"
	"golang.org/x/term"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()

	reader := bufio.NewReader(os.Stdin)

	username, err := readLine(reader, "Admin username")
	if err != nil {
		return err
	}
	email, err := readLine(reader, "Admin email")
	if err != nil {
		return err
	}

	fmt.Println("Password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	fmt.Println()
	if len(password) == 0 {
		return errors.New("password must not be empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	svc := services.NewUserService(db, m, cfg)

	user, err := svc.Register(ctx, username, email, string(password))
	switch {
	case err == nil:
	case errors.Is(err, users.ErrDuplicate):
		user, err = svc.Authenticate(ctx, username, string(password))
		if err != nil {
			return fmt.Errorf("user exists and the password does not match: %w", err)
		}
		fmt.Println("User already exists, promoting.")
	default:
		return err
	}

	isAdmin := true
	if _, err := svc.Update(ctx, user.ID, models.UserUpdate{IsAdmin: &isAdmin}); err != nil {
		return err
	}

	fmt.Printf("Admin %q (id %d) is ready.\n", user.Username, user.ID)
	return nil
}

func readLine(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Println(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("input must not be empty")
	}
	return line, nil
}
