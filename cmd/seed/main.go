package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// CLI flags
var (
	rosterPath = flag.String("file", "", "Path to the roster YAML (required unless -prune-days)")
	dsn        = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default: env DATABASE_URL)")
	dryRun     = flag.Bool("dry-run", false, "Parse + validate only; no DB writes")
	pruneDays  = flag.Int("prune-days", 0, "Delete location samples older than N days. 0 = disabled")
)

// Roster contract:
//
//	users:
//	  - username: jdoe
//	    display_name: Jane Doe
//	    role: STUDENT
//	    school: Central High
//	    class: 10-A
//	    password: changeme1
type Roster struct {
	Users []RosterUser `yaml:"users"`
}

type RosterUser struct {
	Username    string `yaml:"username"`
	DisplayName string `yaml:"display_name"`
	Role        string `yaml:"role"`
	School      string `yaml:"school"`
	Class       string `yaml:"class"`
	Password    string `yaml:"password"`
}

var validRoles = map[string]struct{}{"STUDENT": {}, "TEACHER": {}, "ADMIN": {}}

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()

	if *rosterPath == "" && *pruneDays == 0 {
		fatalf("-file or -prune-days is required")
	}
	if *dsn == "" {
		fatalf("-dsn not provided and DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var roster Roster
	if *rosterPath != "" {
		data, err := os.ReadFile(*rosterPath)
		if err != nil {
			fatalf("roster: %v", err)
		}
		if err := yaml.Unmarshal(data, &roster); err != nil {
			fatalf("roster parse: %v", err)
		}
		if err := validateRoster(roster); err != nil {
			fatalf("roster validation failed: %v", err)
		}
		fmt.Printf("Loaded %d users from %s\n", len(roster.Users), *rosterPath)
	}

	if *dryRun {
		for _, u := range roster.Users {
			fmt.Printf("  %-10s %-20s %s\n", u.Role, u.Username, u.DisplayName)
		}
		fmt.Println("Dry run complete. No changes made.")
		return
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		fatalf("ping: %v", err)
	}

	if *rosterPath != "" {
		if err := seedUsers(ctx, db, roster.Users); err != nil {
			fatalf("seed: %v", err)
		}
	}

	if *pruneDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -*pruneDays)
		res, err := db.ExecContext(ctx,
			`DELETE FROM tracking.location_samples WHERE timestamp < $1`, cutoff)
		if err != nil {
			fatalf("prune: %v", err)
		}
		n, _ := res.RowsAffected()
		fmt.Printf("Pruned %d samples older than %s\n", n, cutoff.Format(time.RFC3339))
	}
}

func validateRoster(roster Roster) error {
	seen := map[string]struct{}{}
	for i, u := range roster.Users {
		if u.Username == "" || u.DisplayName == "" || u.Password == "" {
			return fmt.Errorf("user %d: username, display_name, and password are required", i)
		}
		if len(u.Password) < 6 {
			return fmt.Errorf("user %q: password must be at least 6 characters", u.Username)
		}
		if _, ok := validRoles[u.Role]; !ok {
			return fmt.Errorf("user %q: role %q must be STUDENT, TEACHER, or ADMIN", u.Username, u.Role)
		}
		if _, dup := seen[u.Username]; dup {
			return fmt.Errorf("duplicate username %q", u.Username)
		}
		seen[u.Username] = struct{}{}
	}
	return nil
}

func seedUsers(ctx context.Context, db *sql.DB, users []RosterUser) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op if already committed
	}()

	for _, u := range users {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash %q: %w", u.Username, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO app_auth.users
				(user_id, username, hashed_password, display_name, role, school, student_class, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			ON CONFLICT (username) DO UPDATE SET
				display_name = EXCLUDED.display_name,
				role = EXCLUDED.role,
				school = EXCLUDED.school,
				student_class = EXCLUDED.student_class`,
			uuid.NewString(), u.Username, string(hashed), u.DisplayName, u.Role, u.School, u.Class)
		if err != nil {
			return fmt.Errorf("upsert %q: %w", u.Username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	fmt.Printf("Seeded %d users\n", len(users))
	return nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
