// Command clear-topics purges every topic submission straight from the
// database. Operator tool for resetting the board between events; the server
// offers the same operation over POST /api/admin/clear.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/subosito/gotenv"
)

var yes = flag.Bool("yes", false, "Skip the confirmation prompt")

func main() {
	flag.Parse()

	// Same .env convention as the server.
	_ = gotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbconn, err := pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer dbconn.Close()

	var count int64
	if err := dbconn.QueryRow(ctx, `SELECT count(*) FROM topic_requests`).Scan(&count); err != nil {
		fmt.Fprintf(os.Stderr, "unable to count topics: %v\n", err)
		os.Exit(1)
	}

	if count == 0 {
		fmt.Println("No topics to clear.")
		return
	}

	fmt.Printf("Found %d topic(s).\n", count)

	if !*yes {
		fmt.Printf("Delete all %d topic(s)? (y/N) ", count)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return
		}
	}

	tag, err := dbconn.Exec(ctx, `DELETE FROM topic_requests`)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to delete topics: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Deleted %d topic(s).\n", tag.RowsAffected())
}
