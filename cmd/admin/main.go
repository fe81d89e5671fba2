package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/medihub/medihub/app/repository"
	"github.com/medihub/medihub/internal/pkg/cache"
	"github.com/medihub/medihub/internal/pkg/database"
	"github.com/medihub/medihub/internal/pkg/env"
	"github.com/medihub/medihub/internal/pkg/jobqueue"
	"github.com/medihub/medihub/internal/pkg/moderation"
	"github.com/medihub/medihub/internal/pkg/security"
)

func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalFactory().GetRepositories()

	confirm, err := security.NewConfirmSigner(env.GetEnv("CONFIRM_TOKEN_SECRET", ""), 5*time.Minute)
	if err != nil {
		log.Fatalf("CONFIRM_TOKEN_SECRET: %v", err)
	}

	queue := jobqueue.NewQueue(cache.GetClient(), 1)
	svc := moderation.NewService(repos, confirm,
		moderation.WithDetailCache(moderation.NewRedisDetailCache(cache.GetClient(), time.Minute)),
		moderation.WithNotifier(jobqueue.NewQueueNotifier(queue)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "expire-sanctions":
		batch := moderation.DefaultExpiryBatch
		if len(os.Args) > 2 {
			batch = int(mustUint(os.Args[2], "batch"))
		}
		n, err := svc.ExpireDueSanctions(ctx, batch)
		if err != nil {
			log.Fatalf("Failed to expire sanctions: %v", err)
		}
		log.Printf("Expired %d sanctions", n)

	case "trigger-sweep":
		manager := jobqueue.NewManager(queue, jobqueue.DefaultSweepSchedule, moderation.DefaultExpiryBatch)
		job, err := manager.TriggerSweep(ctx, "admin-cli")
		if err != nil {
			log.Fatalf("Failed to enqueue sweep: %v", err)
		}
		log.Printf("Enqueued sweep job %s", job.ID)

	case "revoke":
		if len(os.Args) < 4 {
			log.Fatalf("Usage: revoke <sanctionID> <reason>")
		}
		moderatorID := adminProfileID(repos)
		sanction, err := svc.RevokeSanction(ctx, mustUint(os.Args[2], "sanction id"), moderatorID, strings.Join(os.Args[3:], " "))
		if err != nil {
			log.Fatalf("Failed to revoke sanction: %v", err)
		}
		printJSON(sanction)

	case "show-report":
		if len(os.Args) < 3 {
			log.Fatalf("Usage: show-report <reportID>")
		}
		detail, err := svc.GetReportDetail(ctx, mustUint(os.Args[2], "report id"))
		if err != nil {
			log.Fatalf("Failed to load report: %v", err)
		}
		printJSON(detail)

	case "queue-stats":
		stats, err := queue.Stats(ctx)
		if err != nil {
			log.Fatalf("Failed to read queue stats: %v", err)
		}
		printJSON(stats)

	default:
		printUsage()
		os.Exit(1)
	}
}

// adminProfileID resolves the acting moderator for mutating commands.
func adminProfileID(repos *repository.Repositories) uint {
	raw := env.GetEnv("ADMIN_PROFILE_ID", "")
	if raw == "" {
		log.Fatalf("ADMIN_PROFILE_ID must be set for this command")
	}
	id := mustUint(raw, "ADMIN_PROFILE_ID")
	profile, err := repos.Profile.GetByID(id)
	if err != nil {
		log.Fatalf("Failed to load profile %d: %v", id, err)
	}
	if !profile.IsAdmin() {
		log.Fatalf("Profile %d is not an admin", id)
	}
	return id
}

func mustUint(raw, name string) uint {
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		log.Fatalf("Invalid %s: %q", name, raw)
	}
	return uint(n)
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
	fmt.Println(string(out))
}

func printUsage() {
	fmt.Println("Usage: go run cmd/admin/main.go [command]")
	fmt.Println("Commands:")
	fmt.Println("  expire-sanctions [batch]     - expire suspensions whose end time has passed")
	fmt.Println("  trigger-sweep                - enqueue an expiry sweep for the workers")
	fmt.Println("  revoke <sanctionID> <reason> - revoke an active sanction (needs ADMIN_PROFILE_ID)")
	fmt.Println("  show-report <reportID>       - print the moderator view of a report")
	fmt.Println("  queue-stats                  - print job queue counters")
}
