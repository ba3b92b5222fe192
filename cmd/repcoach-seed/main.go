// Command repcoach-seed populates a development database with demo data: a
// coach, a few athletes, a routine template assigned to each athlete, and
// several weeks of training history.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/claude/repcoach/internal/auth"
	"github.com/claude/repcoach/internal/config"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/scheduler"
	"github.com/claude/repcoach/internal/storage"
	"github.com/google/uuid"
)

var exercisePool = []struct{ id, name string }{
	{"barbell-squat", "Barbell Squat"},
	{"bench-press", "Bench Press"},
	{"deadlift", "Deadlift"},
	{"overhead-press", "Overhead Press"},
	{"barbell-row", "Barbell Row"},
	{"pull-up", "Pull-Up"},
	{"romanian-deadlift", "Romanian Deadlift"},
	{"dumbbell-lunge", "Dumbbell Lunge"},
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	athletes := flag.Int("athletes", 3, "number of demo athletes")
	weeks := flag.Int("weeks", 4, "weeks of training history per athlete")
	seed := flag.Int64("seed", 0, "random seed (0 = random)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	coachID := "coach-demo"
	if _, err := db.GetOrCreateUser(ctx, coachID, gofakeit.Name()); err != nil {
		log.Error("creating coach", "error", err)
		os.Exit(1)
	}
	if _, err := db.Pool.Exec(ctx, `UPDATE users SET role = 'coach' WHERE id = $1`, coachID); err != nil {
		log.Error("promoting coach", "error", err)
		os.Exit(1)
	}

	tpl := demoTemplate(coachID)
	if err := db.InsertTemplate(ctx, tpl); err != nil {
		log.Error("inserting template", "error", err)
		os.Exit(1)
	}
	log.Info("template created", "id", tpl.ID, "name", tpl.Name)

	assigner := scheduler.New(db, log, nil)
	caps := auth.FromRole("coach")

	for i := 0; i < *athletes; i++ {
		athleteID := fmt.Sprintf("athlete-%d", i+1)
		if _, err := db.GetOrCreateUser(ctx, athleteID, gofakeit.Name()); err != nil {
			log.Error("creating athlete", "error", err)
			os.Exit(1)
		}
		if _, err := assigner.Assign(ctx, coachID, caps, tpl.ID, athleteID); err != nil {
			log.Error("assigning routine", "athlete", athleteID, "error", err)
			os.Exit(1)
		}
		if err := seedHistory(ctx, db, athleteID, *weeks); err != nil {
			log.Error("seeding history", "athlete", athleteID, "error", err)
			os.Exit(1)
		}
		log.Info("athlete seeded", "id", athleteID, "weeks", *weeks)
	}
}

func demoTemplate(coachID string) *models.RoutineTemplate {
	days := make([]models.ScheduleDay, 3)
	for d := range days {
		day := models.ScheduleDay{Name: fmt.Sprintf("Day %d", d+1)}
		for e := 0; e < 3; e++ {
			ex := exercisePool[(d*3+e)%len(exercisePool)]
			day.Exercises = append(day.Exercises, models.ExerciseSpec{
				ExerciseID: ex.id,
				Name:       ex.name,
				Sets: []models.SetSpec{
					{Type: models.SetWarmup, TargetReps: "10"},
					{Type: models.SetWorking, TargetReps: "5-8", TargetRPE: 8, RestSeconds: 180},
					{Type: models.SetWorking, TargetReps: "5-8", TargetRPE: 8, RestSeconds: 180},
					{Type: models.SetWorking, TargetReps: "5-8", TargetRPE: 9, RestSeconds: 180},
				},
			})
		}
		days[d] = day
	}
	return &models.RoutineTemplate{
		ID:      uuid.New(),
		CoachID: coachID,
		Name:    "Demo Strength Block",
		Type:    models.RoutineWeekly,
		Days:    days,
	}
}

// seedHistory writes `weeks` finalized sessions per template day, working
// backwards from last week, with mildly progressing loads.
func seedHistory(ctx context.Context, db *storage.DB, athleteID string, weeks int) error {
	for w := weeks; w >= 1; w-- {
		for d := 0; d < 3; d++ {
			sessionID := uuid.New()
			date := time.Now().AddDate(0, 0, -7*w+d)
			log := &models.TrainingLog{
				ID:          uuid.New(),
				SessionID:   sessionID,
				AthleteID:   athleteID,
				Date:        date,
				DurationSec: gofakeit.Number(2400, 4800),
				Notes:       gofakeit.Sentence(6),
				Status:      "completed",
			}
			for e := 0; e < 3; e++ {
				ex := exercisePool[(d*3+e)%len(exercisePool)]
				base := 60 + float64(e*10) + float64(weeks-w)*2.5
				logged := models.LoggedExercise{ExerciseID: ex.id, Name: ex.name}
				for s := 0; s < 3; s++ {
					rpe := float64(gofakeit.Number(6, 9))
					logged.Sets = append(logged.Sets, models.LoggedSet{
						ID:          uuid.New(),
						SessionID:   sessionID,
						AthleteID:   athleteID,
						ExerciseID:  ex.id,
						Weight:      base,
						Reps:        gofakeit.Number(5, 8),
						RPE:         &rpe,
						PerformedAt: date,
					})
				}
				log.Exercises = append(log.Exercises, logged)
			}
			if _, err := db.SubmitTrainingLog(ctx, log); err != nil {
				return err
			}
		}
	}
	return nil
}
