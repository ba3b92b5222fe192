// Command repcoach-session runs one workout session on this device. Session
// state survives restarts: rerunning the command for the same routine day
// resumes exactly where the last run stopped.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/auth"
	"github.com/claude/repcoach/internal/calendar"
	"github.com/claude/repcoach/internal/client"
	"github.com/claude/repcoach/internal/localstate"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/session"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "RepCoach server URL")
	apiKey := flag.String("api-key", "", "API key for log submission")
	athleteID := flag.String("athlete", "local", "athlete ID")
	stateDir := flag.String("state-dir", defaultStateDir(), "directory for local session state")
	dayIndex := flag.Int("day", -1, "schedule day index (0=Monday); -1 uses today")
	canEdit := flag.Bool("can-edit", false, "allow swapping/adding/removing planned exercises")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	store, err := localstate.Open(*stateDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "opening local state:", err)
		os.Exit(1)
	}
	defer store.Close()

	api := client.New(*serverURL, *apiKey)

	// Deliver any workouts finalized offline before starting a new one.
	flushQueue(ctx, store, api)

	routine, err := api.FetchActiveRoutine(ctx, *athleteID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fetching routine:", err)
		os.Exit(1)
	}

	day := *dayIndex
	if day < 0 {
		day = calendar.WeekdayIndex(time.Now())
	}

	sess, err := session.New(session.Deps{
		Caps:      auth.Capabilities{CanEditPlannedExercises: *canEdit},
		Store:     store,
		Queue:     store,
		Finalizer: api,
		Log:       log,
	}, routine, day)
	if err != nil {
		fmt.Fprintln(os.Stderr, "starting session:", err)
		os.Exit(1)
	}
	sess.Start()

	fmt.Printf("%s — %s (%d exercises)\n", routine.Name, sess.DayName, len(sess.Exercises))
	fmt.Println(`commands: status, log <ex> <set> <weight> <reps> [rpe], done <ex> <set>,
next, rest+, skip, variant <ex> <id>, swap <ex> <id> <name>, add <id> <name>,
remove <ex>, finish [rpe] [notes], cancel, quit`)

	run(ctx, sess)
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".repcoach"
	}
	return home + "/.repcoach"
}

// flushQueue retries queued finalize payloads. Successful deliveries are
// dequeued; failures stay for the next run.
func flushQueue(ctx context.Context, store *localstate.Store, api *client.Client) {
	items, err := store.Pending()
	if err != nil {
		fmt.Fprintln(os.Stderr, "reading retry queue:", err)
		return
	}
	for _, it := range items {
		if err := api.SubmitRaw(ctx, it.Payload); err != nil {
			fmt.Fprintf(os.Stderr, "retry for session %s failed: %v\n", it.SessionID, err)
			continue
		}
		store.Dequeue(it.SessionID)
		fmt.Printf("delivered queued session %s\n", it.SessionID)
	}
}

// run drives the session: a one-second ticker advances the clock while stdin
// commands mutate state. Both arrive on one goroutine, keeping the engine
// single-threaded.
func run(ctx context.Context, sess *session.Session) {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sess.Tick()
		case line, ok := <-lines:
			if !ok {
				fmt.Println("input closed, session state saved")
				return
			}
			if done := dispatch(ctx, sess, strings.Fields(line)); done {
				return
			}
		}
	}
}

func dispatch(ctx context.Context, sess *session.Session, args []string) bool {
	if len(args) == 0 {
		return false
	}
	var err error
	switch args[0] {
	case "status":
		printStatus(sess)
	case "log":
		err = cmdLog(sess, args[1:])
	case "done":
		err = cmdDone(sess, args[1:])
	case "next":
		var finished bool
		finished, err = sess.Advance()
		if finished {
			fmt.Println("all sets done — use 'finish [rpe]' to complete the workout")
		}
	case "rest+":
		sess.ExtendRest()
	case "skip":
		sess.SkipRest()
	case "variant":
		if len(args) < 3 {
			err = fmt.Errorf("usage: variant <ex> <id>")
			break
		}
		var idx int
		if idx, err = strconv.Atoi(args[1]); err == nil {
			err = sess.SelectVariant(idx, args[2])
		}
	case "swap":
		if len(args) < 4 {
			err = fmt.Errorf("usage: swap <ex> <id> <name>")
			break
		}
		var idx int
		if idx, err = strconv.Atoi(args[1]); err == nil {
			err = sess.SwapExercise(idx, models.ExerciseSpec{
				ExerciseID: args[2],
				Name:       strings.Join(args[3:], " "),
			})
		}
	case "add":
		if len(args) < 3 {
			err = fmt.Errorf("usage: add <id> <name>")
			break
		}
		err = sess.AddExercise(models.ExerciseSpec{
			ExerciseID: args[1],
			Name:       strings.Join(args[2:], " "),
		})
	case "remove":
		if len(args) < 2 {
			err = fmt.Errorf("usage: remove <ex>")
			break
		}
		var idx int
		if idx, err = strconv.Atoi(args[1]); err == nil {
			err = sess.RemoveExercise(idx)
		}
	case "finish":
		var rpe *float64
		if len(args) > 1 {
			if v, perr := strconv.ParseFloat(args[1], 64); perr == nil {
				rpe = &v
			}
		}
		notes := strings.Join(args[2:], " ")
		var tlog *models.TrainingLog
		tlog, err = sess.Finalize(ctx, rpe, notes)
		if err == nil {
			fmt.Printf("workout logged: %d sets, volume %.1f, %s\n",
				tlog.TotalSets(), tlog.TotalVolume(), formatDuration(tlog.DurationSec))
			return true
		}
	case "cancel":
		fmt.Print("discard this session? [y/N]: ")
		var answer string
		fmt.Scanln(&answer)
		if strings.EqualFold(answer, "y") {
			sess.Cancel()
			fmt.Println("session discarded")
			return true
		}
	case "quit":
		fmt.Println("session state saved, resume any time")
		return true
	default:
		fmt.Println("unknown command:", args[0])
	}
	if err != nil {
		fmt.Println("error:", err)
	}
	return false
}

func cmdLog(sess *session.Session, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: log <ex> <set> <weight> <reps> [rpe]")
	}
	ex, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	set, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	weight, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return err
	}
	reps, err := strconv.Atoi(args[3])
	if err != nil {
		return err
	}
	var rpe *float64
	if len(args) > 4 {
		v, err := strconv.ParseFloat(args[4], 64)
		if err != nil {
			return err
		}
		rpe = &v
	}
	return sess.LogSet(ex, set, weight, reps, rpe)
}

func cmdDone(sess *session.Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: done <ex> <set>")
	}
	ex, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	set, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	return sess.ToggleSetComplete(ex, set)
}

func printStatus(sess *session.Session) {
	fmt.Printf("[%s] elapsed %s", sess.Status, formatDuration(sess.ElapsedSec))
	if sess.Status == session.StateResting {
		fmt.Printf(", resting %ds", sess.RestRemaining)
	}
	fmt.Println()
	for i, ex := range sess.Exercises {
		marker := "  "
		if i == sess.ExerciseIdx {
			marker = "> "
		}
		fmt.Printf("%s%d. %s (%s)\n", marker, i, ex.Name, sess.Logs[i].ExerciseIDUsed)
		for j, set := range sess.Logs[i].Sets {
			cur := "  "
			if i == sess.ExerciseIdx && j == sess.SetIdx {
				cur = " *"
			}
			check := " "
			if set.Completed {
				check = "x"
			}
			fmt.Printf("  %s[%s] set %d: %.1f x %d (target %s)\n",
				cur, check, j, set.Weight, set.Reps, set.TargetReps)
		}
	}
}

func formatDuration(sec int) string {
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}
