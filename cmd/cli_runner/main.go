package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"getabib/internal/domain"
	"getabib/internal/racesource"
	"getabib/internal/repository"
	"getabib/internal/service"
)

type services struct {
	runners  *service.RunnerService
	profiles *service.ProfileService
	goals    *service.GoalsService
	feed     *service.FeedService
	saved    *service.SavedRaceService
}

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	svc := newServices(logger)

	runner, _, err := svc.runners.Register(ctx, service.RegisterRunnerInput{
		DeviceID:    "cli-" + uuid.NewString(),
		DisplayName: "CLI Runner",
	})
	if err != nil {
		log.Fatalf("registrar corredor: %v", err)
	}

	for {
		fmt.Printf("\n===== GetABib: %s =====\n", runner.DisplayName)
		fmt.Println("[1] Test de personalidad")
		fmt.Println("[2] Escribir metas")
		fmt.Println("[3] Fijar ubicacion")
		fmt.Println("[4] Ver feed")
		fmt.Println("[5] Ver secciones")
		fmt.Println("[6] Ver feed por metas")
		fmt.Println("[7] Guardar/quitar carrera")
		fmt.Println("[8] Salir")
		fmt.Print("Selecciona una opcion: ")

		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		switch line {
		case "1":
			if err := quizFlow(ctx, reader, svc.profiles, runner.ID); err != nil {
				fmt.Printf("Error en el test: %v\n", err)
			}
		case "2":
			if err := goalsFlow(ctx, reader, svc.goals, runner.ID); err != nil {
				fmt.Printf("Error en metas: %v\n", err)
			}
		case "3":
			if err := locationFlow(ctx, reader, svc.runners, runner.ID); err != nil {
				fmt.Printf("Error en ubicacion: %v\n", err)
			}
		case "4":
			feed, err := svc.feed.Feed(ctx, runner.ID, service.FeedOptions{Limit: 10})
			if err != nil {
				fmt.Printf("Error armando feed: %v\n", err)
				continue
			}
			printRaces(feed)
		case "5":
			if err := sectionsFlow(ctx, svc.feed, runner.ID); err != nil {
				fmt.Printf("Error armando secciones: %v\n", err)
			}
		case "6":
			feed, err := svc.feed.GoalFeed(ctx, runner.ID, 10)
			if err != nil {
				fmt.Printf("Error armando feed por metas: %v\n", err)
				continue
			}
			printRaces(feed)
		case "7":
			if err := toggleSavedFlow(ctx, reader, svc.saved, runner.ID); err != nil {
				fmt.Printf("Error guardando carrera: %v\n", err)
			}
		case "8":
			return
		default:
			fmt.Println("Opcion invalida.")
		}
	}
}

// newServices arma todo en memoria sobre el catalogo fijo de carreras.
func newServices(logger *zap.Logger) services {
	runnerRepo := repository.NewMemoryRunnerRepository()
	traitRepo := repository.NewMemoryTraitRepository()
	savedRepo := repository.NewMemorySavedRaceRepository()
	viewRepo := repository.NewMemoryRaceViewRepository()
	kv := repository.NewMemoryKVStore()

	runnerSvc := service.NewRunnerService(logger, runnerRepo, traitRepo, viewRepo, savedRepo)
	goalsSvc := service.NewGoalsService(logger, kv)
	feedSvc := service.NewFeedService(
		logger,
		racesource.NewStaticSource(nil),
		runnerSvc,
		goalsSvc,
		service.NewMemoryRefreshRateLimiter(time.Hour, 3),
		2,
	)
	return services{
		runners:  runnerSvc,
		profiles: service.NewProfileService(logger, traitRepo),
		goals:    goalsSvc,
		feed:     feedSvc,
		saved:    service.NewSavedRaceService(logger, savedRepo, feedSvc),
	}
}

func quizFlow(ctx context.Context, reader *bufio.Reader, profiles *service.ProfileService, runnerID string) error {
	fmt.Println("\n--- TEST DE PERSONALIDAD ---")
	answers := make([]service.QuizAnswer, 0, len(service.QuizQuestions))
	for i, q := range service.QuizQuestions {
		fmt.Printf("\n[%d/%d] %s\n", i+1, len(service.QuizQuestions), q.Question)
		for j, o := range q.Options {
			fmt.Printf("  [%d] %s\n", j+1, o.Label)
		}
		idx := readIntDefault(reader, "Opcion: ", 1)
		if idx < 1 || idx > len(q.Options) {
			idx = 1
		}
		answers = append(answers, service.QuizAnswer{QuestionID: q.ID, OptionValue: q.Options[idx-1].Value})
	}

	personality, err := profiles.SubmitQuiz(ctx, runnerID, answers)
	if err != nil {
		return err
	}
	fmt.Printf("\n✅ Eres %s %s\n", personality.Description.Icon, personality.Description.Title)
	fmt.Println(personality.Description.Description)
	return nil
}

func goalsFlow(ctx context.Context, reader *bufio.Reader, goals *service.GoalsService, runnerID string) error {
	fmt.Print("Contanos tus metas: ")
	text, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("leer input: %w", err)
	}

	state, err := goals.UpdateGoalText(ctx, runnerID, strings.TrimSpace(text))
	if err != nil {
		return err
	}
	if len(state.ParsedGoals.Tags) == 0 {
		fmt.Println("No detectamos metas en el texto.")
		return nil
	}

	fmt.Println("Metas detectadas:")
	for _, tag := range state.ParsedGoals.Tags {
		fmt.Printf("  - %s (%s). Confirmar? [S/n]: ", tag.Label, tag.Category)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToUpper(answer))
		if answer == "N" {
			if _, err := goals.DismissTag(ctx, runnerID, tag.ID); err != nil {
				return err
			}
			continue
		}
		if _, err := goals.ConfirmTag(ctx, runnerID, tag.ID); err != nil {
			return err
		}
	}
	return nil
}

func locationFlow(ctx context.Context, reader *bufio.Reader, runners *service.RunnerService, runnerID string) error {
	fmt.Print("Ciudad o estado: ")
	city, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("leer input: %w", err)
	}
	radius := readIntDefault(reader, "Radio en millas (default 100): ", 100)

	runner, err := runners.UpdateLocation(ctx, runnerID, service.LocationInput{City: strings.TrimSpace(city), RadiusMiles: radius})
	if err != nil {
		return err
	}
	fmt.Printf("Ubicacion: %s, %s (%d mi)\n", runner.Location.City, runner.Location.State, runner.Location.RadiusMiles)
	return nil
}

func sectionsFlow(ctx context.Context, feed *service.FeedService, runnerID string) error {
	sections, err := feed.Sections(ctx, runnerID)
	if err != nil {
		return err
	}
	groups := []struct {
		title string
		races []domain.ScoredRace
	}{
		{"Para vos", sections.ForYou},
		{"Cerca tuyo", sections.NearYou},
		{"Bucket list", sections.BucketList},
		{"Proximamente", sections.ComingSoon},
		{"Segun tu historial", sections.BasedOnHistory},
	}
	for _, g := range groups {
		fmt.Printf("\n--- %s (%d) ---\n", g.title, len(g.races))
		printRaces(g.races)
	}
	return nil
}

func toggleSavedFlow(ctx context.Context, reader *bufio.Reader, saved *service.SavedRaceService, runnerID string) error {
	fmt.Print("ID de la carrera: ")
	raceID, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("leer input: %w", err)
	}
	isSaved, err := saved.Toggle(ctx, runnerID, strings.TrimSpace(raceID))
	if err != nil {
		return err
	}
	if isSaved {
		fmt.Println("Carrera guardada.")
	} else {
		fmt.Println("Carrera quitada de guardadas.")
	}
	return nil
}

func printRaces(races []domain.ScoredRace) {
	if len(races) == 0 {
		fmt.Println("(sin carreras)")
		return
	}
	for i, r := range races {
		goal := ""
		if r.GoalScore != nil {
			goal = fmt.Sprintf(" meta=%d", *r.GoalScore)
		}
		fmt.Printf("[%d] %s %-32s %s, %s  %.1f%s\n", i+1, r.ID, r.Name, r.City, r.State, r.RelevanceScore, goal)
		fmt.Printf("     %s\n", service.MatchExplanation(r))
	}
}

func readIntDefault(reader *bufio.Reader, prompt string, def int) int {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	v, err := strconv.Atoi(line)
	if err != nil {
		return def
	}
	return v
}
