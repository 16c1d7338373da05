package demo

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/alvaro/studentreg/internal/app/migrations"
	"github.com/alvaro/studentreg/internal/app/repositories"
	"github.com/alvaro/studentreg/internal/app/services"
	"github.com/alvaro/studentreg/internal/config"
	"github.com/alvaro/studentreg/internal/db"
	"github.com/alvaro/studentreg/internal/pkg/logger"
)

// App holds the wired application: configuration, database connection,
// gateways and services.
type App struct {
	cfg      *config.Config
	database *db.PostgresDB
	services *services.Services
}

// NewApp loads configuration, configures the logger, connects to the
// database and applies migrations. Any failure here is fatal to the caller.
func NewApp() (*App, error) {
	cfg, err := config.LoadConfig(filepath.Join("configs", "config.yaml"))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	migrator := migrations.NewMigrator(database.Pool)
	if err := migrator.MigrateFromDirectory("migrations"); err != nil {
		database.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	repos := repositories.NewRepositories(database)

	return &App{
		cfg:      cfg,
		database: database,
		services: services.NewServices(repos),
	}, nil
}

// Close releases the database connection.
func (a *App) Close() {
	a.database.Close()
}

// Run executes a fixed registration script and logs the resulting records.
func (a *App) Run(ctx context.Context) error {
	studentService := a.services.StudentService
	courseService := a.services.CourseService

	const (
		courseName = "Desarrollo en Aplicaciones Multiplataforma"
		school     = "IES Pablo Picasso"
		year       = 2025

		dniJuan    = "29482182T"
		dniAlberto = "19024608C"
	)

	if _, err := courseService.Save(ctx, courseName, school, year); err != nil {
		return fmt.Errorf("saving course: %w", err)
	}

	if _, err := studentService.SaveOrUpdateStudent(ctx, dniJuan, "Juan Alberto García",
		time.Date(1993, time.October, 26, 0, 0, 0, 0, time.UTC)); err != nil {
		return fmt.Errorf("saving student: %w", err)
	}

	if err := studentService.SaveOrUpdateAddress(ctx, dniJuan, "Plaza Nueva nº 123", "Málaga", "29010"); err != nil {
		return fmt.Errorf("saving address: %w", err)
	}

	for _, number := range []string{"678987654", "698742345"} {
		if err := studentService.AddPhoneNumber(ctx, dniJuan, number); err != nil {
			return fmt.Errorf("adding phone number: %w", err)
		}
	}

	if err := studentService.SetCourse(ctx, dniJuan, courseName, school, year); err != nil {
		return fmt.Errorf("setting course: %w", err)
	}

	// A second student sharing one of the numbers.
	if _, err := studentService.SaveOrUpdateStudent(ctx, dniAlberto, "Alberto García",
		time.Date(1995, time.June, 15, 0, 0, 0, 0, time.UTC)); err != nil {
		return fmt.Errorf("saving student: %w", err)
	}
	if err := studentService.AddPhoneNumber(ctx, dniAlberto, "678987654"); err != nil {
		return fmt.Errorf("adding phone number: %w", err)
	}

	// Juan drops one of his numbers; the shared one stays with both.
	if err := studentService.DeletePhoneNumber(ctx, dniJuan, "698742345"); err != nil {
		return fmt.Errorf("deleting phone number: %w", err)
	}

	students, err := studentService.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("listing students: %w", err)
	}

	for _, student := range students {
		event := logger.Info().
			Str("dni", student.DNI).
			Str("name", student.Name).
			Str("birthdate", student.Birthdate.Format("2006-01-02"))

		if student.Address != nil {
			event = event.Str("address", fmt.Sprintf("%s, %s %s",
				student.Address.StreetAddress, student.Address.PostalCode, student.Address.City))
		}
		if student.Course != nil {
			event = event.Str("course", fmt.Sprintf("%s (%s, %d)",
				student.Course.Name, student.Course.School, student.Course.StartingYear))
		}

		numbers := make([]string, 0, len(student.PhoneNumbers))
		for _, phone := range student.PhoneNumbers {
			numbers = append(numbers, phone.Number)
		}
		event.Strs("phoneNumbers", numbers).Msg("Registered student")
	}

	return nil
}
