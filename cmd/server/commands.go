package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"filmshelf/backend/internal/auth"
	"filmshelf/backend/internal/config"
	"filmshelf/backend/internal/database"
	"filmshelf/backend/internal/handler"
	"filmshelf/backend/internal/logging"
	"filmshelf/backend/internal/members"
	"filmshelf/backend/internal/tmdb"

	_ "filmshelf/backend/docs"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/term"
	"gorm.io/gorm"
)

const devSecret = "dev-secret-key-change-in-production"

var rootCmd = &cobra.Command{
	Use:   "filmshelf",
	Short: "filmshelf - shared movie collection with lending",
	Long: `filmshelf tracks the films a small group owns or wants, who holds which
copy, and who asked to borrow what.

Run "filmshelf serve" to start the web server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.AppConfig
		l := newLogger()

		gin.SetMode(ginMode(cfg.GinMode))
		database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, l)
		if err := database.Bootstrap(database.DB, cfg.InitialUsers, l); err != nil {
			return fmt.Errorf("bootstrap users: %w", err)
		}

		if cfg.SecretKey == devSecret {
			l.Warn("SECRET_KEY is the development default; set it in production")
		}
		if cfg.TMDBAPIKey == "" {
			l.Warn("TMDB_API_KEY is not set; adding films will fail")
		}

		client := tmdb.NewClient(tmdb.Options{
			APIKey:       cfg.TMDBAPIKey,
			BaseURL:      cfg.TMDBBaseURL,
			ImageBaseURL: cfg.TMDBImageBaseURL,
			Language:     cfg.TMDBLanguage,
			Logger:       l.WithPrefix("tmdb"),
		})
		sessions := auth.NewManager(database.DB, cfg.SecretKey, cfg.SessionTTL)
		sessions.Secure = cfg.CookieSecure
		if !cfg.CookieSecure && gin.Mode() == gin.ReleaseMode {
			l.Warn("COOKIE_SECURE is off; session cookies are sent over plain HTTP")
		}
		h := handler.New(database.DB, sessions, client, l)

		router := handler.NewRouter(h)

		// Swagger route
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		l.Info("Server is running", "addr", cfg.ListenAddr)
		l.Info("Swagger UI is available at /swagger/index.html")
		return router.Run(cfg.ListenAddr)
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
	Long:  `Manage accounts: add users, list them with their film counts and reset passwords.`,
}

var userAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		admin, _ := cmd.Flags().GetBool("admin")
		password, err := readNewPassword()
		if err != nil {
			return err
		}

		user, err := members.Create(openDB(), args[0], password, admin)
		if err != nil {
			return fmt.Errorf("failed to add user: %w", err)
		}
		fmt.Printf("✓ User %s added (id %d, admin %t)\n", user.Name, user.ID, user.IsAdmin)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := members.ListWithCounts(openDB())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		if len(users) == 0 {
			fmt.Println("No users found.")
			return nil
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "NAME", "ADMIN", "FILMS")
		for _, u := range users {
			t.Row(strconv.FormatUint(uint64(u.ID), 10), u.Name, strconv.FormatBool(u.IsAdmin), strconv.FormatInt(u.FilmCount, 10))
		}
		fmt.Println(t)
		return nil
	},
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd [name]",
	Short: "Reset a user's password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db := openDB()
		user, err := members.FindByName(db, args[0])
		if err != nil {
			return err
		}
		password, err := readNewPassword()
		if err != nil {
			return err
		}
		if err := members.SetPassword(db, user.ID, password); err != nil {
			return fmt.Errorf("failed to set password: %w", err)
		}
		fmt.Printf("✓ Password for %s changed\n", user.Name)
		return nil
	},
}

func init() {
	cobra.OnInitialize(config.LoadConfig)

	serveCmd.Flags().String("addr", ":5000", "listen address")
	if err := viper.BindPFlag("LISTEN_ADDR", serveCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}

	userAddCmd.Flags().Bool("admin", false, "grant admin rights")

	userCmd.AddCommand(userAddCmd, userListCmd, userPasswdCmd)
	rootCmd.AddCommand(serveCmd, userCmd)
}

func newLogger() *log.Logger {
	return logging.New(os.Stderr, config.AppConfig.LogLevel)
}

// openDB connects with the configured database for one-off CLI commands.
func openDB() *gorm.DB {
	cfg := config.AppConfig
	database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, newLogger())
	return database.DB
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return mode
	}
	return gin.ReleaseMode
}

// readNewPassword prompts twice without echo.
func readNewPassword() (string, error) {
	password, err := readPassword("Password: ")
	if err != nil {
		return "", err
	}
	confirm, err := readPassword("Repeat password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}
