// Command personad runs the AI Person chat backend: identity catalog,
// person store, memory, and the HTTP/WebSocket chat surface.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/engine"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/identity"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/memory"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/memory/embedder/mock"
	chromemindex "github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/memory/index/chromem"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/person"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/reply"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/server"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/session"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/speech"
)

var (
	configDir string
	dataDir   string
)

var rootCmd = &cobra.Command{
	Use:   "personad",
	Short: "AI Person chat backend",
	Long:  "Identity composition, persistent memory, and a chat surface for AI Persons.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Config directory (default: $CONFIG_DIR or ./config/identity)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "Data directory (default: $DATA_DIR or ./data)")
	rootCmd.AddCommand(serveCmd, personsCmd, composeCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfigDir() string {
	if configDir != "" {
		return configDir
	}
	if env := os.Getenv("CONFIG_DIR"); env != "" {
		return env
	}
	return filepath.Join("config", "identity")
}

func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if env := os.Getenv("DATA_DIR"); env != "" {
		return env
	}
	return "data"
}

func loadCatalog() (*identity.Catalog, error) {
	dir := resolveConfigDir()
	catalog := identity.NewCatalog(identity.CatalogConfig{
		CoreIdentityPath: filepath.Join(dir, "core-identity.json"),
		RolesDir:         filepath.Join(dir, "roles"),
		PersonalitiesDir: filepath.Join(dir, "personalities"),
	})
	if err := catalog.Load(); err != nil {
		return nil, err
	}
	return catalog, nil
}

func loadStores() (*person.Store, *memory.Store, error) {
	dir := resolveDataDir()

	persons := person.NewStore(filepath.Join(dir, "ai-persons.json"))
	if err := persons.Load(); err != nil {
		return nil, nil, fmt.Errorf("load persons: %w", err)
	}

	index, err := chromemindex.New(mock.New(0))
	if err != nil {
		return nil, nil, fmt.Errorf("create fact index: %w", err)
	}
	mem := memory.NewStore(memory.Config{
		LongTermPath: filepath.Join(dir, "long-term-memory.json"),
		FactsPath:    filepath.Join(dir, "facts.json"),
	}, memory.WithFactIndex(index))
	if err := mem.Load(); err != nil {
		return nil, nil, fmt.Errorf("load memory: %w", err)
	}
	return persons, mem, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat server",
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable is required")
		}

		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		composer := identity.NewComposer(catalog)

		persons, mem, err := loadStores()
		if err != nil {
			return err
		}

		sessions := session.NewManager(session.Config{}, mem)
		persons.SetBoundChecker(sessions.IsBound)

		client := anthropic.NewClient(option.WithAPIKey(apiKey))
		replies := reply.NewAnthropicService(&client)
		if model := os.Getenv("ANTHROPIC_MODEL"); model != "" {
			replies = reply.NewAnthropicService(&client, reply.WithModel(model))
		}

		opts := []engine.Option{}
		serverOpts := []server.Option{}
		if voicesDir := os.Getenv("VOICES_DIR"); voicesDir != "" {
			piper := speech.NewPiper(speech.PiperConfig{
				Voice:     os.Getenv("PIPER_VOICE"),
				VoicesDir: voicesDir,
			})
			opts = append(opts, engine.WithSpeech(piper))
			serverOpts = append(serverOpts, server.WithPiper(piper))
			log.Printf("[MAIN] Speech synthesis enabled (voices: %s)", voicesDir)
		}

		eng, err := engine.New(persons, sessions, mem, composer, replies, opts...)
		if err != nil {
			return err
		}

		addr := os.Getenv("ADDR")
		srv := server.New(server.Config{Addr: addr}, eng, catalog, composer, persons, sessions, mem, serverOpts...)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		go sessions.Run(ctx)
		go func() {
			if err := catalog.Watch(ctx); err != nil {
				log.Printf("[MAIN] Catalog watch stopped: %v", err)
			}
		}()
		go func() {
			<-ctx.Done()
			log.Println("[MAIN] Shutting down")
			if err := srv.Shutdown(context.Background()); err != nil {
				log.Printf("[MAIN] Shutdown error: %v", err)
			}
		}()

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

var personsCmd = &cobra.Command{
	Use:   "persons",
	Short: "List stored AI Persons",
	RunE: func(cmd *cobra.Command, args []string) error {
		persons, _, err := loadStores()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tROLE\tPERSONALITY\tMODIFIED")
		for _, p := range persons.All() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				p.Metadata.PersonID,
				p.Presentation.Name,
				p.Metadata.RoleID,
				p.Metadata.PersonalityID,
				p.Metadata.LastModified.Format("2006-01-02 15:04"),
			)
		}
		return w.Flush()
	},
}

var composeCmd = &cobra.Command{
	Use:   "compose [roleId] [personalityId]",
	Short: "Compose and store a new AI Person",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		composer := identity.NewComposer(catalog)

		persons, _, err := loadStores()
		if err != nil {
			return err
		}

		var roleID, personalityID string
		if len(args) > 0 {
			roleID = args[0]
		}
		if len(args) > 1 {
			personalityID = args[1]
		}

		name, _ := cmd.Flags().GetString("name")
		p, res, err := composer.Compose(roleID, personalityID, "", name)
		if err != nil {
			return err
		}
		if err := persons.Set(p.Metadata.PersonID, p); err != nil {
			return err
		}

		fmt.Printf("Created %s (%s)\n", p.Metadata.PersonID, p.Presentation.Name)
		if res.RoleFellBack {
			fmt.Printf("Note: role %q not found, used %s\n", roleID, res.RoleID)
		}
		if res.PresentationFellBack {
			fmt.Printf("Note: personality %q not found, used %s\n", personalityID, res.PresentationID)
		}
		return nil
	},
}

func init() {
	composeCmd.Flags().String("name", "", "Display name override")
}
