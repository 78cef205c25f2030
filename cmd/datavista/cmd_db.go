package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/vitthalk15/DataDash/app/repositories"
	"github.com/vitthalk15/DataDash/app/services"
	"github.com/vitthalk15/DataDash/config"
	"github.com/vitthalk15/DataDash/database/migrations"
	"github.com/vitthalk15/DataDash/database/seeders"
	"github.com/vitthalk15/DataDash/internal/app"
	"github.com/vitthalk15/DataDash/pkg/auth"
)

type storeEnv struct {
	cfg   *config.Config
	store repositories.Store
	db    *gorm.DB
	close func()
}

// bootStore loads config and connects only the repository backend.
func bootStore(ctx context.Context) (*storeEnv, error) {
	cfg, flush, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	st, db, err := app.OpenStore(ctx, cfg)
	if err != nil {
		flush()
		return nil, err
	}
	return &storeEnv{cfg: cfg, store: st, db: db, close: func() {
		_ = st.Close(context.Background())
		flush()
	}}, nil
}

// sqlOnly returns the gorm handle, or explains why the store has none.
func (e *storeEnv) sqlOnly() (*gorm.DB, error) {
	if e.db != nil {
		return e.db, nil
	}
	switch e.cfg.Store.Driver {
	case "mongo":
		fmt.Println("MongoDB has no schema migrations; indexes are ensured on connect.")
	default:
		fmt.Printf("Store %q has no schema to migrate.\n", e.cfg.Store.Driver)
	}
	return nil, nil
}

// datavista migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := bootStore(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()
		db, err := env.sqlOnly()
		if db == nil || err != nil {
			return err
		}
		fmt.Println("Running migrations…")
		n, err := migrations.Runner(db, os.Stdout).Run()
		if err != nil {
			return err
		}
		fmt.Printf("%d migration(s) applied.\n", n)
		return nil
	},
}

// datavista migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := bootStore(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()
		db, err := env.sqlOnly()
		if db == nil || err != nil {
			return err
		}
		fmt.Println("Rolling back last batch…")
		n, err := migrations.Runner(db, os.Stdout).Rollback()
		if err != nil {
			return err
		}
		fmt.Printf("%d migration(s) rolled back.\n", n)
		return nil
	},
}

// datavista migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := bootStore(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()
		db, err := env.sqlOnly()
		if db == nil || err != nil {
			return err
		}
		lines, err := migrations.Runner(db, nil).Status()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "RAN\tBATCH\tMIGRATION")
		for _, l := range lines {
			ran, batch := "no", "-"
			if l.Ran {
				ran, batch = "yes", fmt.Sprint(l.Batch)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", ran, batch, l.Name)
		}
		return w.Flush()
	},
}

// datavista seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the administrator and a sample catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := bootStore(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		fmt.Println("Running seeders…")
		return seeders.RunAll(ctx, seeders.Deps{
			Users:    userService(env),
			Products: env.store.Products(),
			Admin:    env.cfg.Admin,
		}, seeders.All(), os.Stdout)
	},
}

var adminFlags struct {
	name, email, password string
}

// datavista user:create-admin
var createAdminCmd = &cobra.Command{
	Use:   "user:create-admin",
	Short: "Create an administrator account (defaults to ADMIN_* settings)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := bootStore(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		name, email, password := adminFlags.name, adminFlags.email, adminFlags.password
		if name == "" {
			name = env.cfg.Admin.Name
		}
		if email == "" {
			email = env.cfg.Admin.Email
		}
		if password == "" {
			password = env.cfg.Admin.Password
		}
		if email == "" || password == "" {
			return errors.New("user:create-admin: --email and --password are required")
		}

		u, created, err := userService(env).EnsureAdmin(ctx, name, email, password)
		if err != nil {
			return err
		}
		if !created {
			fmt.Printf("User %s already exists (role %s).\n", u.Email, u.Role)
			return nil
		}
		fmt.Printf("Administrator %s created (id %s).\n", u.Email, u.ID)
		return nil
	},
}

func userService(env *storeEnv) *services.UserService {
	return services.NewUserService(env.store.Users(), auth.NewTokens(env.cfg.JWT.Secret, env.cfg.JWT.TTL), nil)
}

func init() {
	createAdminCmd.Flags().StringVar(&adminFlags.name, "name", "", "display name")
	createAdminCmd.Flags().StringVar(&adminFlags.email, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminFlags.password, "password", "", "initial password (min 6 characters)")
}
