package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/routes"
	"github.com/cppla/yatube/utils"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "yatube",
		Short:         "Blog with groups, follows and an image-friendly feed",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return utils.InitLogger(config.Load())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newGroupsCmd(),
		newCacheCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg := config.Get()
	db := config.InitDatabase(models.All()...)
	r := routes.SetupRouter(db)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	utils.StartMediaJanitor(ctx, db, routes.MediaStorage(cfg), 30*time.Minute)

	srv := utils.NewServer(":"+cfg.AppPort, r, utils.DefaultReadTimeout, utils.DefaultWriteTimeout)
	srv.OnShutdown(stop)
	srv.OnShutdown(func() { _ = utils.Logger.Sync() })

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	return srv.ListenAndServe()
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Args:  cobra.NoArgs,
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.OpenDatabase(config.Get())
			if err != nil {
				return err
			}
			if err := config.Migrate(db, models.All()...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"g"},
		Short:   "Manage groups",
	}

	var slugFlag, description string
	create := &cobra.Command{
		Use:   "create <title>",
		Args:  cobra.ExactArgs(1),
		Short: "Create a group; the slug defaults to one derived from the title",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openMigrated()
			if err != nil {
				return err
			}
			group, err := createGroup(db, args[0], slugFlag, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created group %q at /group/%s/\n", group.Title, group.Slug)
			return nil
		},
	}
	create.Flags().StringVar(&slugFlag, "slug", "", "URL slug of the group")
	create.Flags().StringVar(&description, "description", "", "group description")

	list := &cobra.Command{
		Use:   "list",
		Args:  cobra.NoArgs,
		Short: "List groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openMigrated()
			if err != nil {
				return err
			}
			var groups []models.Group
			if err := db.Order("title").Find(&groups).Error; err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSLUG\tTITLE")
			for _, g := range groups {
				fmt.Fprintf(w, "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}

func createGroup(db *gorm.DB, title, slugText, description string) (models.Group, error) {
	group, err := models.NewGroup(title, slugText, description)
	if err != nil {
		return group, err
	}
	var n int64
	if err := db.Model(&models.Group{}).Where("slug = ?", group.Slug).Count(&n).Error; err != nil {
		return group, err
	}
	if n > 0 {
		return group, fmt.Errorf("group with slug %q already exists", group.Slug)
	}
	if err := db.Create(&group).Error; err != nil {
		return group, err
	}
	return group, nil
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the page cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Args:  cobra.NoArgs,
		Short: "Drop every cached page",
		RunE: func(cmd *cobra.Command, args []string) error {
			n := utils.ClearCache()
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached entries\n", n)
			return nil
		},
	})
	return cmd
}

func openMigrated() (*gorm.DB, error) {
	db, err := config.OpenDatabase(config.Get())
	if err != nil {
		return nil, err
	}
	if err := config.Migrate(db, models.All()...); err != nil {
		return nil, err
	}
	return db, nil
}

