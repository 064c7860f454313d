package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/engine/infra/server"
	"github.com/testbridge/testbridge/engine/migration"
	"github.com/testbridge/testbridge/engine/workflow"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run a single migration workflow and wait for it",
		RunE:  runMigrate,
	}
	cmd.Flags().String("source", "", "source system (zephyr, qtest, ...)")
	cmd.Flags().String("target", "", "target system")
	cmd.Flags().String("project", "", "project key to migrate")
	cmd.Flags().String("source-url", "", "source base URL")
	cmd.Flags().String("source-token", "", "source API token")
	cmd.Flags().String("target-url", "", "target base URL")
	cmd.Flags().String("target-token", "", "target API token")
	cmd.Flags().StringSlice("entity", []string{string(core.EntityTestCase)}, "entity types to migrate")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, err := setupContext(cmd, cfg)
	if err != nil {
		return err
	}

	input, err := migrateInput(cmd)
	if err != nil {
		return err
	}
	engine, err := server.BuildEngine()
	if err != nil {
		return err
	}
	wf, err := engine.CreateMigrationWorkflow(input)
	if err != nil {
		return err
	}

	runErr := engine.Start(ctx, wf.ID)
	printSummary(cmd, wf)
	return runErr
}

func migrateInput(cmd *cobra.Command) (*migration.Config, error) {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	entities, err := cmd.Flags().GetStringSlice("entity")
	if err != nil {
		return nil, fmt.Errorf("failed to get entity flag: %w", err)
	}
	return &migration.Config{
		SourceSystem: get("source"),
		SourceConfig: map[string]any{
			"base_url":  get("source-url"),
			"api_token": get("source-token"),
		},
		TargetSystem: get("target"),
		TargetConfig: map[string]any{
			"base_url":  get("target-url"),
			"api_token": get("target-token"),
		},
		ProjectKey:  get("project"),
		EntityTypes: entities,
	}, nil
}

func printSummary(cmd *cobra.Command, wf *workflow.Workflow) {
	out, err := json.MarshalIndent(wf.Snapshot(), "", "  ")
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "failed to render summary:", err)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
}
