package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"campus-desk/backend/pkg/database"
)

func migrateCmd(configPath *string) *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移（--down N 回滚最近 N 个版本）",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			sqlDB, err := a.db.DB()
			if err != nil {
				return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
			}
			if down > 0 {
				return database.RollbackMigrations(sqlDB, down, a.logger)
			}
			return database.RunMigrations(sqlDB, a.logger)
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "回滚的版本数")
	return cmd
}
