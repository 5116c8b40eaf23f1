package main

import (
	"context"
	"fmt"
	"time"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"campus-desk/backend/internal/api/validator"
	"campus-desk/backend/internal/dto"
	"campus-desk/backend/internal/repository"
	"campus-desk/backend/internal/service"
)

func createAdminCmd(configPath *string) *cobra.Command {
	var req dto.CreateAdminRequest

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "创建管理员账号",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := govalidator.New()
			if err := validator.RegisterOn(v); err != nil {
				return err
			}
			if err := v.Struct(&req); err != nil {
				return fmt.Errorf("参数错误: %s", validator.Message(err))
			}

			a, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			userSvc := service.NewUserService(repository.NewRepository(a.db), a.logger)
			user, err := userSvc.CreateAdmin(ctx, &req)
			if err != nil {
				return err
			}

			a.logger.Info("管理员已创建", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))
			fmt.Fprintf(cmd.OutOrStdout(), "管理员 %s 创建成功 (id=%d)\n", user.Username, user.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Username, "username", "", "用户名（4-16 位字母、数字或下划线）")
	f.StringVar(&req.Password, "password", "", "密码（不少于 8 位，含大小写字母和数字）")
	f.StringVar(&req.StudentID, "student-id", "", "学号 / 工号")
	f.StringVar(&req.RealName, "real-name", "", "姓名")
	f.StringVar(&req.Phone, "phone", "", "手机号（可选）")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("student-id")
	_ = cmd.MarkFlagRequired("real-name")
	return cmd
}
